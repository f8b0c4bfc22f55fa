package common

// File permission constants used consistently across the application
const (
	// FilePermissionSecure is used for sensitive files (config, credentials)
	FilePermissionSecure = 0600

	// FilePermissionNormal is used for non-sensitive files (patch records, reports)
	FilePermissionNormal = 0644

	// DirPermissionSecure is used for directories containing sensitive files
	DirPermissionSecure = 0700

	// DirPermissionNormal is used for normal directories
	DirPermissionNormal = 0755
)
