package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Configuration errors (2xxx)
	ErrCodeConfigNotFound   ErrorCode = "CRVW2001"
	ErrCodeConfigInvalid    ErrorCode = "CRVW2002"
	ErrCodeProfileNotFound  ErrorCode = "CRVW2003"
	ErrCodeSelectionInvalid ErrorCode = "CRVW2004"
	ErrCodeRemoteMissing    ErrorCode = "CRVW2005"

	// Repository errors (3xxx)
	ErrCodeRepoNotFound      ErrorCode = "CRVW3001"
	ErrCodeRepoDirty         ErrorCode = "CRVW3002"
	ErrCodeRepoSyncFailed    ErrorCode = "CRVW3003"
	ErrCodeGit               ErrorCode = "CRVW3004"
	ErrCodeConcurrentUpdate  ErrorCode = "CRVW3005"
	ErrCodeCommitNotFound    ErrorCode = "CRVW3006"

	// Record and validation errors (6xxx)
	ErrCodeObjectUnknown    ErrorCode = "CRVW6001"
	ErrCodeObjectAmbiguous  ErrorCode = "CRVW6002"
	ErrCodeInvalidState     ErrorCode = "CRVW6003"
	ErrCodeInvalidInput     ErrorCode = "CRVW6004"
	ErrCodeRequiredField    ErrorCode = "CRVW6005"
	ErrCodeValidationFailed ErrorCode = "CRVW6006"

	// Security errors (7xxx)
	ErrCodeCredentialStore  ErrorCode = "CRVW7001"
	ErrCodeEncryptionFailed ErrorCode = "CRVW7002"

	// Notification errors (8xxx)
	ErrCodeNotifyFailed ErrorCode = "CRVW8001"

	// System errors (9xxx)
	ErrCodeInternal      ErrorCode = "CRVW9001"
	ErrCodeResultParsing ErrorCode = "CRVW9002"
	ErrCodeUserInput     ErrorCode = "CRVW9003"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'codereview init' to provision the audit repository",
			"Refer to the configuration documentation",
		)
}

// GitError wraps a failed git operation
func GitError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeGit, message).
		WithSuggestions(
			"Inspect the audit repository working tree with 'git status'",
			"Re-run the command once the repository is healthy",
		)
}

// ConcurrencyError reports a lost race against another reviewer's push.
// The cause may be nil: losing a compare-and-swap is a state observation,
// not an underlying failure.
func ConcurrencyError(message string, cause error) *AppError {
	err := New(ErrCodeConcurrentUpdate, message)
	err.Cause = cause
	return err.WithSuggestions(
		"Another reviewer updated the audit repository first",
		"Re-resolve the commit and retry the operation",
	)
}

// AmbiguousObjectError reports a record lookup matching more than one file
func AmbiguousObjectError(object string, matches []string) *AppError {
	err := New(ErrCodeObjectAmbiguous,
		fmt.Sprintf("ambiguous commit object %q matches %d files", object, len(matches))).
		WithContext("matches", matches)
	return err.WithSuggestions("Supply a longer prefix of the commit hash")
}

// UnknownObjectError reports a record lookup matching no files
func UnknownObjectError(object string) *AppError {
	return New(ErrCodeObjectUnknown,
		fmt.Sprintf("unknown commit object %q", object)).
		WithSuggestions(
			"Run 'codereview list --all' to see tracked records",
			"Run 'codereview sync' to pull the latest audit state",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
