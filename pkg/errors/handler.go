package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codereview/internal/common"
)

// ErrorHandler provides centralized error reporting for CLI commands
type ErrorHandler struct {
	logFile   *os.File
	logWriter io.Writer
	mu        sync.Mutex
	config    ErrorHandlerConfig
}

// ErrorHandlerConfig configures the error handler
type ErrorHandlerConfig struct {
	LogToFile   bool
	LogFilePath string
}

// ErrorLogEntry represents a logged error
type ErrorLogEntry struct {
	Timestamp   time.Time              `json:"timestamp"`
	Code        ErrorCode              `json:"code"`
	Severity    ErrorSeverity          `json:"severity"`
	Message     string                 `json:"message"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// DefaultErrorHandlerConfig returns default configuration
func DefaultErrorHandlerConfig() ErrorHandlerConfig {
	homeDir, _ := os.UserHomeDir()
	return ErrorHandlerConfig{
		LogToFile:   true,
		LogFilePath: filepath.Join(homeDir, ".codereview", "errors.log"),
	}
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) (*ErrorHandler, error) {
	handler := &ErrorHandler{config: config}

	if config.LogToFile {
		logDir := filepath.Dir(config.LogFilePath)
		if err := os.MkdirAll(logDir, common.DirPermissionSecure); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, common.FilePermissionSecure)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		handler.logFile = file
		handler.logWriter = file
	}

	return handler, nil
}

// Handle records an error and prints it to standard error
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	h.Log(err)
}

// Log records an error without printing it, for callers that render the
// error themselves
func (h *ErrorHandler) Log(err error) {
	if err == nil {
		return
	}
	h.log(err)
}

// HandleFatal records an error, prints it, and exits with a non-zero status.
// Every fatal condition in this tool requires operator re-invocation; there
// is no automatic retry.
func (h *ErrorHandler) HandleFatal(err error) {
	if err == nil {
		return
	}

	h.Handle(err)
	h.Close()
	os.Exit(1)
}

// Close releases the log file
func (h *ErrorHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.logFile != nil {
		_ = h.logFile.Close()
		h.logFile = nil
	}
}

func (h *ErrorHandler) log(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.logWriter == nil {
		return
	}

	entry := ErrorLogEntry{
		Timestamp: time.Now(),
		Code:      GetErrorCode(err),
		Severity:  SeverityError,
		Message:   err.Error(),
	}
	if appErr, ok := err.(*AppError); ok {
		entry.Severity = appErr.Severity
		entry.Context = appErr.Context
		entry.Recoverable = appErr.Recoverable
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		return
	}
	fmt.Fprintln(h.logWriter, string(data))
}
