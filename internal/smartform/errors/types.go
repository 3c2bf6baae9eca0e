package errors

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"time"
)

// SmartFormError represents a failure while handling a SmartForm row stream,
// carrying enough context for the transport layer to report it.
type SmartFormError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	RowIndex   int       `json:"row_index,omitempty"`
	RowID      int       `json:"row_id,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	StackTrace string    `json:"stack_trace,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	cause      error
}

// ErrorType represents different categories of SmartForm errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidInput
	ErrorTypeRequestTooLarge
	ErrorTypeInvalidFile
	ErrorTypeSecurityRestriction
	ErrorTypeInternalFault
	ErrorTypeTimeout
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// Error implements the error interface
func (e *SmartFormError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying error, if any
func (e *SmartFormError) Unwrap() error {
	return e.cause
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeRequestTooLarge:
		return "REQUEST_TOO_LARGE"
	case ErrorTypeInvalidFile:
		return "INVALID_FILE"
	case ErrorTypeSecurityRestriction:
		return "SECURITY_RESTRICTION"
	case ErrorTypeInternalFault:
		return "INTERNAL_FAULT"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// String returns a string representation of the ErrorSeverity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeInternalFault:
		return SeverityCritical
	case ErrorTypeInvalidInput, ErrorTypeInvalidFile, ErrorTypeRequestTooLarge:
		return SeverityWarning
	case ErrorTypeSecurityRestriction, ErrorTypeTimeout:
		return SeverityError
	default:
		return SeverityError
	}
}

// IsClientError reports whether the error was caused by the caller's input
// rather than by the parser itself.
func (et ErrorType) IsClientError() bool {
	switch et {
	case ErrorTypeInvalidInput, ErrorTypeRequestTooLarge, ErrorTypeInvalidFile, ErrorTypeSecurityRestriction:
		return true
	default:
		return false
	}
}

// New creates a new SmartFormError
func New(errorType ErrorType, message string) *SmartFormError {
	return &SmartFormError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new SmartFormError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *SmartFormError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps a standard error as a SmartFormError
func Wrap(errorType ErrorType, err error) *SmartFormError {
	return &SmartFormError{
		Type:      errorType,
		Message:   err.Error(),
		Timestamp: time.Now(),
		cause:     err,
	}
}

// NewInternalFault converts a recovered panic value into an error. The stack
// trace is captured at the call site, so call it from the deferred recover.
func NewInternalFault(recovered any) *SmartFormError {
	e := &SmartFormError{
		Type:       ErrorTypeInternalFault,
		Message:    fmt.Sprintf("smartform parse failed: %v", recovered),
		StackTrace: string(debug.Stack()),
		Timestamp:  time.Now(),
	}
	if err, ok := recovered.(error); ok {
		e.cause = err
	}
	return e
}

// WithContext adds context to an existing error
func (e *SmartFormError) WithContext(context string) *SmartFormError {
	e.Context = context
	return e
}

// WithRow records which row was being processed
func (e *SmartFormError) WithRow(index, id int) *SmartFormError {
	e.RowIndex = index
	e.RowID = id
	return e
}

// WithFile adds file path information to an existing error
func (e *SmartFormError) WithFile(filePath string) *SmartFormError {
	e.FilePath = filePath
	return e
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not a
// SmartFormError.
func TypeOf(err error) ErrorType {
	var sfErr *SmartFormError
	if stderrors.As(err, &sfErr) {
		return sfErr.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err is a SmartFormError of the given type
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}
