package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a stable identifier for a failure mode.
type Code string

const (
	// InputUnreadable indicates a file could not be opened or read
	InputUnreadable Code = "INPUT_UNREADABLE"
	// ParseFailure indicates source or a document could not be turned into a registry
	ParseFailure Code = "PARSE_FAILURE"
	// SchemaError indicates a well-formed document with an unexpected shape
	SchemaError Code = "SCHEMA_ERROR"
	// UnsupportedFormat indicates an unknown or unusable input/output format
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
)

// Sentinels for errors.Is; they match any *Error carrying the same code.
var (
	ErrInputUnreadable   = &Error{Code: InputUnreadable}
	ErrParseFailure      = &Error{Code: ParseFailure}
	ErrSchema            = &Error{Code: SchemaError}
	ErrUnsupportedFormat = &Error{Code: UnsupportedFormat}
)

// Error is a coded failure with an optional path and underlying cause.
type Error struct {
	Code    Code
	Message string
	Path    string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithPath attaches the file the error is about.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code, true
	}
	return "", false
}
