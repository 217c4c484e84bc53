package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents category page load failures
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeNotFound represents pages that do not exist and are not worth retrying
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeExtraction represents unreadable listing elements or missing listing containers
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeEvaluator represents reasoning service request or parse errors
	ErrorTypeEvaluator ErrorType = "evaluator"
	// ErrorTypeDelivery represents alert delivery errors
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// DealError represents an error raised somewhere in the deal pipeline
type DealError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *DealError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *DealError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable.
// Only page navigation is ever retried.
func (e *DealError) IsRetryable() bool {
	return e.Type == ErrorTypeNavigation
}

// New creates a new DealError
func New(errType ErrorType, source, message string, err error) *DealError {
	return &DealError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(source, message string, err error) *DealError {
	return New(ErrorTypeNavigation, source, message, err)
}

// NewNotFound creates a new not-found error
func NewNotFound(source, message string, err error) *DealError {
	return New(ErrorTypeNotFound, source, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(source, message string, err error) *DealError {
	return New(ErrorTypeExtraction, source, message, err)
}

// NewEvaluator creates a new evaluator error
func NewEvaluator(source, message string, err error) *DealError {
	return New(ErrorTypeEvaluator, source, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(source, message string, err error) *DealError {
	return New(ErrorTypeDelivery, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *DealError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// IsType reports whether err is, or wraps, a DealError of the given type
func IsType(err error, errType ErrorType) bool {
	var de *DealError
	if !stderrors.As(err, &de) {
		return false
	}
	return de.Type == errType
}
