package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrMalformedRecord is returned when a raw review row misses a required field
	// or carries a value outside its typed range
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptyQuery marks a query that has no tokens after normalization
	ErrEmptyQuery = errors.New("empty query")

	// ErrProductNotFound is returned when a comparison target has no reviews
	ErrProductNotFound = errors.New("product not found")

	// ErrIndexNotBuilt is returned when a query arrives before the first build completed
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// MalformedRecordError represents a rejected raw row with context
type MalformedRecordError struct {
	Row    int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at row %d: field '%s' %s", e.Row, e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMissingFieldError creates a MalformedRecordError for an absent field
func NewMissingFieldError(row int, field string) *MalformedRecordError {
	return &MalformedRecordError{Row: row, Field: field, Reason: "is missing"}
}

// NewMalformedRecordError creates a MalformedRecordError with a custom reason
func NewMalformedRecordError(row int, field, reason string) *MalformedRecordError {
	return &MalformedRecordError{Row: row, Field: field, Reason: reason}
}

// ProductNotFoundError represents a product not found error with context
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID '%s' not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// NewProductNotFoundError creates a new ProductNotFoundError
func NewProductNotFoundError(productID string) *ProductNotFoundError {
	return &ProductNotFoundError{ProductID: productID}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
