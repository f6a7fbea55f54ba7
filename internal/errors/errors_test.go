package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestMalformedRecordError(t *testing.T) {
	err := NewMissingFieldError(3, "product_id")

	expectedMsg := "malformed record at row 3: field 'product_id' is missing"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrMalformedRecord) {
		t.Error("Expected error to match ErrMalformedRecord sentinel")
	}

	if errors.Is(err, ErrProductNotFound) {
		t.Error("Error should not match ErrProductNotFound")
	}

	custom := NewMalformedRecordError(0, "star_rating", "must be between 1 and 5")
	if custom.Error() != "malformed record at row 0: field 'star_rating' must be between 1 and 5" {
		t.Errorf("Unexpected message: %s", custom.Error())
	}
}

func TestProductNotFoundError(t *testing.T) {
	err := NewProductNotFoundError("P3")

	expectedMsg := "product with ID 'P3' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrProductNotFound) {
		t.Error("Expected error to match ErrProductNotFound sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	jobID := "job-456"
	err := NewJobNotFoundError(jobID)

	expectedMsg := "job with ID 'job-456' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("top_n", "must be positive")

	expectedMsg := "validation error for field 'top_n': must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", "must be positive")

	expectedMsg2 := "validation error: must be positive"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err2, ErrInvalidInput) {
		t.Error("Expected validation errors to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	wrappedErr := fmt.Errorf("compare: %w", NewProductNotFoundError("P9"))

	if !errors.Is(wrappedErr, ErrProductNotFound) {
		t.Error("Expected wrapped error to still match ErrProductNotFound sentinel")
	}

	var notFound *ProductNotFoundError
	if !errors.As(wrappedErr, &notFound) {
		t.Fatal("Expected to be able to unwrap to ProductNotFoundError")
	}

	if notFound.ProductID != "P9" {
		t.Errorf("Expected product ID 'P9', got '%s'", notFound.ProductID)
	}

	joined := errors.Join(ErrIndexNotBuilt, errors.New("additional context"))
	if !errors.Is(joined, ErrIndexNotBuilt) {
		t.Error("Expected joined error to match ErrIndexNotBuilt sentinel")
	}
}
