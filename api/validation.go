// Package api provides the HTTP surface of the review service and the
// validation helpers for its requests.
package api

import (
	"fmt"
	"strconv"
	"strings"
)

// maxCompareProducts bounds POST /products/compare.
const maxCompareProducts = 50

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ParseLimit parses an optional non-negative integer query parameter.
// An absent parameter yields def; values above max (when max > 0) are
// rejected. Zero is passed through so callers can apply their own meaning.
func ParseLimit(field, raw string, def, max int) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, result
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError(field, fmt.Sprintf("%s must be an integer, got '%s'", field, raw))
		return 0, result
	}
	if n < 0 {
		result.AddError(field, fmt.Sprintf("%s cannot be negative", field))
		return 0, result
	}
	if max > 0 && n > max {
		result.AddError(field, fmt.Sprintf("%s cannot exceed %d", field, max))
		return 0, result
	}
	return n, result
}

// ValidateProductID validates a product ID path parameter
func ValidateProductID(productID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if productID == "" {
		result.AddError("productId", "Product ID is required")
		return result
	}

	if strings.TrimSpace(productID) != productID {
		result.AddError("productId", "Product ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateCompareRequest validates the body of a multi-product comparison.
func ValidateCompareRequest(req *CompareRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.ProductIDs) == 0 {
		result.AddError("product_ids", "At least one product ID is required")
		return result
	}
	if len(req.ProductIDs) > maxCompareProducts {
		result.AddError("product_ids", fmt.Sprintf("At most %d products can be compared at once", maxCompareProducts))
		return result
	}

	seen := make(map[string]bool, len(req.ProductIDs))
	for i, id := range req.ProductIDs {
		field := fmt.Sprintf("product_ids[%d]", i)
		if strings.TrimSpace(id) == "" {
			result.AddError(field, "Product ID cannot be empty")
			continue
		}
		if seen[id] {
			result.AddError(field, "Duplicate product ID '"+id+"'")
		}
		seen[id] = true
	}

	return result
}

// ValidateMultiSearchRequest validates a multi-search body against the
// configured top_k ceiling.
func ValidateMultiSearchRequest(req *MultiSearchRequest, maxTopK int) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}

	names := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		field := fmt.Sprintf("queries[%d]", i)
		if q.Name == "" {
			result.AddError(field+".name", "All queries must have a non-empty name")
		} else if names[q.Name] {
			result.AddError(field+".name", "Query names must be unique: '"+q.Name+"' appears multiple times")
		}
		names[q.Name] = true

		if q.TopK < 0 {
			result.AddError(field+".top_k", "top_k cannot be negative")
		} else if maxTopK > 0 && q.TopK > maxTopK {
			result.AddError(field+".top_k", fmt.Sprintf("top_k cannot exceed %d", maxTopK))
		}
	}

	return result
}
