package apperrors

import (
	"errors"
	"fmt"
)

// Category represents different types of errors that can occur during analysis
type Category string

const (
	// Structured non-fatal outcomes surfaced to callers
	CategoryDataInsufficient   Category = "DATA_INSUFFICIENT"
	CategoryStaleData          Category = "STALE_DATA"
	CategoryInstrumentNotFound Category = "INSTRUMENT_NOT_FOUND"

	// Recovered locally, never aborts a whole analysis
	CategoryModelFit Category = "MODEL_FIT"

	// Infrastructure errors outside the core pipeline
	CategoryNetwork Category = "NETWORK"
	CategoryConfig  Category = "CONFIG"
	CategoryStorage Category = "STORAGE"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrDataInsufficient   = errors.New("insufficient data for analysis")
	ErrStaleData          = errors.New("market data is stale")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrModelFit           = errors.New("model fitting failed")
)

// AnalysisError is a categorized error with component/operation context.
type AnalysisError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// Is maps categories onto the package sentinels so callers can use errors.Is
// without depending on the concrete type.
func (e *AnalysisError) Is(target error) bool {
	switch target {
	case ErrDataInsufficient:
		return e.Category == CategoryDataInsufficient
	case ErrStaleData:
		return e.Category == CategoryStaleData
	case ErrInstrumentNotFound:
		return e.Category == CategoryInstrumentNotFound
	case ErrModelFit:
		return e.Category == CategoryModelFit
	}
	return false
}

// IsFatal reports whether the error should abort the whole analysis rather
// than surface as a structured outcome.
func (e *AnalysisError) IsFatal() bool {
	switch e.Category {
	case CategoryDataInsufficient, CategoryStaleData, CategoryInstrumentNotFound, CategoryModelFit:
		return false
	}
	return true
}

// New creates a new categorized analysis error
func New(category Category, component, operation, message string) *AnalysisError {
	return &AnalysisError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Wrap wraps an existing error with analysis error context
func Wrap(err error, category Category, component, operation string) *AnalysisError {
	if err == nil {
		return nil
	}
	return &AnalysisError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// Common constructors

func NewDataInsufficient(component, operation, message string) *AnalysisError {
	return New(CategoryDataInsufficient, component, operation, message)
}

func NewStaleData(component, operation, message string) *AnalysisError {
	return New(CategoryStaleData, component, operation, message)
}

func NewInstrumentNotFound(component, query string) *AnalysisError {
	return New(CategoryInstrumentNotFound, component, "resolve", fmt.Sprintf("instrument %q not found", query))
}

func NewModelFit(component, operation string, err error) *AnalysisError {
	return Wrap(err, CategoryModelFit, component, operation)
}

// CategoryOf extracts the category from an error chain, defaulting to NETWORK
// for uncategorized failures from external collaborators.
func CategoryOf(err error) Category {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Category
	}
	return CategoryNetwork
}
