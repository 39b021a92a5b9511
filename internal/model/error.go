package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeInvalidValue         = "INVALID_VALUE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeCustomerNameRequired = "CUSTOMER_NAME_REQUIRED"
	ErrCodeInvalidDateRange     = "INVALID_DATE_RANGE"
	ErrCodeInvalidRole          = "INVALID_ROLE"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeDuplicateName        = "DUPLICATE_NAME"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Kind groups domain errors into the categories the HTTP layer maps to status codes.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindForbidden
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Kind    Kind
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity      = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be a positive whole number within limits")
	ErrInvalidPaymentMethod = NewDomainError(KindValidation, ErrCodeInvalidPaymentMethod, "Payment method must be cash, mobile-money or credit")
	ErrCustomerNameRequired = NewDomainError(KindValidation, ErrCodeCustomerNameRequired, "Customer name is required for credit sales")
	ErrInvalidValue         = NewDomainError(KindValidation, ErrCodeInvalidValue, "Price cannot be negative and stock must be between 0 and 2147483647")
	ErrNameRequired         = NewDomainError(KindValidation, ErrCodeValidation, "Name is required")
	ErrInvalidDateRange     = NewDomainError(KindValidation, ErrCodeInvalidDateRange, "Dates must be YYYY-MM-DD and start must not be after end")
	ErrInvalidRole          = NewDomainError(KindValidation, ErrCodeInvalidRole, "Invalid role selected")
	ErrPasswordRequired     = NewDomainError(KindValidation, ErrCodeValidation, "Username and password are required")
	ErrProductNotFound      = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound     = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrUserNotFound         = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrDuplicateName        = NewDomainError(KindConflict, ErrCodeDuplicateName, "Name already exists")
	ErrUsernameTaken        = NewDomainError(KindConflict, ErrCodeDuplicateName, "Username already exists")
	ErrInvalidCredentials   = NewDomainError(KindUnauthenticated, ErrCodeInvalidCredentials, "Invalid username or password")
	ErrUnauthenticated      = NewDomainError(KindUnauthenticated, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden            = NewDomainError(KindForbidden, ErrCodeForbidden, "Access denied")
)

// InsufficientStockError reports a cart line or stock update that asks for more than is on hand.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

// ProductNotFoundError names the product id that could not be resolved.
// It matches ErrProductNotFound with errors.Is.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// AsDomainError unwraps err into a *DomainError when possible.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
