package order

import (
	"errors"
	"strings"

	"github.com/gofrs/uuid"
)

// Machine-readable error codes surfaced to API clients on 400 responses.
const (
	CodePaymentSlipRequired = "PAYMENT_SLIP_REQUIRED"
	CodeMissingCustomerInfo = "MISSING_CUSTOMER_INFO"
	CodeMissingOrderInfo    = "MISSING_ORDER_INFO"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInvalidDataFormat   = "INVALID_DATA_FORMAT"
)

// ValidationError is a payload rejection with a stable error code.
type ValidationError struct {
	Code    string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// CreateInput is the order placement payload as supplied by the caller.
// TotalAmount is stored verbatim; creation never recomputes it from the
// price snapshot (only edits do).
type CreateInput struct {
	UserID              uuid.UUID
	ProductID           uuid.UUID
	CustomerName        string
	Email               string
	Phone               string
	Address             string
	ProductImage        []string
	ProductTitle        string
	ProductPrice        float64
	Size                string
	Color               string
	Quantity            int
	SpecialInstructions string
	PaymentMethod       PaymentMethod
	PaymentSlip         string
	TotalAmount         float64
}

// ValidateCreate checks a placement payload. Rule groups are evaluated in a
// fixed order and the first failing group wins, but every missing field
// inside a group is reported together.
func ValidateCreate(in CreateInput) (Payment, *ValidationError) {
	payment, err := NewPayment(in.PaymentMethod, in.PaymentSlip)
	if err != nil {
		if errors.Is(err, ErrSlipRequired) {
			return Payment{}, &ValidationError{
				Code:    CodePaymentSlipRequired,
				Message: "Payment slip is required for online payments.",
			}
		}
		return Payment{}, &ValidationError{
			Code:    CodeValidationError,
			Message: "Validation failed",
			Details: []string{err.Error()},
		}
	}

	var missing []string
	if in.CustomerName == "" {
		missing = append(missing, "customerName")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Phone == "" {
		missing = append(missing, "phone")
	}
	if in.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return Payment{}, &ValidationError{
			Code:    CodeMissingCustomerInfo,
			Message: "Required customer information is missing",
			Details: missing,
		}
	}

	missing = missing[:0]
	if in.ProductID == uuid.Nil {
		missing = append(missing, "productId")
	}
	if in.TotalAmount == 0 {
		missing = append(missing, "totalAmount")
	}
	if in.UserID == uuid.Nil {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return Payment{}, &ValidationError{
			Code:    CodeMissingOrderInfo,
			Message: "Required order information is missing",
			Details: missing,
		}
	}

	return payment, nil
}

// EditInput is the self-service edit payload. Snapshot fields and payment
// details are deliberately absent: only customer info and order
// specifications are editable.
type EditInput struct {
	CustomerName        string
	Email               string
	Phone               string
	Address             string
	Size                string
	Color               string
	Quantity            int
	SpecialInstructions string
}

// ValidateEdit checks a self-service edit payload.
func ValidateEdit(in EditInput) *ValidationError {
	var details []string
	if in.CustomerName == "" {
		details = append(details, "customerName is required")
	}
	if in.Email == "" {
		details = append(details, "email is required")
	}
	if in.Phone == "" {
		details = append(details, "phone is required")
	}
	if in.Address == "" {
		details = append(details, "address is required")
	}
	if in.Size == "" {
		details = append(details, "size is required")
	}
	if in.Color == "" {
		details = append(details, "color is required")
	}
	if in.Quantity < 1 {
		details = append(details, "quantity must be at least 1")
	}
	if len(details) > 0 {
		return &ValidationError{
			Code:    CodeValidationError,
			Message: "Validation error",
			Details: details,
		}
	}
	return nil
}
