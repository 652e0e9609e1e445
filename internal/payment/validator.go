package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MsgEmptyPayerID      = "payer id cannot be empty"
	MsgEmptyVendorID     = "vendor id cannot be empty"
	MsgNonPositiveAmount = "amount must be positive"
)

// Validator checks the shape of a payment request before any external stage runs.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() Validator {
	return Validator{}
}

// Validate checks payer id, vendor id and amount, in that order.
func (Validator) Validate(payerID, vendorID string, amount decimal.Decimal) Outcome {
	if strings.TrimSpace(payerID) == "" {
		return Fail(MsgEmptyPayerID)
	}
	if strings.TrimSpace(vendorID) == "" {
		return Fail(MsgEmptyVendorID)
	}
	if !amount.IsPositive() {
		return Fail(MsgNonPositiveAmount)
	}
	return Ok()
}
