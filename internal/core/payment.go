package core

import "regexp"

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Payment is the user-entered request before it becomes a Transaction
type Payment struct {
	RecipientEmail string
	Amount         int64
	Currency       Currency
}

// Validate checks the payment before any side effect happens.
// The email is checked before the amount.
func (p Payment) Validate() error {
	if !emailPattern.MatchString(p.RecipientEmail) {
		return &ValidationError{Reason: "Invalid email format"}
	}
	if p.Amount <= 0 {
		return &ValidationError{Reason: "Amount must be greater than zero"}
	}
	if _, ok := currencySymbols[p.Currency]; !ok {
		return &ValidationError{Reason: "Unsupported currency"}
	}
	return nil
}
