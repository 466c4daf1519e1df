package actions

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityMissing means no caller identity could be resolved from the request.
	ErrIdentityMissing = errors.New("no caller identity on request")
	// ErrIntentUnparseable means the message matched an action but its
	// address/amount could not be extracted.
	ErrIntentUnparseable = errors.New("could not parse intent")
)

// InsufficientFundsError carries both figures so the reply can state them.
type InsufficientFundsError struct {
	Symbol    string
	Held      string
	Requested string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %s %s, requested %s %s", e.Held, e.Symbol, e.Requested, e.Symbol)
}
