package workflow

import (
	"errors"

	"github.com/opshub-io/opshub/internal/apperr"
)

// ErrUnknownKind is returned for kind strings outside the closed set.
var ErrUnknownKind = errors.New("workflow: unknown request kind")

// Classified failures surfaced to callers. WF is the workflow domain; EXP
// and INV carry expense- and purchase-specific validation.
func errNotFound() *apperr.Error {
	return apperr.New("ERR-WF-001", "request not found")
}

func errTransition(from, to Status) *apperr.Error {
	return apperr.New("ERR-WF-002", "cannot move request from "+string(from)+" to "+string(to))
}

func errOwnRequest() *apperr.Error {
	return apperr.New("ERR-WF-003", "you cannot decide your own request")
}

func errNoteRequired() *apperr.Error {
	return apperr.New("ERR-WF-004", "a decision note is required when rejecting")
}

func errExpenseAmount() *apperr.Error {
	return apperr.New("ERR-EXP-001", "expense amount must be a positive value").
		AddField("amount_cents", "must be positive")
}

func errPurchaseAmount() *apperr.Error {
	return apperr.New("ERR-INV-001", "purchase amount must be a positive value").
		AddField("amount_cents", "must be positive")
}
