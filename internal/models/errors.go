package models

import "errors"

// Ledger and collaborator error taxonomy. All ledger failures are local and
// synchronous: an operation either applies in full or leaves state untouched.
var (
	// ErrValidation indicates bad user input; no mutation occurred.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds indicates a buy or withdrawal exceeding the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound indicates a stale or unknown record ID.
	ErrNotFound = errors.New("not found")

	// ErrModelUnavailable indicates the generative-AI client is not configured.
	ErrModelUnavailable = errors.New("AI model unavailable")

	// ErrUnsupportedFormat indicates a document of an unrecognized kind.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptFile indicates a document that could not be decoded.
	ErrCorruptFile = errors.New("corrupt document")

	// ErrColumnNotFound indicates a trading-summary CSV missing a required column.
	ErrColumnNotFound = errors.New("required column not found")
)
