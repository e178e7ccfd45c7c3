// Package formulas provides pure financial calculations: risk metrics over
// return and value series, and Kelly-based position sizing.
//
// Numeric degeneracies (short series, zero volatility, non-positive scale
// factors, non-finite intermediates) are never errors. Each function maps them
// to a documented neutral value, usually 0. Errors are reserved for malformed
// input types and out-of-domain discrete arguments.
package formulas

import "errors"

var (
	// ErrInvalidInput is returned when a sequence contains a non-numeric element.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidArgument is returned for an out-of-domain discrete argument,
	// such as an unknown investment phase.
	ErrInvalidArgument = errors.New("invalid argument")
)
