package filter

import "errors"

// ErrInvalidInput marks a nil or malformed argument to a public entry point.
// It is fatal to that single call; the caller must supply valid input.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidConfiguration marks a structural misconfiguration detected when
// a component is constructed. It never occurs at evaluation time: all
// validation happens once, up front.
var ErrInvalidConfiguration = errors.New("invalid configuration")
