package models

import "errors"

// Validation errors are surfaced synchronously and never silently corrected.
var (
	ErrDimensionMismatch    = errors.New("input dimension mismatch")
	ErrNonPositiveSigma     = errors.New("sigma components must be positive")
	ErrInvalidIterations    = errors.New("iteration count must be at least 1")
	ErrAllZeroProbabilities = errors.New("transition probabilities are all zero")
)

// Incomplete-data conditions are recoverable skips, not failures.
var (
	ErrGameNotFinished     = errors.New("game is not yet finished")
	ErrInsufficientHistory = errors.New("insufficient game history to build features")
)

// Persistence and fetch errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrTransientFetch = errors.New("upstream temporarily unavailable")
)
