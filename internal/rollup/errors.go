package rollup

import "errors"

// Caller-contract violations. Data defects never produce these.
var (
	ErrInvalidPeriod = errors.New("rollup: invalid period")
	ErrInvalidRange  = errors.New("rollup: invalid range")
	ErrNegativeTopN  = errors.New("rollup: negative top-n")
	ErrNilBatch      = errors.New("rollup: nil record batch")
	ErrMissingNow    = errors.New("rollup: now is required")
	ErrInvalidScope  = errors.New("rollup: invalid scope")
)
