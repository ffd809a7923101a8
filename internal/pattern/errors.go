package pattern

import "errors"

var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrPatternTimeout = errors.New("pattern match timed out")
)
