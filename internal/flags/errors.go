package flags

import "errors"

var (
	ErrInvalidOperator = errors.New("invalid flag operator")
	ErrUnknownFlag     = errors.New("unknown flag name")
)
