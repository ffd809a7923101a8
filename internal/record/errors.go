package record

import "errors"

var (
	ErrInvalidKey       = errors.New("invalid record key")
	ErrUnknownWaterType = errors.New("unknown water type")
	ErrUnknownFormat    = errors.New("unknown record file format")
)
