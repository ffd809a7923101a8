package database

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("database not initialized")
)
