package core

import "errors"

// Common errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrReadOnly     = errors.New("repository is in read-only mode")
	ErrTxClosed     = errors.New("transaction closed")
)
