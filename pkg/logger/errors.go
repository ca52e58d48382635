package logger

import "errors"

var (
	ErrInvalidLevel    = errors.New("logger: invalid level")
	ErrInvalidEncoding = errors.New("logger: invalid encoding")
)
