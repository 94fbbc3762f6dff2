package common

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")

	ErrClosed = errors.New("index closed")
)
