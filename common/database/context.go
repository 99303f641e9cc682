package database

import (
	"context"
	"time"
)

const (
	// ReadTimeout bounds single reads such as health pings.
	ReadTimeout = 5 * time.Second

	// WriteTimeout bounds writes issued outside a request, where no client
	// deadline applies.
	WriteTimeout = 10 * time.Second
)

// QueryContext derives a context limited to ReadTimeout.
func QueryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ReadTimeout)
}

// WriteContext derives a context limited to WriteTimeout.
func WriteContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, WriteTimeout)
}
