package main

import (
	"context"
	"time"
)

// shutdownTimeout bounds the wait for in-flight submissions on exit.
const shutdownTimeout = 30 * time.Second

func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
