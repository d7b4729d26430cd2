package signaler

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WaitForInterrupt returns a channel which receives the interrupt and
// terminate signals
func WaitForInterrupt() chan os.Signal {
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	return sigC
}

// WithInterrupt returns a context which is cancelled when the process is
// interrupted or terminated, or when the returned cancel func is called
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigC := WaitForInterrupt()
	go func() {
		defer signal.Stop(sigC)
		select {
		case <-sigC:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
