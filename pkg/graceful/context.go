// Package graceful ties process lifetime to OS termination signals.
package graceful

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Context returns a child of parent that is canceled when the process
// receives SIGINT or SIGTERM, so consumers can finish in-flight work and
// exit cleanly. The returned cancel func releases the signal handler.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			log.Printf("Received %s, starting graceful shutdown...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
