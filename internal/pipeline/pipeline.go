// Package pipeline provides a small, generic abstraction for running the
// per-photo processing steps in order. A step failure aborts the current
// item; the pipeline itself keeps accepting further items.
package pipeline

import (
	"context"
	"fmt"
	"log"
)

// Step is a single processing operation that mutates the given item. Steps
// run strictly in order, so later steps can rely on fields produced by
// earlier ones. The context can be used to observe cancellation or timeouts.
//
// The item pointer allows steps to accumulate results in-place over the
// pipeline run.
type Step[T any] func(ctx context.Context, item *T) error

// Pipeline applies a fixed sequence of steps to each item. The first step
// error stops processing of that item and is returned to the caller; items
// are independent of each other.
//
// Pipeline is generic over the item type T.
type Pipeline[T any] struct {
	steps []Step[T]
}

// New constructs a Pipeline from the provided steps. Steps are applied to
// each item in the order given.
func New[T any](steps ...Step[T]) *Pipeline[T] {
	return &Pipeline[T]{steps: steps}
}

// Run applies every step to the item in order, stopping at the first error.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) error {
	for i, step := range p.steps {
		if err := step(ctx, item); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Process consumes items from the input channel and runs every step on each
// one. A failing item is logged and skipped; the stream keeps flowing until
// the channel is closed or the context is canceled.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-in:
			if !ok {
				return
			}
			if err := p.Run(ctx, item); err != nil {
				log.Printf("Pipeline item failed: %v", err)
			}
		}
	}
}
