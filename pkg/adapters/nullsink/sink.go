// Package nullsink provides a display sink that discards frames.
package nullsink

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// Sink is a no-op implementation of ports.DisplaySink.
// It never reports a key; benchmarks and headless runs use it.
type Sink struct {
	presented atomic.Int64
}

// New creates a new null sink.
func New() *Sink {
	return &Sink{}
}

// Open does nothing.
func (s *Sink) Open(ctx context.Context, title string) error {
	return nil
}

// Present counts the frame and discards it.
func (s *Sink) Present(frame pipeline.DisplayFrame, label string) error {
	s.presented.Add(1)
	return nil
}

// PollInput never reports a key and never waits, whatever the timeout.
func (s *Sink) PollInput(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error) {
	return pipeline.KeyEvent{}, false, ctx.Err()
}

// Close does nothing.
func (s *Sink) Close() error {
	return nil
}

// Presented returns how many frames were discarded.
func (s *Sink) Presented() int {
	return int(s.presented.Load())
}

// Ensure Sink implements ports.DisplaySink
var _ ports.DisplaySink = (*Sink)(nil)
