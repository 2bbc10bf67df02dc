package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// PresentCall records a call to Present.
type PresentCall struct {
	Frame pipeline.DisplayFrame
	Label string
}

// DisplaySink is a recording implementation of ports.DisplaySink.
type DisplaySink struct {
	mu sync.Mutex

	OpenFunc      func(ctx context.Context, title string) error
	PresentFunc   func(frame pipeline.DisplayFrame, label string) error
	PollInputFunc func(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error)
	CloseFunc     func() error

	// Keys maps a presented frame index to the key reported by the first
	// PollInput after that frame was presented.
	Keys map[int]pipeline.KeyEvent

	// Recorded calls for verification
	Titles      []string
	Presented   []PresentCall
	PollCalls   int
	OpenCalls   int
	CloseCalls  int
	lastIndex   int
	keyConsumed bool
}

// NewDisplaySink creates a new mock DisplaySink.
func NewDisplaySink() *DisplaySink {
	return &DisplaySink{Keys: make(map[int]pipeline.KeyEvent), lastIndex: -1}
}

func (m *DisplaySink) Open(ctx context.Context, title string) error {
	m.mu.Lock()
	m.OpenCalls++
	m.Titles = append(m.Titles, title)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, title)
	}
	return nil
}

func (m *DisplaySink) Present(frame pipeline.DisplayFrame, label string) error {
	m.mu.Lock()
	m.Presented = append(m.Presented, PresentCall{Frame: frame, Label: label})
	m.lastIndex = frame.Index
	m.keyConsumed = false
	m.mu.Unlock()
	if m.PresentFunc != nil {
		return m.PresentFunc(frame, label)
	}
	return nil
}

func (m *DisplaySink) PollInput(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error) {
	m.mu.Lock()
	m.PollCalls++
	if m.PollInputFunc != nil {
		m.mu.Unlock()
		return m.PollInputFunc(ctx, timeout)
	}
	key, ok := m.Keys[m.lastIndex]
	if ok && !m.keyConsumed {
		m.keyConsumed = true
		m.mu.Unlock()
		return key, true, nil
	}
	m.mu.Unlock()
	if timeout < 0 {
		<-ctx.Done()
		return pipeline.KeyEvent{}, false, ctx.Err()
	}
	return pipeline.KeyEvent{}, false, nil
}

func (m *DisplaySink) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	fn := m.CloseFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil
}

// Indices returns the indices of presented frames in order.
func (m *DisplaySink) Indices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.Presented))
	for i, c := range m.Presented {
		out[i] = c.Frame.Index
	}
	return out
}

var _ ports.DisplaySink = (*DisplaySink)(nil)
