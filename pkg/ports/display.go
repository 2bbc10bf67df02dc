package ports

import (
	"context"
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
)

// DisplaySink renders frames and reports key presses.
type DisplaySink interface {
	// Open starts a display session (a window, a terminal screen, a directory).
	Open(ctx context.Context, title string) error

	// Present renders a frame with a caption.
	Present(frame pipeline.DisplayFrame, label string) error

	// PollInput waits up to timeout for a key. A zero timeout checks without
	// waiting; a negative timeout waits until a key arrives or ctx ends.
	// The bool result is false when no key was pressed. Sinks without an
	// input device return false at once instead of waiting.
	PollInput(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error)

	// Close ends the session.
	Close() error
}
