// Package ports defines interfaces for the player's collaborators.
package ports

import "github.com/user/yuvplay/pkg/pipeline"

// FrameStore gives indexed access to the raw frames of one VideoSource.
type FrameStore interface {
	// Source returns the source the store was opened for.
	Source() pipeline.VideoSource

	// FrameAt reads the frame at index without touching preceding frames.
	// Returns an error wrapping pipeline.ErrIndexOutOfRange for indices
	// outside [0, FrameCount).
	FrameAt(index int) (pipeline.RawFrame, error)

	// LoadRange returns frames [start, end) in index order.
	LoadRange(start, end int) ([]pipeline.RawFrame, error)

	// Sequential returns a forward cursor positioned at start.
	Sequential(start int) (FrameReader, error)

	// Close releases the underlying file.
	Close() error
}

// FrameReader reads consecutive frames.
type FrameReader interface {
	// Next returns the next frame, pipeline.ErrEndOfStream after the last
	// one, or pipeline.ErrTruncatedFrame when the data ends mid-frame.
	Next() (pipeline.RawFrame, error)

	// Close releases the cursor.
	Close() error
}
