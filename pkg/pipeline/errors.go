package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// ErrConfigMalformed is returned when a required key is missing or has the wrong type.
	ErrConfigMalformed = errors.New("config malformed")

	// ErrInputFileNotFound is returned when the raw video file does not exist.
	ErrInputFileNotFound = errors.New("input file not found")

	// ErrInvalidGeometry is returned for non-positive sizes or an odd height.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrIndexOutOfRange is returned for frame indices outside [0, frame count).
	ErrIndexOutOfRange = errors.New("frame index out of range")

	// ErrEndOfStream is returned by a sequential reader after the last frame.
	ErrEndOfStream = errors.New("end of stream")

	// ErrTruncatedFrame is returned when fewer bytes than a full frame are
	// available where a complete frame was expected.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrInvalidState is returned for player commands not allowed in the current state.
	ErrInvalidState = errors.New("invalid player state")
)

// IndexError reports an out-of-range frame index.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("frame index %d out of range [0, %d)", e.Index, e.Count)
}

// Unwrap lets errors.Is match ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// RangeError reports an invalid [Start, End) range.
type RangeError struct {
	Start int
	End   int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("frame range [%d, %d) invalid for %d frames", e.Start, e.End, e.Count)
}

func (e *RangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// GeometryError reports why a geometry was rejected.
type GeometryError struct {
	Geometry Geometry
	Reason   string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry %dx%d: %s", e.Geometry.Width, e.Geometry.Height, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}
