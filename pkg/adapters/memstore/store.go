// Package memstore provides a frame store that holds every frame in memory.
//
// Preload reads the whole video once through another store. Startup costs
// one full read and FrameCount*FrameSize bytes of memory; playback afterwards
// does no I/O.
package memstore

import (
	"fmt"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// Store implements ports.FrameStore over preloaded frames.
type Store struct {
	source pipeline.VideoSource
	frames []pipeline.RawFrame
}

// Preload reads frames [0, FrameCount) from src. src stays open and
// remains owned by the caller.
func Preload(src ports.FrameStore, logger ports.Logger) (*Store, error) {
	source := src.Source()
	logger.WithComponent("memstore").Info("Preloading %d frames", source.FrameCount)

	frames, err := src.LoadRange(0, source.FrameCount)
	if err != nil {
		return nil, fmt.Errorf("preload: %w", err)
	}
	return New(source, frames), nil
}

// New wraps already loaded frames. frames[i] must hold frame i.
func New(source pipeline.VideoSource, frames []pipeline.RawFrame) *Store {
	return &Store{source: source, frames: frames}
}

// Source returns the video source.
func (s *Store) Source() pipeline.VideoSource {
	return s.source
}

// FrameAt returns the frame at index.
func (s *Store) FrameAt(index int) (pipeline.RawFrame, error) {
	if index < 0 || index >= len(s.frames) {
		return pipeline.RawFrame{}, &pipeline.IndexError{Index: index, Count: len(s.frames)}
	}
	return s.frames[index], nil
}

// LoadRange returns frames [start, end).
func (s *Store) LoadRange(start, end int) ([]pipeline.RawFrame, error) {
	if start < 0 || start > end || end > len(s.frames) {
		return nil, &pipeline.RangeError{Start: start, End: end, Count: len(s.frames)}
	}
	out := make([]pipeline.RawFrame, end-start)
	copy(out, s.frames[start:end])
	return out, nil
}

// Sequential returns a cursor over the preloaded frames.
func (s *Store) Sequential(start int) (ports.FrameReader, error) {
	if start < 0 || start > len(s.frames) {
		return nil, &pipeline.IndexError{Index: start, Count: len(s.frames)}
	}
	return &reader{frames: s.frames, next: start}, nil
}

// Close drops the frames.
func (s *Store) Close() error {
	s.frames = nil
	return nil
}

type reader struct {
	frames []pipeline.RawFrame
	next   int
}

func (r *reader) Next() (pipeline.RawFrame, error) {
	if r.next >= len(r.frames) {
		return pipeline.RawFrame{}, pipeline.ErrEndOfStream
	}
	f := r.frames[r.next]
	r.next++
	return f, nil
}

func (r *reader) Close() error {
	r.frames = nil
	return nil
}

var _ ports.FrameStore = (*Store)(nil)
