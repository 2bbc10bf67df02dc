// Package rawfile provides a frame store backed by a headerless I420 file.
//
// FrameAt and LoadRange use positional reads on one shared handle, so they
// never read preceding frames and are safe for concurrent use: there is no
// shared file offset to race on. Each sequential reader opens its own handle
// and streams forward from its start frame. Memory use is one frame per call.
package rawfile

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// ErrClosed is returned by calls on a closed store.
var ErrClosed = errors.New("rawfile: store closed")

// Store implements ports.FrameStore over a raw file.
type Store struct {
	fs     ports.FileSystem
	source pipeline.VideoSource
	logger ports.Logger

	mu     sync.RWMutex
	file   ports.File
	closed bool
}

// Open opens the raw file described by source.
func Open(fs ports.FileSystem, source pipeline.VideoSource, logger ports.Logger) (*Store, error) {
	if err := source.Geometry.Validate(); err != nil {
		return nil, err
	}
	file, err := fs.Open(source.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source.Path, err)
	}
	log := logger.WithComponent("rawfile")
	log.Debug("Opened %s (%d frames of %d bytes)", source.Path, source.FrameCount, source.FrameSize)
	return &Store{
		fs:     fs,
		source: source,
		logger: log,
		file:   file,
	}, nil
}

// Source returns the video source.
func (s *Store) Source() pipeline.VideoSource {
	return s.source
}

// FrameAt reads the frame at index.
func (s *Store) FrameAt(index int) (pipeline.RawFrame, error) {
	if err := s.source.CheckIndex(index); err != nil {
		return pipeline.RawFrame{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return pipeline.RawFrame{}, ErrClosed
	}
	return s.readAt(index)
}

// LoadRange reads frames [start, end) in order.
func (s *Store) LoadRange(start, end int) ([]pipeline.RawFrame, error) {
	if start < 0 || start > end || end > s.source.FrameCount {
		return nil, &pipeline.RangeError{Start: start, End: end, Count: s.source.FrameCount}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	frames := make([]pipeline.RawFrame, 0, end-start)
	for i := start; i < end; i++ {
		frame, err := s.readAt(i)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// readAt must be called with mu held.
func (s *Store) readAt(index int) (pipeline.RawFrame, error) {
	buf := make([]byte, s.source.FrameSize)
	n, err := s.file.ReadAt(buf, s.source.Offset(index))
	if n == len(buf) {
		return pipeline.RawFrame{Index: index, Data: buf}, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return pipeline.RawFrame{}, fmt.Errorf("%w: frame %d has %d of %d bytes",
			pipeline.ErrTruncatedFrame, index, n, len(buf))
	}
	return pipeline.RawFrame{}, fmt.Errorf("read frame %d: %w", index, err)
}

// Sequential opens a forward reader starting at frame start. A start equal
// to FrameCount yields a reader that is already at end of stream.
func (s *Store) Sequential(start int) (ports.FrameReader, error) {
	if start < 0 || start > s.source.FrameCount {
		return nil, &pipeline.IndexError{Index: start, Count: s.source.FrameCount}
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	file, err := s.fs.Open(s.source.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.source.Path, err)
	}
	if _, err := file.Seek(s.source.Offset(start), io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek to frame %d: %w", start, err)
	}
	return &Reader{
		file:   file,
		source: s.source,
		next:   start,
	}, nil
}

// Close releases the shared handle. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// Reader streams frames forward from its own file handle.
type Reader struct {
	file   ports.File
	source pipeline.VideoSource
	next   int
	closed bool
}

// Next returns the next frame.
func (r *Reader) Next() (pipeline.RawFrame, error) {
	if r.closed {
		return pipeline.RawFrame{}, ErrClosed
	}
	if r.next >= r.source.FrameCount {
		return pipeline.RawFrame{}, pipeline.ErrEndOfStream
	}

	buf := make([]byte, r.source.FrameSize)
	n, err := io.ReadFull(r.file, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return pipeline.RawFrame{}, fmt.Errorf("%w: frame %d has %d of %d bytes",
			pipeline.ErrTruncatedFrame, r.next, n, len(buf))
	default:
		return pipeline.RawFrame{}, fmt.Errorf("read frame %d: %w", r.next, err)
	}

	frame := pipeline.RawFrame{Index: r.next, Data: buf}
	r.next++
	return frame, nil
}

// Close releases the reader's handle.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

var (
	_ ports.FrameStore  = (*Store)(nil)
	_ ports.FrameReader = (*Reader)(nil)
)
