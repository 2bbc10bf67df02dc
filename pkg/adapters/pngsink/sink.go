// Package pngsink provides a display sink that writes each presented frame
// as a PNG file.
package pngsink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// labelHeight is the height of the caption strip in output pixels.
const labelHeight = 18

// Options configures the sink.
type Options struct {
	// Scale enlarges each frame by an integer factor with nearest-neighbor
	// sampling. Values below 1 mean 1.
	Scale int

	// Label draws the caption in a strip below the frame.
	Label bool
}

// Sink saves presented frames to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	opts    Options

	mu      sync.Mutex
	written []string
}

// New creates a PNG sink writing into baseDir.
func New(baseDir string, fs ports.FileSystem, opts Options) *Sink {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		opts:    opts,
	}
}

// Open creates the output directory.
func (s *Sink) Open(ctx context.Context, title string) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// Present saves the frame as frame-NNNN.png.
func (s *Sink) Present(frame pipeline.DisplayFrame, label string) error {
	img := s.compose(frame, label)

	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Index, err)
	}

	path := filepath.Join(s.baseDir, fmt.Sprintf("frame-%04d.png", frame.Index))
	if err := s.fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write frame %d: %w", frame.Index, err)
	}

	s.mu.Lock()
	s.written = append(s.written, path)
	s.mu.Unlock()
	return nil
}

func (s *Sink) compose(frame pipeline.DisplayFrame, label string) image.Image {
	w := frame.Width * s.opts.Scale
	h := frame.Height * s.opts.Scale

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	if !s.opts.Label || label == "" {
		return scaled
	}

	dc := gg.NewContext(w, h+labelHeight)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.DrawImage(scaled, 0, 0)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(label, 4, float64(h)+labelHeight/2, 0, 0.5)
	return dc.Image()
}

// PollInput never reports a key; files have no input device.
func (s *Sink) PollInput(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error) {
	return pipeline.KeyEvent{}, false, ctx.Err()
}

// Close does nothing; every frame is written by Present.
func (s *Sink) Close() error {
	return nil
}

// Written returns the paths written so far, in order.
func (s *Sink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// Ensure Sink implements ports.DisplaySink
var _ ports.DisplaySink = (*Sink)(nil)
