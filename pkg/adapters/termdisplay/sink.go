// Package termdisplay provides a display sink that draws frames in the
// terminal with half-block characters and reads keys from it.
//
// Each Open starts a Bubble Tea program that owns the terminal until Close,
// so the terminal is back in line mode between playback sessions.
package termdisplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// ErrNotOpen is returned by Present on a sink without an open session.
var ErrNotOpen = errors.New("termdisplay: not open")

// Options configures the sink.
type Options struct {
	Input  io.Reader
	Output io.Writer

	// Columns and Rows bound the picture until the terminal reports its size.
	Columns int
	Rows    int

	// AltScreen draws on the alternate screen buffer.
	AltScreen bool
}

// DefaultOptions reads from stdin and draws on stdout.
func DefaultOptions() Options {
	return Options{
		Input:     os.Stdin,
		Output:    os.Stdout,
		Columns:   80,
		Rows:      24,
		AltScreen: true,
	}
}

// Sink implements ports.DisplaySink on a terminal.
type Sink struct {
	opts Options
	keys chan pipeline.KeyEvent

	cols atomic.Int32
	rows atomic.Int32

	mu   sync.Mutex
	prog *tea.Program
	done chan error
}

// New creates a terminal sink.
func New(opts Options) *Sink {
	if opts.Columns <= 0 {
		opts.Columns = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	s := &Sink{
		opts: opts,
		keys: make(chan pipeline.KeyEvent, 16),
	}
	s.cols.Store(int32(opts.Columns))
	s.rows.Store(int32(opts.Rows))
	return s
}

// Open takes over the terminal.
func (s *Sink) Open(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog != nil {
		return nil
	}

	// Keys left over from a previous session must not leak into this one.
	for len(s.keys) > 0 {
		<-s.keys
	}

	progOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(s.opts.Input),
		tea.WithOutput(s.opts.Output),
	}
	if s.opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	s.prog = tea.NewProgram(newModel(title, s), progOpts...)
	s.done = make(chan error, 1)
	go func(prog *tea.Program, done chan<- error) {
		_, err := prog.Run()
		done <- err
	}(s.prog, s.done)
	return nil
}

// Present renders the frame and hands it to the program.
func (s *Sink) Present(frame pipeline.DisplayFrame, label string) error {
	s.mu.Lock()
	prog := s.prog
	s.mu.Unlock()
	if prog == nil {
		return ErrNotOpen
	}

	// One row is kept for the status line.
	picture := renderHalfBlocks(frame, int(s.cols.Load()), int(s.rows.Load())-1)
	prog.Send(frameMsg{picture: picture, label: label})
	return nil
}

// PollInput waits for a key from the program.
func (s *Sink) PollInput(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error) {
	if timeout == 0 {
		select {
		case key := <-s.keys:
			return key, true, nil
		default:
			return pipeline.KeyEvent{}, false, ctx.Err()
		}
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case key := <-s.keys:
		return key, true, nil
	case <-expired:
		return pipeline.KeyEvent{}, false, nil
	case <-ctx.Done():
		return pipeline.KeyEvent{}, false, ctx.Err()
	}
}

// Close ends the program and restores the terminal.
func (s *Sink) Close() error {
	s.mu.Lock()
	prog, done := s.prog, s.done
	s.prog, s.done = nil, nil
	s.mu.Unlock()
	if prog == nil {
		return nil
	}

	prog.Quit()
	err := <-done
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted) {
		return fmt.Errorf("terminal display: %w", err)
	}
	return nil
}

// resize is called by the model when the terminal reports its size.
func (s *Sink) resize(cols, rows int) {
	s.cols.Store(int32(cols))
	s.rows.Store(int32(rows))
}

// key is called by the model for every key press. Keys are dropped when
// nobody polls for them.
func (s *Sink) key(ev pipeline.KeyEvent) {
	select {
	case s.keys <- ev:
	default:
	}
}

// Ensure Sink implements ports.DisplaySink
var _ ports.DisplaySink = (*Sink)(nil)
