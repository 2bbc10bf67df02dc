// Package player drives playback of a frame store onto a display sink.
//
// A Player is a state machine over Idle, Playing, Paused and Stopped. Play
// runs the frame loop on the calling goroutine; Pause, Resume and Stop may
// be called from any other goroutine. Stop must not be called from inside a
// sink or observer callback, since it waits for the loop to exit.
package player

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// errQuit ends the loop when the viewer presses a quit key.
var errQuit = errors.New("quit requested")

// Options configures a Player.
type Options struct {
	// Sequential streams frames through one forward cursor instead of
	// reading each frame by offset.
	Sequential bool

	// Prefetch reads frame k+1 while frame k is on screen.
	Prefetch bool

	// Observer receives per-stage timings. May be nil.
	Observer ports.Observer

	// PausePoll bounds each input poll while paused.
	PausePoll time.Duration
}

// DefaultOptions returns random access without prefetch.
func DefaultOptions() Options {
	return Options{PausePoll: 100 * time.Millisecond}
}

// Player plays the frames of one store.
type Player struct {
	store  ports.FrameStore
	conv   ports.ColorConverter
	sink   ports.DisplaySink
	logger ports.Logger
	opts   Options

	mu            sync.Mutex
	state         pipeline.PlaybackState
	current       int
	start         int
	cancel        context.CancelFunc
	done          chan struct{}
	resume        chan struct{}
	stopRequested bool
}

// New creates a Player in the Idle state.
func New(store ports.FrameStore, conv ports.ColorConverter, sink ports.DisplaySink, logger ports.Logger, opts Options) *Player {
	if opts.PausePoll <= 0 {
		opts.PausePoll = DefaultOptions().PausePoll
	}
	return &Player{
		store:  store,
		conv:   conv,
		sink:   sink,
		logger: logger.WithComponent("player"),
		opts:   opts,
		state:  pipeline.StateIdle,
	}
}

// State returns the current state.
func (p *Player) State() pipeline.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index returns the frame on screen, or FrameCount once playback ran to
// the end.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Seek makes the next Play start at index. An invalid index leaves the
// player unchanged.
func (p *Player) Seek(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == pipeline.StatePlaying || p.state == pipeline.StatePaused {
		return fmt.Errorf("%w: seek while %s", pipeline.ErrInvalidState, p.state)
	}
	if err := p.store.Source().CheckIndex(index); err != nil {
		return err
	}
	p.start = index
	p.logger.Info("Seek to frame %d", index)
	return nil
}

// Peek reads and converts one frame without touching the playback state.
func (p *Player) Peek(index int) (pipeline.DisplayFrame, error) {
	raw, err := p.store.FrameAt(index)
	if err != nil {
		return pipeline.DisplayFrame{}, err
	}
	return p.conv.Convert(raw, p.store.Source().Geometry)
}

// Show presents one frame and waits for any key. Sinks without input return
// as soon as the frame is presented.
func (p *Player) Show(ctx context.Context, index int) error {
	if s := p.State(); s == pipeline.StatePlaying || s == pipeline.StatePaused {
		return fmt.Errorf("%w: show while %s", pipeline.ErrInvalidState, s)
	}
	frame, err := p.Peek(index)
	if err != nil {
		return err
	}

	src := p.store.Source()
	if err := p.sink.Open(ctx, filepath.Base(src.Path)); err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	defer p.closeSink()

	if err := p.sink.Present(frame, p.label(index, src.FrameCount)); err != nil {
		return fmt.Errorf("present frame %d: %w", index, err)
	}
	// Cancellation dismisses the frame like a key press.
	if _, _, err := p.sink.PollInput(ctx, -1); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Play presents frames from the seek index (or 0) to the last frame and
// returns when playback ends. Pace is the delay between frame starts; zero
// plays as fast as possible. A quit key or Stop ends playback without error.
func (p *Player) Play(ctx context.Context, pace time.Duration) error {
	src := p.store.Source()

	p.mu.Lock()
	if p.state == pipeline.StatePlaying || p.state == pipeline.StatePaused {
		state := p.state
		p.mu.Unlock()
		return fmt.Errorf("%w: play while %s", pipeline.ErrInvalidState, state)
	}
	start := p.start
	p.start = 0
	if start >= src.FrameCount {
		p.state = pipeline.StateStopped
		p.current = src.FrameCount
		p.mu.Unlock()
		p.logger.Info("No frames to play")
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.state = pipeline.StatePlaying
	p.current = start
	p.cancel = cancel
	p.done = done
	p.resume = nil
	p.stopRequested = false
	p.mu.Unlock()

	finished := false
	defer func() {
		cancel()
		p.mu.Lock()
		p.state = pipeline.StateStopped
		if finished {
			p.current = src.FrameCount
		}
		p.cancel = nil
		p.done = nil
		p.resume = nil
		p.mu.Unlock()
		close(done)
	}()

	if err := p.sink.Open(loopCtx, filepath.Base(src.Path)); err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	defer p.closeSink()

	p.logger.Info("Playing %d frames from frame %d", src.FrameCount-start, start)
	err := p.run(loopCtx, start, pace)
	finished = err == nil

	p.mu.Lock()
	stopped := p.stopRequested
	current := p.current
	p.mu.Unlock()

	switch {
	case err == nil:
		if start == 0 {
			p.logger.Info("Finished playback.")
		} else {
			p.logger.Info("Finished play from %d.", start)
		}
		return nil
	case errors.Is(err, errQuit), stopped && errors.Is(err, context.Canceled):
		p.logger.Info("Stopped at frame %d", current)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return err
	}
}

// Pause halts playback after the frame on screen. Valid only while playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pipeline.StatePlaying {
		return fmt.Errorf("%w: pause while %s", pipeline.ErrInvalidState, p.state)
	}
	p.state = pipeline.StatePaused
	p.resume = make(chan struct{})
	p.logger.Info("Paused at frame %d", p.current)
	return nil
}

// Resume continues playback with the frame after the paused one. Valid
// only while paused.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pipeline.StatePaused {
		return fmt.Errorf("%w: resume while %s", pipeline.ErrInvalidState, p.state)
	}
	p.state = pipeline.StatePlaying
	close(p.resume)
	p.resume = nil
	p.logger.Info("Resumed at frame %d", p.current)
	return nil
}

// Stop ends playback from any state and waits until the loop has released
// its read cursor. The seek index is cleared.
func (p *Player) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.start = 0
	if cancel == nil {
		p.state = pipeline.StateStopped
		p.mu.Unlock()
		return nil
	}
	p.stopRequested = true
	p.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Close stops playback and closes the frame store.
func (p *Player) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.store.Close()
}

func (p *Player) run(ctx context.Context, start int, pace time.Duration) error {
	src := p.store.Source()

	next, release, err := p.frames(ctx, start)
	if err != nil {
		return err
	}
	defer release()

	limiter := newLimiter(pace)
	for idx := start; idx < src.FrameCount; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if pace <= 0 {
			runtime.Gosched()
		}

		raw, err := next()
		if err != nil {
			return err
		}

		t := time.Now()
		frame, err := p.conv.Convert(raw, src.Geometry)
		if err != nil {
			return fmt.Errorf("convert frame %d: %w", idx, err)
		}
		p.observe(pipeline.StageConvert, idx, time.Since(t))

		if err := p.enter(ctx, idx); err != nil {
			return err
		}

		t = time.Now()
		if err := p.sink.Present(frame, p.label(idx, src.FrameCount)); err != nil {
			return fmt.Errorf("present frame %d: %w", idx, err)
		}
		p.observe(pipeline.StagePresent, idx, time.Since(t))

		key, ok, err := p.sink.PollInput(ctx, 0)
		if err != nil {
			return err
		}
		if ok {
			if err := p.handleKey(key); err != nil {
				return err
			}
		}
	}

	// The loop may have been paused by the last frame's key. The end index
	// is recorded by Play together with the Stopped state.
	return p.awaitPlaying(ctx, nil)
}

// enter blocks while paused and then claims idx as the frame on screen.
// Claiming under the lock makes a concurrent Pause see either the previous
// frame or this one, never a frame that is presented after it returns.
func (p *Player) enter(ctx context.Context, idx int) error {
	return p.awaitPlaying(ctx, func() { p.current = idx })
}

// awaitPlaying blocks while paused. claim, if set, runs under the lock
// that observed the playing state.
func (p *Player) awaitPlaying(ctx context.Context, claim func()) error {
	for {
		p.mu.Lock()
		if p.state != pipeline.StatePaused {
			if claim != nil {
				claim()
			}
			p.mu.Unlock()
			return nil
		}
		resume := p.resume
		p.mu.Unlock()

		if err := p.waitResume(ctx, resume); err != nil {
			return err
		}
	}
}

// waitResume polls the sink while paused. Space resumes, a quit key stops,
// and Resume or cancellation from another goroutine end the wait as well.
func (p *Player) waitResume(ctx context.Context, resume <-chan struct{}) error {
	for {
		started := time.Now()
		key, ok, err := p.sink.PollInput(ctx, p.opts.PausePoll)
		if err != nil {
			return err
		}
		if ok {
			switch key.Kind {
			case pipeline.KeyPause:
				if err := p.Resume(); err != nil && !errors.Is(err, pipeline.ErrInvalidState) {
					return err
				}
				return nil
			case pipeline.KeyQuit:
				return errQuit
			}
		}

		// Sinks without input return at once; wait out the poll interval.
		rest := p.opts.PausePoll - time.Since(started)
		if rest <= 0 {
			rest = time.Millisecond
		}
		timer := time.NewTimer(rest)
		select {
		case <-resume:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Player) handleKey(key pipeline.KeyEvent) error {
	switch key.Kind {
	case pipeline.KeyPause:
		if err := p.Pause(); err != nil && !errors.Is(err, pipeline.ErrInvalidState) {
			return err
		}
	case pipeline.KeyQuit:
		return errQuit
	}
	return nil
}

// frames returns a function yielding frames start, start+1, ... in order.
func (p *Player) frames(ctx context.Context, start int) (func() (pipeline.RawFrame, error), func(), error) {
	var next func() (pipeline.RawFrame, error)
	release := func() {}

	if p.opts.Sequential {
		reader, err := p.store.Sequential(start)
		if err != nil {
			return nil, nil, err
		}
		next = reader.Next
		release = func() { reader.Close() }
	} else {
		idx := start
		next = func() (pipeline.RawFrame, error) {
			f, err := p.store.FrameAt(idx)
			idx++
			return f, err
		}
	}

	decode := func() (pipeline.RawFrame, error) {
		t := time.Now()
		f, err := next()
		if err == nil {
			p.observe(pipeline.StageDecode, f.Index, time.Since(t))
		}
		return f, err
	}

	if !p.opts.Prefetch {
		return decode, release, nil
	}
	pf := newPrefetcher(ctx, decode)
	return pf.next, func() {
		pf.close()
		release()
	}, nil
}

func (p *Player) observe(stage pipeline.Stage, index int, elapsed time.Duration) {
	if p.opts.Observer == nil {
		return
	}
	p.opts.Observer.Observe(pipeline.StageEvent{Stage: stage, Index: index, Elapsed: elapsed})
}

func (p *Player) label(index, count int) string {
	return fmt.Sprintf("%d / %d", index, count-1)
}

func (p *Player) closeSink() {
	if err := p.sink.Close(); err != nil {
		p.logger.Warn("Failed to close display: %v", err)
	}
}

func newLimiter(pace time.Duration) *rate.Limiter {
	if pace <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(pace), 1)
}
