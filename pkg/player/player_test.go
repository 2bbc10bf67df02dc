package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yuvplay/pkg/adapters/i420"
	"github.com/user/yuvplay/pkg/adapters/logger"
	"github.com/user/yuvplay/pkg/adapters/memstore"
	"github.com/user/yuvplay/pkg/adapters/osfilesystem"
	"github.com/user/yuvplay/pkg/adapters/rawfile"
	"github.com/user/yuvplay/pkg/mocks"
	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

var testGeometry = pipeline.Geometry{Width: 4, Height: 2}

// newMemStore builds n frames whose bytes all equal index+1.
func newMemStore(n int) *memstore.Store {
	src, _ := pipeline.NewVideoSource("clip.yuv", testGeometry, 30, int64(n*testGeometry.FrameSize()))
	frames := make([]pipeline.RawFrame, n)
	for i := range frames {
		data := make([]byte, testGeometry.FrameSize())
		for j := range data {
			data[j] = byte(i + 1)
		}
		frames[i] = pipeline.RawFrame{Index: i, Data: data}
	}
	return memstore.New(src, frames)
}

// newRawStore writes size bytes to a mock file but declares declared bytes.
func newRawStore(t *testing.T, fs *mocks.FileSystem, size, declared int) *rawfile.Store {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i / testGeometry.FrameSize())
	}
	require.NoError(t, fs.WriteFile("clip.yuv", data))
	src, err := pipeline.NewVideoSource("clip.yuv", testGeometry, 30, int64(declared))
	require.NoError(t, err)
	store, err := rawfile.Open(fs, src, logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newPlayer(store ports.FrameStore, sink *mocks.DisplaySink, opts Options) *Player {
	opts.PausePoll = 5 * time.Millisecond
	return New(store, &mocks.ColorConverter{}, sink, logger.NewNoop(), opts)
}

// playAsync runs Play on a goroutine and returns its result channel.
func playAsync(p *Player, ctx context.Context, pace time.Duration) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- p.Play(ctx, pace) }()
	return errc
}

func waitState(t *testing.T, p *Player, want pipeline.PlaybackState) {
	t.Helper()
	require.Eventually(t, func() bool { return p.State() == want }, 2*time.Second, time.Millisecond,
		"state never became %s", want)
}

func TestPlay_AllFramesInOrder(t *testing.T) {
	modes := []struct {
		name string
		opts Options
	}{
		{"random", Options{}},
		{"sequential", Options{Sequential: true}},
		{"random prefetch", Options{Prefetch: true}},
		{"sequential prefetch", Options{Sequential: true, Prefetch: true}},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			sink := mocks.NewDisplaySink()
			p := newPlayer(newMemStore(5), sink, mode.opts)
			assert.Equal(t, pipeline.StateIdle, p.State())

			require.NoError(t, p.Play(context.Background(), 0))

			assert.Equal(t, []int{0, 1, 2, 3, 4}, sink.Indices())
			for i, call := range sink.Presented {
				assert.Equal(t, byte(i+1), call.Frame.Pix[0], "frame %d content", i)
			}
			assert.Equal(t, pipeline.StateStopped, p.State())
			assert.Equal(t, 5, p.Index())
			assert.Equal(t, 1, sink.OpenCalls)
			assert.Equal(t, 1, sink.CloseCalls)
		})
	}
}

func TestPlay_EmptyVideo(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(0), sink, Options{})

	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, pipeline.StateStopped, p.State())
	assert.Empty(t, sink.Presented)
	assert.Zero(t, sink.OpenCalls)
}

func TestPlay_EndIndexSetWithStoppedState(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{})

	// The display closes after the last frame but before Play returns.
	var state pipeline.PlaybackState
	var index int
	sink.CloseFunc = func() error {
		state, index = p.State(), p.Index()
		return nil
	}

	require.NoError(t, p.Play(context.Background(), 0))

	assert.Equal(t, pipeline.StatePlaying, state)
	assert.Equal(t, 2, index, "end index must not be visible while playing")
	assert.Equal(t, pipeline.StateStopped, p.State())
	assert.Equal(t, 3, p.Index())
}

func TestSeek_Bounds(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{})

	for _, idx := range []int{3, -1, 10} {
		err := p.Seek(idx)
		assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange, "seek %d", idx)
		assert.Equal(t, pipeline.StateIdle, p.State())
	}

	require.NoError(t, p.Seek(2))
	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{2}, sink.Indices())
	assert.Equal(t, pipeline.StateStopped, p.State())
	assert.Equal(t, 3, p.Index())
}

func TestSeek_ConsumedByPlay(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{})

	require.NoError(t, p.Seek(1))
	require.NoError(t, p.Play(context.Background(), 0))
	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{1, 2, 0, 1, 2}, sink.Indices())
}

func TestSeek_TwoFrameScenario(t *testing.T) {
	data := []byte{0, 1, 2, 3, 128, 128, 200, 201, 202, 203, 90, 240}
	path := filepath.Join(t.TempDir(), "clip.yuv")
	require.NoError(t, os.WriteFile(path, data, 0644))

	g := pipeline.Geometry{Width: 2, Height: 2}
	src, err := pipeline.NewVideoSource(path, g, 30, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, 2, src.FrameCount)

	store, err := rawfile.Open(osfilesystem.New(), src, logger.NewNoop())
	require.NoError(t, err)
	conv := i420.New(i420.Limited)
	sink := mocks.NewDisplaySink()
	p := New(store, conv, sink, logger.NewNoop(), Options{Sequential: true})
	defer p.Close()

	assert.ErrorIs(t, p.Seek(2), pipeline.ErrIndexOutOfRange)
	require.NoError(t, p.Seek(1))
	require.NoError(t, p.Play(context.Background(), 0))

	want, err := conv.Convert(pipeline.RawFrame{Index: 1, Data: data[6:12]}, g)
	require.NoError(t, err)
	require.Len(t, sink.Presented, 1)
	assert.Equal(t, want, sink.Presented[0].Frame)
	assert.Equal(t, pipeline.StateStopped, p.State())
}

func TestPlay_PauseKeyResumesAtNextFrame(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[2] = pipeline.KeyEvent{Kind: pipeline.KeyPause, Rune: ' '}
	p := newPlayer(newMemStore(6), sink, Options{})

	errc := playAsync(p, context.Background(), 0)
	waitState(t, p, pipeline.StatePaused)

	assert.Equal(t, 2, p.Index())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2}, sink.Indices(), "no frames while paused")

	require.NoError(t, p.Resume())
	require.NoError(t, <-errc)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, sink.Indices())
}

func TestPlay_ExternalPauseAndResume(t *testing.T) {
	sink := mocks.NewDisplaySink()
	var p *Player
	var once sync.Once
	sink.PresentFunc = func(frame pipeline.DisplayFrame, label string) error {
		if frame.Index == 1 {
			once.Do(func() { assert.NoError(t, p.Pause()) })
		}
		return nil
	}
	p = newPlayer(newMemStore(4), sink, Options{Sequential: true, Prefetch: true})

	errc := playAsync(p, context.Background(), 0)
	waitState(t, p, pipeline.StatePaused)
	assert.Equal(t, 1, p.Index())

	assert.ErrorIs(t, p.Pause(), pipeline.ErrInvalidState)
	require.NoError(t, p.Resume())
	require.NoError(t, <-errc)
	assert.Equal(t, []int{0, 1, 2, 3}, sink.Indices())
}

func TestPlay_PauseKeyTogglesResume(t *testing.T) {
	sink := mocks.NewDisplaySink()
	var polls int
	sink.PollInputFunc = func(ctx context.Context, timeout time.Duration) (pipeline.KeyEvent, bool, error) {
		polls++
		switch polls {
		case 1:
			return pipeline.KeyEvent{Kind: pipeline.KeyPause}, true, nil // pause after frame 0
		case 2:
			return pipeline.KeyEvent{Kind: pipeline.KeyPause}, true, nil // resume while paused
		}
		return pipeline.KeyEvent{}, false, nil
	}
	p := newPlayer(newMemStore(3), sink, Options{})

	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{0, 1, 2}, sink.Indices())
}

func TestPlay_QuitKey(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[1] = pipeline.KeyEvent{Kind: pipeline.KeyQuit, Rune: 'q'}
	p := newPlayer(newMemStore(5), sink, Options{})

	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{0, 1}, sink.Indices())
	assert.Equal(t, pipeline.StateStopped, p.State())
	assert.Equal(t, 1, p.Index())
}

func TestPlay_OtherKeysIgnored(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[0] = pipeline.KeyEvent{Kind: pipeline.KeyOther, Rune: 'x'}
	p := newPlayer(newMemStore(3), sink, Options{})

	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{0, 1, 2}, sink.Indices())
}

func TestStop_WhilePlaying(t *testing.T) {
	fs := mocks.NewFileSystem()
	store := newRawStore(t, fs, 100*testGeometry.FrameSize(), 100*testGeometry.FrameSize())
	sink := mocks.NewDisplaySink()
	p := newPlayer(store, sink, Options{Sequential: true, Prefetch: true})

	errc := playAsync(p, context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(sink.Indices()) >= 2 }, 2*time.Second, time.Millisecond)

	require.NoError(t, p.Stop())
	assert.Equal(t, pipeline.StateStopped, p.State())
	require.NoError(t, <-errc)

	assert.Less(t, len(sink.Indices()), 100)
	assert.Equal(t, 1, fs.OpenFiles(), "sequential cursor released")
	assert.Equal(t, 1, sink.CloseCalls)

	// Stopped players may play again.
	sink.Presented = nil
	require.NoError(t, p.Seek(98))
	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{98, 99}, sink.Indices())
}

func TestStop_WhilePaused(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[0] = pipeline.KeyEvent{Kind: pipeline.KeyPause}
	p := newPlayer(newMemStore(3), sink, Options{})

	errc := playAsync(p, context.Background(), 0)
	waitState(t, p, pipeline.StatePaused)

	require.NoError(t, p.Stop())
	require.NoError(t, <-errc)
	assert.Equal(t, []int{0}, sink.Indices())
	assert.Equal(t, pipeline.StateStopped, p.State())
}

func TestStop_Idle(t *testing.T) {
	p := newPlayer(newMemStore(3), mocks.NewDisplaySink(), Options{})
	require.NoError(t, p.Seek(2))
	require.NoError(t, p.Stop())
	assert.Equal(t, pipeline.StateStopped, p.State())

	// Stop clears the seek index.
	sink := mocks.NewDisplaySink()
	p.sink = sink
	require.NoError(t, p.Play(context.Background(), 0))
	assert.Equal(t, []int{0, 1, 2}, sink.Indices())
}

func TestPlay_ContextCancelled(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(1000), sink, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := playAsync(p, ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(sink.Indices()) >= 1 }, 2*time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, pipeline.StateStopped, p.State())
}

func TestPlay_TruncatedFrameHalts(t *testing.T) {
	for _, sequential := range []bool{false, true} {
		fs := mocks.NewFileSystem()
		size := testGeometry.FrameSize()
		store := newRawStore(t, fs, 2*size+size/2, 3*size)
		sink := mocks.NewDisplaySink()
		p := newPlayer(store, sink, Options{Sequential: sequential})

		err := p.Play(context.Background(), 0)
		assert.ErrorIs(t, err, pipeline.ErrTruncatedFrame, "sequential=%v", sequential)
		assert.Equal(t, []int{0, 1}, sink.Indices())
		assert.Equal(t, pipeline.StateStopped, p.State())
	}
}

func TestPlay_Pacing(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(4), sink, Options{})

	start := time.Now()
	require.NoError(t, p.Play(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
	assert.Len(t, sink.Presented, 4)
}

func TestPlay_InvalidState(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[0] = pipeline.KeyEvent{Kind: pipeline.KeyPause}
	p := newPlayer(newMemStore(3), sink, Options{})

	assert.ErrorIs(t, p.Pause(), pipeline.ErrInvalidState)
	assert.ErrorIs(t, p.Resume(), pipeline.ErrInvalidState)

	errc := playAsync(p, context.Background(), 0)
	waitState(t, p, pipeline.StatePaused)

	assert.ErrorIs(t, p.Play(context.Background(), 0), pipeline.ErrInvalidState)
	assert.ErrorIs(t, p.Seek(1), pipeline.ErrInvalidState)
	assert.ErrorIs(t, p.Show(context.Background(), 1), pipeline.ErrInvalidState)

	require.NoError(t, p.Resume())
	require.NoError(t, <-errc)
}

func TestPeek(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{})

	frame, err := p.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Index)
	assert.Equal(t, byte(3), frame.Pix[0])
	assert.Equal(t, pipeline.StateIdle, p.State())
	assert.Empty(t, sink.Presented)

	_, err = p.Peek(3)
	assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange)
}

func TestShow(t *testing.T) {
	sink := mocks.NewDisplaySink()
	sink.Keys[1] = pipeline.KeyEvent{Kind: pipeline.KeyOther, Rune: 'x'}
	p := newPlayer(newMemStore(3), sink, Options{})

	require.NoError(t, p.Show(context.Background(), 1))
	assert.Equal(t, []int{1}, sink.Indices())
	assert.Equal(t, 1, sink.OpenCalls)
	assert.Equal(t, 1, sink.CloseCalls)
	assert.Equal(t, []string{"clip.yuv"}, sink.Titles)
	assert.Equal(t, pipeline.StateIdle, p.State())

	err := p.Show(context.Background(), 3)
	assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange)
}

func TestShow_CancelledWhileWaiting(t *testing.T) {
	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, p.Show(ctx, 0))
	assert.Equal(t, 1, sink.CloseCalls)
}

func TestPlay_ObserverSeesEveryStage(t *testing.T) {
	var mu sync.Mutex
	counts := map[pipeline.Stage][]int{}
	obs := ports.ObserverFunc(func(ev pipeline.StageEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[ev.Stage] = append(counts[ev.Stage], ev.Index)
	})

	sink := mocks.NewDisplaySink()
	p := newPlayer(newMemStore(3), sink, Options{Prefetch: true, Observer: obs})
	require.NoError(t, p.Play(context.Background(), 0))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, counts[pipeline.StageConvert])
	assert.Equal(t, []int{0, 1, 2}, counts[pipeline.StagePresent])
	assert.Subset(t, counts[pipeline.StageDecode], []int{0, 1, 2})
}

func TestPlay_PresentError(t *testing.T) {
	sink := mocks.NewDisplaySink()
	boom := errors.New("display gone")
	sink.PresentFunc = func(frame pipeline.DisplayFrame, label string) error {
		if frame.Index == 1 {
			return boom
		}
		return nil
	}
	p := newPlayer(newMemStore(3), sink, Options{})

	assert.ErrorIs(t, p.Play(context.Background(), 0), boom)
	assert.Equal(t, pipeline.StateStopped, p.State())
}

func TestClose_ClosesStore(t *testing.T) {
	fs := mocks.NewFileSystem()
	store := newRawStore(t, fs, testGeometry.FrameSize(), testGeometry.FrameSize())
	p := newPlayer(store, mocks.NewDisplaySink(), Options{})

	require.NoError(t, p.Close())
	assert.Equal(t, 0, fs.OpenFiles())
}
