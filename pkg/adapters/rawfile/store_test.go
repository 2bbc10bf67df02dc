package rawfile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yuvplay/pkg/adapters/logger"
	"github.com/user/yuvplay/pkg/adapters/osfilesystem"
	"github.com/user/yuvplay/pkg/mocks"
	"github.com/user/yuvplay/pkg/pipeline"
)

// writeRaw writes size bytes where byte i holds i%251 and returns the source.
func writeRaw(t *testing.T, g pipeline.Geometry, size int) (pipeline.VideoSource, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "clip.yuv")
	require.NoError(t, os.WriteFile(path, data, 0644))

	src, err := pipeline.NewVideoSource(path, g, 30, int64(size))
	require.NoError(t, err)
	return src, data
}

func openStore(t *testing.T, src pipeline.VideoSource) *Store {
	t.Helper()
	store, err := Open(osfilesystem.New(), src, logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_TwoFrameScenario(t *testing.T) {
	src, data := writeRaw(t, pipeline.Geometry{Width: 2, Height: 2}, 12)
	require.Equal(t, 2, src.FrameCount)
	store := openStore(t, src)

	f0, err := store.FrameAt(0)
	require.NoError(t, err)
	assert.Equal(t, data[0:6], f0.Data)
	assert.Equal(t, 0, f0.Index)

	f1, err := store.FrameAt(1)
	require.NoError(t, err)
	assert.Equal(t, data[6:12], f1.Data)
	assert.Equal(t, 1, f1.Index)
}

func TestStore_FrameAtMatchesDirectRead(t *testing.T) {
	g := pipeline.Geometry{Width: 8, Height: 4}
	src, _ := writeRaw(t, g, g.FrameSize()*7+5)
	store := openStore(t, src)

	f, err := os.Open(src.Path)
	require.NoError(t, err)
	defer f.Close()

	// Out of order on purpose: random access must not depend on earlier reads.
	for _, i := range []int{6, 0, 3, 5, 1, 4, 2} {
		frame, err := store.FrameAt(i)
		require.NoError(t, err)

		want := make([]byte, src.FrameSize)
		_, err = f.ReadAt(want, int64(i*src.FrameSize))
		require.NoError(t, err)
		assert.Equal(t, want, frame.Data, "frame %d", i)
	}
}

func TestStore_FrameAtOutOfRange(t *testing.T) {
	src, _ := writeRaw(t, pipeline.Geometry{Width: 2, Height: 2}, 12)
	store := openStore(t, src)

	for _, i := range []int{-1, 2, 100} {
		_, err := store.FrameAt(i)
		assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange, "index %d", i)

		var idxErr *pipeline.IndexError
		require.ErrorAs(t, err, &idxErr)
		assert.Equal(t, i, idxErr.Index)
		assert.Equal(t, 2, idxErr.Count)
	}
}

func TestStore_LoadRange(t *testing.T) {
	g := pipeline.Geometry{Width: 4, Height: 2}
	src, data := writeRaw(t, g, g.FrameSize()*5)
	store := openStore(t, src)

	frames, err := store.LoadRange(1, 4)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, i+1, f.Index)
		off := (i + 1) * src.FrameSize
		assert.Equal(t, data[off:off+src.FrameSize], f.Data)
	}

	empty, err := store.LoadRange(2, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := store.LoadRange(0, 5)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_LoadRangeInvalid(t *testing.T) {
	src, _ := writeRaw(t, pipeline.Geometry{Width: 2, Height: 2}, 18)
	store := openStore(t, src)

	for _, r := range [][2]int{{0, 4}, {2, 1}, {-1, 1}} {
		_, err := store.LoadRange(r[0], r[1])
		assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange, "range %v", r)
	}
}

func TestStore_SequentialMatchesLoadRange(t *testing.T) {
	g := pipeline.Geometry{Width: 6, Height: 4}
	src, _ := writeRaw(t, g, g.FrameSize()*4+g.FrameSize()/2)
	store := openStore(t, src)

	want, err := store.LoadRange(0, src.FrameCount)
	require.NoError(t, err)

	reader, err := store.Sequential(0)
	require.NoError(t, err)
	defer reader.Close()

	var got []pipeline.RawFrame
	for {
		frame, err := reader.Next()
		if err != nil {
			assert.ErrorIs(t, err, pipeline.ErrEndOfStream)
			break
		}
		got = append(got, frame)
	}
	assert.Equal(t, want, got)

	_, err = reader.Next()
	assert.ErrorIs(t, err, pipeline.ErrEndOfStream)
}

func TestStore_SequentialFromOffset(t *testing.T) {
	src, data := writeRaw(t, pipeline.Geometry{Width: 2, Height: 2}, 18)
	store := openStore(t, src)

	reader, err := store.Sequential(2)
	require.NoError(t, err)
	defer reader.Close()

	frame, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Index)
	assert.Equal(t, data[12:18], frame.Data)

	_, err = reader.Next()
	assert.ErrorIs(t, err, pipeline.ErrEndOfStream)

	_, err = store.Sequential(4)
	assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange)
}

func TestStore_EmptyFile(t *testing.T) {
	src, _ := writeRaw(t, pipeline.Geometry{Width: 2, Height: 2}, 0)
	store := openStore(t, src)

	_, err := store.FrameAt(0)
	assert.ErrorIs(t, err, pipeline.ErrIndexOutOfRange)

	frames, err := store.LoadRange(0, 0)
	require.NoError(t, err)
	assert.Empty(t, frames)

	reader, err := store.Sequential(0)
	require.NoError(t, err)
	defer reader.Close()
	_, err = reader.Next()
	assert.ErrorIs(t, err, pipeline.ErrEndOfStream)
}

func TestStore_TruncatedFrame(t *testing.T) {
	// The source was measured at 12 bytes but the file now holds only 9.
	fs := mocks.NewFileSystem()
	require.NoError(t, fs.WriteFile("clip.yuv", make([]byte, 9)))
	src, err := pipeline.NewVideoSource("clip.yuv", pipeline.Geometry{Width: 2, Height: 2}, 30, 12)
	require.NoError(t, err)

	store, err := Open(fs, src, logger.NewNoop())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.FrameAt(0)
	require.NoError(t, err)

	_, err = store.FrameAt(1)
	assert.ErrorIs(t, err, pipeline.ErrTruncatedFrame)

	reader, err := store.Sequential(0)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.NoError(t, err)
	_, err = reader.Next()
	assert.ErrorIs(t, err, pipeline.ErrTruncatedFrame)
	assert.NotErrorIs(t, err, pipeline.ErrEndOfStream)
}

func TestStore_ConcurrentFrameAt(t *testing.T) {
	g := pipeline.Geometry{Width: 16, Height: 8}
	src, data := writeRaw(t, g, g.FrameSize()*10)
	store := openStore(t, src)

	var wg sync.WaitGroup
	errs := make(chan error, 8*src.FrameCount)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < src.FrameCount; i++ {
				idx := (i + w) % src.FrameCount
				frame, err := store.FrameAt(idx)
				if err != nil {
					errs <- err
					return
				}
				off := idx * src.FrameSize
				if string(frame.Data) != string(data[off:off+src.FrameSize]) {
					errs <- assert.AnError
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}

func TestStore_CloseReleasesHandles(t *testing.T) {
	fs := mocks.NewFileSystem()
	require.NoError(t, fs.WriteFile("clip.yuv", make([]byte, 12)))
	src, err := pipeline.NewVideoSource("clip.yuv", pipeline.Geometry{Width: 2, Height: 2}, 30, 12)
	require.NoError(t, err)

	store, err := Open(fs, src, logger.NewNoop())
	require.NoError(t, err)

	reader, err := store.Sequential(0)
	require.NoError(t, err)
	assert.Equal(t, 2, fs.OpenFiles())

	require.NoError(t, reader.Close())
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.Equal(t, 0, fs.OpenFiles())

	_, err = store.FrameAt(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.Sequential(0)
	assert.ErrorIs(t, err, ErrClosed)
}
