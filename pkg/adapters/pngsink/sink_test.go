package pngsink

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/yuvplay/pkg/mocks"
	"github.com/user/yuvplay/pkg/pipeline"
)

var testBaseDir = filepath.Join("frames")

func redFrame(index, w, h int) pipeline.DisplayFrame {
	f := pipeline.NewDisplayFrame(index, w, h)
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i] = 255
	}
	return f
}

func TestSink_OpenCreatesDirectory(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, Options{})

	if err := sink.Open(context.Background(), "clip"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ok, _ := fs.Exists(testBaseDir)
	if !ok {
		t.Errorf("expected %s to be created", testBaseDir)
	}
}

func TestSink_PresentWritesPNG(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, Options{})

	if err := sink.Present(redFrame(3, 4, 2), ""); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "frame-0003.png")
	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file at %s", path)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("expected 4x2, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("expected red pixel, got %d,%d,%d", r>>8, g>>8, b>>8)
	}

	written := sink.Written()
	if len(written) != 1 || written[0] != path {
		t.Errorf("unexpected written paths %v", written)
	}
}

func TestSink_ScaleAndLabel(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, Options{Scale: 8, Label: true})

	if err := sink.Present(redFrame(0, 4, 2), "Frame 0"); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	data, _ := fs.GetFile(filepath.Join(testBaseDir, "frame-0000.png"))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16+labelHeight {
		t.Errorf("expected 32x%d, got %dx%d", 16+labelHeight, img.Bounds().Dx(), img.Bounds().Dy())
	}
	r, _, _, _ := img.At(31, 15).RGBA()
	if r>>8 != 255 {
		t.Errorf("expected scaled red pixel at bottom-right of the frame area")
	}
}

func TestSink_PollInputNeverWaits(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), Options{})

	start := time.Now()
	_, ok, err := sink.PollInput(context.Background(), -1)
	if err != nil || ok {
		t.Errorf("expected no key and no error, got %v %v", ok, err)
	}
	if time.Since(start) > time.Second {
		t.Error("PollInput blocked")
	}
}

func TestSink_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error {
		return context.DeadlineExceeded
	}
	sink := New(testBaseDir, fs, Options{})

	if err := sink.Present(redFrame(1, 2, 2), ""); err == nil {
		t.Error("expected write error")
	}
}
