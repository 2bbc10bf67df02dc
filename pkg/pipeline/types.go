// Package pipeline defines the frame types shared by the store, converter,
// player and display adapters.
package pipeline

import (
	"image"
	"image/color"
	"math"
	"time"
)

// =============================================================================
// Geometry
// =============================================================================

// Geometry is the luma size of an I420 frame.
// Chroma planes are subsampled by 2 in both axes.
type Geometry struct {
	Width  int
	Height int
}

// Validate reports ErrInvalidGeometry for non-positive sizes, sizes above
// MaxUint32, an odd height, or a frame whose RGB size does not fit in an int.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return &GeometryError{Geometry: g, Reason: "width and height must be positive"}
	}
	if int64(g.Width) > math.MaxUint32 || int64(g.Height) > math.MaxUint32 {
		return &GeometryError{Geometry: g, Reason: "width and height must not exceed 4294967295"}
	}
	if g.Height%2 != 0 {
		return &GeometryError{Geometry: g, Reason: "height must be even"}
	}
	// DisplayFrame holds W*H*3 bytes, the largest buffer derived from g.
	if g.Width > math.MaxInt/3/g.Height {
		return &GeometryError{Geometry: g, Reason: "frame size overflows"}
	}
	return nil
}

// LumaSize returns the Y plane size in bytes.
func (g Geometry) LumaSize() int {
	return g.Width * g.Height
}

// ChromaSize returns the size of one chroma plane in bytes.
func (g Geometry) ChromaSize() int {
	return (g.Width / 2) * (g.Height / 2)
}

// ChromaStride returns the row stride of a chroma plane.
func (g Geometry) ChromaStride() int {
	return g.Width / 2
}

// FrameSize returns the byte size of one frame (W*H*3/2).
func (g Geometry) FrameSize() int {
	return g.Width * g.Height * 3 / 2
}

// =============================================================================
// Source
// =============================================================================

// VideoSource describes a raw I420 file. It is built once at startup and
// never changes afterwards.
type VideoSource struct {
	Path       string
	Geometry   Geometry
	FrameRate  float64
	FileSize   int64
	FrameSize  int
	FrameCount int
}

// NewVideoSource derives frame size and count from the file size.
// An incomplete trailing frame is not counted.
func NewVideoSource(path string, geometry Geometry, frameRate float64, fileSize int64) (VideoSource, error) {
	if err := geometry.Validate(); err != nil {
		return VideoSource{}, err
	}
	frameSize := geometry.FrameSize()
	if frameSize <= 0 {
		return VideoSource{}, &GeometryError{Geometry: geometry, Reason: "frame size must be positive"}
	}
	count := 0
	if fileSize > 0 {
		count = int(fileSize / int64(frameSize))
	}
	return VideoSource{
		Path:       path,
		Geometry:   geometry,
		FrameRate:  frameRate,
		FileSize:   fileSize,
		FrameSize:  frameSize,
		FrameCount: count,
	}, nil
}

// TrailingBytes returns the number of bytes after the last complete frame.
func (s VideoSource) TrailingBytes() int64 {
	if s.FrameSize == 0 {
		return 0
	}
	return s.FileSize - int64(s.FrameCount)*int64(s.FrameSize)
}

// Offset returns the byte offset of the frame at index.
func (s VideoSource) Offset(index int) int64 {
	return int64(index) * int64(s.FrameSize)
}

// FrameInterval returns 1/FrameRate.
func (s VideoSource) FrameInterval() time.Duration {
	if s.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / s.FrameRate)
}

// CheckIndex returns an *IndexError when index is outside [0, FrameCount).
func (s VideoSource) CheckIndex(index int) error {
	if index < 0 || index >= s.FrameCount {
		return &IndexError{Index: index, Count: s.FrameCount}
	}
	return nil
}

// =============================================================================
// Frames
// =============================================================================

// RawFrame holds one I420 frame: Y plane, then U, then V.
type RawFrame struct {
	Index int
	Data  []byte
}

// Y returns the luma plane.
func (f RawFrame) Y(g Geometry) []byte {
	return f.Data[:g.LumaSize()]
}

// U returns the Cb plane.
func (f RawFrame) U(g Geometry) []byte {
	start := g.LumaSize()
	return f.Data[start : start+g.ChromaSize()]
}

// V returns the Cr plane.
func (f RawFrame) V(g Geometry) []byte {
	start := g.LumaSize() + g.ChromaSize()
	return f.Data[start : start+g.ChromaSize()]
}

// DisplayFrame is an interleaved RGB24 frame ready for a display sink.
type DisplayFrame struct {
	Index  int
	Width  int
	Height int
	Stride int
	Pix    []byte // R, G, B per pixel
}

// NewDisplayFrame allocates a zeroed frame.
func NewDisplayFrame(index, width, height int) DisplayFrame {
	return DisplayFrame{
		Index:  index,
		Width:  width,
		Height: height,
		Stride: width * 3,
		Pix:    make([]byte, width*height*3),
	}
}

// RGB returns the samples at (x, y).
func (f DisplayFrame) RGB(x, y int) (r, g, b uint8) {
	i := y*f.Stride + x*3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// ColorModel implements image.Image.
func (f DisplayFrame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f DisplayFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image.
func (f DisplayFrame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	r, g, b := f.RGB(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// =============================================================================
// Playback
// =============================================================================

// PlaybackState is the player state machine state.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StatePlaying
	StatePaused
	StateStopped
)

// String returns the lowercase state name.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// KeyKind classifies a key event from a display sink.
type KeyKind int

const (
	KeyOther KeyKind = iota
	KeyPause         // space: toggles pause
	KeyQuit          // esc, q, ctrl+c
)

// KeyEvent is a single key press.
type KeyEvent struct {
	Kind KeyKind
	Rune rune
}

// Stage names a per-frame processing step.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageConvert Stage = "convert"
	StagePresent Stage = "present"
)

// StageEvent is emitted to an observer after each per-frame stage.
type StageEvent struct {
	Stage   Stage
	Index   int
	Elapsed time.Duration
}
