// Package i420 converts planar YUV 4:2:0 frames to interleaved RGB.
package i420

import (
	"fmt"
	"image/color"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// Range selects how Y, Cb and Cr samples are scaled.
type Range int

const (
	// Limited is BT.601 studio swing: Y in [16, 235], chroma in [16, 240].
	Limited Range = iota
	// Full is JFIF full swing: all samples in [0, 255].
	Full
)

// ParseRange maps "limited" and "full" to a Range.
func ParseRange(s string) (Range, error) {
	switch s {
	case "limited", "":
		return Limited, nil
	case "full":
		return Full, nil
	default:
		return Limited, fmt.Errorf("unknown color range %q", s)
	}
}

// Converter implements ports.ColorConverter.
type Converter struct {
	rng Range
}

// New creates a converter for the given range.
func New(rng Range) *Converter {
	return &Converter{rng: rng}
}

// Convert converts one raw frame. With an odd width the last luma column
// reuses the last chroma column.
func (c *Converter) Convert(raw pipeline.RawFrame, g pipeline.Geometry) (pipeline.DisplayFrame, error) {
	if err := g.Validate(); err != nil {
		return pipeline.DisplayFrame{}, err
	}
	if len(raw.Data) < g.FrameSize() {
		return pipeline.DisplayFrame{}, fmt.Errorf("%w: frame %d has %d of %d bytes",
			pipeline.ErrTruncatedFrame, raw.Index, len(raw.Data), g.FrameSize())
	}

	yPlane := raw.Y(g)
	uPlane := raw.U(g)
	vPlane := raw.V(g)
	cw := g.ChromaStride()

	out := pipeline.NewDisplayFrame(raw.Index, g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		row := y * g.Width
		crow := (y / 2) * cw
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < g.Width; x++ {
			cb, cr := uint8(128), uint8(128)
			if cw > 0 {
				cx := x / 2
				if cx >= cw {
					cx = cw - 1
				}
				cb = uPlane[crow+cx]
				cr = vPlane[crow+cx]
			}

			var r, gg, b uint8
			if c.rng == Full {
				r, gg, b = color.YCbCrToRGB(yPlane[row+x], cb, cr)
			} else {
				r, gg, b = limitedToRGB(yPlane[row+x], cb, cr)
			}
			dst[x*3] = r
			dst[x*3+1] = gg
			dst[x*3+2] = b
		}
	}
	return out, nil
}

// limitedToRGB applies the BT.601 studio-swing transform in 8.8 fixed point.
func limitedToRGB(y, u, v uint8) (uint8, uint8, uint8) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128

	r := clamp((298*c + 409*e + 128) >> 8)
	g := clamp((298*c - 100*d - 208*e + 128) >> 8)
	b := clamp((298*c + 516*d + 128) >> 8)
	return r, g, b
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

var _ ports.ColorConverter = (*Converter)(nil)
