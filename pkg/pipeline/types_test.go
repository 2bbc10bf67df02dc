package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
		ok   bool
	}{
		{"qcif", Geometry{Width: 176, Height: 144}, true},
		{"odd width", Geometry{Width: 3, Height: 2}, true},
		{"zero width", Geometry{Width: 0, Height: 2}, false},
		{"negative height", Geometry{Width: 2, Height: -2}, false},
		{"odd height", Geometry{Width: 2, Height: 3}, false},
		{"width above uint32", Geometry{Width: math.MaxUint32 + 1, Height: 2}, false},
		{"height above uint32", Geometry{Width: 2, Height: math.MaxUint32 + 1}, false},
		{"product overflows", Geometry{Width: math.MaxUint32, Height: math.MaxUint32 - 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.ok {
				assert.NoError(t, err)
				assert.Positive(t, tt.g.FrameSize())
				return
			}
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}

func TestNewVideoSource_RejectsWrappedFrameSize(t *testing.T) {
	g := Geometry{Width: 1 << 32, Height: 1 << 32}

	_, err := NewVideoSource("clip.yuv", g, 30, 1024)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestNewVideoSource_FrameCount(t *testing.T) {
	src, err := NewVideoSource("clip.yuv", Geometry{Width: 2, Height: 2}, 30, 13)
	require.NoError(t, err)

	assert.Equal(t, 6, src.FrameSize)
	assert.Equal(t, 2, src.FrameCount)
	assert.Equal(t, int64(1), src.TrailingBytes())
}
