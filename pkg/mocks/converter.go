package mocks

import (
	"sync"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// ColorConverter is a mock implementation of ports.ColorConverter.
// By default it copies the first three raw bytes into every pixel so tests
// can trace a display frame back to its source bytes.
type ColorConverter struct {
	mu sync.Mutex

	ConvertFunc func(raw pipeline.RawFrame, geometry pipeline.Geometry) (pipeline.DisplayFrame, error)

	// Converted records the indices passed to Convert.
	Converted []int
}

func (m *ColorConverter) Convert(raw pipeline.RawFrame, geometry pipeline.Geometry) (pipeline.DisplayFrame, error) {
	m.mu.Lock()
	m.Converted = append(m.Converted, raw.Index)
	m.mu.Unlock()
	if m.ConvertFunc != nil {
		return m.ConvertFunc(raw, geometry)
	}
	frame := pipeline.NewDisplayFrame(raw.Index, geometry.Width, geometry.Height)
	for i := 0; i+2 < len(frame.Pix); i += 3 {
		copy(frame.Pix[i:i+3], raw.Data)
	}
	return frame, nil
}

var _ ports.ColorConverter = (*ColorConverter)(nil)
