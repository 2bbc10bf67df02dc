package ports

import "github.com/user/yuvplay/pkg/pipeline"

// ColorConverter turns a raw I420 frame into an RGB frame.
// Implementations must be pure and deterministic.
type ColorConverter interface {
	Convert(raw pipeline.RawFrame, geometry pipeline.Geometry) (pipeline.DisplayFrame, error)
}

// ConvertFunc is a function adapter for ColorConverter.
type ConvertFunc func(raw pipeline.RawFrame, geometry pipeline.Geometry) (pipeline.DisplayFrame, error)

// Convert implements ColorConverter.
func (f ConvertFunc) Convert(raw pipeline.RawFrame, geometry pipeline.Geometry) (pipeline.DisplayFrame, error) {
	return f(raw, geometry)
}
