// Package summarizer provides summary generation for playback sessions.
package summarizer

import (
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
)

// Summary contains all data collected during a playback session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Raw file information
	Source SourceInfo

	// Playback configuration
	Settings Settings

	// Per-stage timing results
	Playback PlaybackInfo
}

// SourceInfo describes the raw video.
type SourceInfo struct {
	Path          string
	Width         int
	Height        int
	FrameRate     float64
	FrameSize     int
	FrameCount    int
	TrailingBytes int64
}

// Settings contains the playback configuration.
type Settings struct {
	AccessMode string
	Display    string
	ColorRange string
	Prefetch   bool
	Pace       time.Duration
}

// StageStats aggregates the timings of one stage.
type StageStats struct {
	Stage pipeline.Stage
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average duration, or zero when nothing was recorded.
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// PlaybackInfo contains the measured results.
type PlaybackInfo struct {
	FramesPresented int
	FirstFrame      int
	LastFrame       int
	WallTime        time.Duration
	Stages          []StageStats
}

// EffectiveFPS returns presented frames per second of wall time.
func (p PlaybackInfo) EffectiveFPS() float64 {
	if p.WallTime <= 0 || p.FramesPresented == 0 {
		return 0
	}
	return float64(p.FramesPresented) / p.WallTime.Seconds()
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the raw file information.
func (b *Builder) WithSource(src pipeline.VideoSource) *Builder {
	b.summary.Source = SourceInfo{
		Path:          src.Path,
		Width:         src.Geometry.Width,
		Height:        src.Geometry.Height,
		FrameRate:     src.FrameRate,
		FrameSize:     src.FrameSize,
		FrameCount:    src.FrameCount,
		TrailingBytes: src.TrailingBytes(),
	}
	return b
}

// WithSettings sets the playback configuration.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithPlayback sets the measured results.
func (b *Builder) WithPlayback(playback PlaybackInfo) *Builder {
	b.summary.Playback = playback
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
