package summarizer

import (
	"sync"
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

var stageOrder = []pipeline.Stage{
	pipeline.StageDecode,
	pipeline.StageConvert,
	pipeline.StagePresent,
}

// Collector accumulates stage events into PlaybackInfo. It is safe for
// concurrent use, since decode events may come from a prefetch goroutine.
type Collector struct {
	now func() time.Time

	mu        sync.Mutex
	stages    map[pipeline.Stage]*StageStats
	presented int
	first     int
	last      int
	started   time.Time
	ended     time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		now:    time.Now,
		stages: make(map[pipeline.Stage]*StageStats),
	}
}

// Observe implements ports.Observer.
func (c *Collector) Observe(ev pipeline.StageEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.stages[ev.Stage]
	if !ok {
		st = &StageStats{Stage: ev.Stage}
		c.stages[ev.Stage] = st
	}
	st.Count++
	st.Total += ev.Elapsed
	if ev.Elapsed > st.Max {
		st.Max = ev.Elapsed
	}

	if ev.Stage == pipeline.StagePresent {
		now := c.now()
		if c.presented == 0 {
			c.first = ev.Index
			c.started = now.Add(-ev.Elapsed)
		}
		c.presented++
		c.last = ev.Index
		c.ended = now
	}
}

// Playback returns the results collected so far. Stages appear in pipeline
// order; stages never observed are omitted.
func (c *Collector) Playback() PlaybackInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := PlaybackInfo{
		FramesPresented: c.presented,
		FirstFrame:      c.first,
		LastFrame:       c.last,
	}
	if c.presented > 0 {
		info.WallTime = c.ended.Sub(c.started)
	}
	for _, stage := range stageOrder {
		if st, ok := c.stages[stage]; ok {
			info.Stages = append(info.Stages, *st)
		}
	}
	return info
}

var _ ports.Observer = (*Collector)(nil)
