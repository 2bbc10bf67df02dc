// Package stagetrace logs per-frame stage timings at debug level.
package stagetrace

import (
	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// Tracer implements ports.Observer by writing one debug line per event.
type Tracer struct {
	logger ports.Logger
}

// New creates a tracer logging under the "trace" component.
func New(logger ports.Logger) *Tracer {
	return &Tracer{logger: logger.WithComponent("trace")}
}

// Observe logs the event.
func (t *Tracer) Observe(ev pipeline.StageEvent) {
	t.logger.Debug("Frame %d: %s %v", ev.Index, string(ev.Stage), ev.Elapsed)
}

var _ ports.Observer = (*Tracer)(nil)
