package ports

import "github.com/user/yuvplay/pkg/pipeline"

// Observer receives per-stage timings from the player.
// It is a diagnostics hook and must not block.
type Observer interface {
	Observe(event pipeline.StageEvent)
}

// ObserverFunc is a function adapter for Observer.
type ObserverFunc func(event pipeline.StageEvent)

// Observe implements Observer.
func (f ObserverFunc) Observe(event pipeline.StageEvent) {
	f(event)
}

// Observers fans an event out to several observers.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(event pipeline.StageEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(event)
		}
	}
}
