package player

import (
	"context"
	"sync"

	"github.com/user/yuvplay/pkg/pipeline"
)

type fetched struct {
	frame pipeline.RawFrame
	err   error
}

// prefetcher reads frames on its own goroutine one step ahead of the
// consumer. The hand-off channel is unbuffered, so at most one frame is
// held beyond the one being displayed.
type prefetcher struct {
	ch     chan fetched
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPrefetcher(ctx context.Context, next func() (pipeline.RawFrame, error)) *prefetcher {
	ctx, cancel := context.WithCancel(ctx)
	pf := &prefetcher{
		ch:     make(chan fetched),
		ctx:    ctx,
		cancel: cancel,
	}
	pf.wg.Add(1)
	go func() {
		defer pf.wg.Done()
		for {
			f, err := next()
			select {
			case pf.ch <- fetched{frame: f, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return pf
}

func (pf *prefetcher) next() (pipeline.RawFrame, error) {
	select {
	case r := <-pf.ch:
		return r.frame, r.err
	case <-pf.ctx.Done():
		return pipeline.RawFrame{}, pf.ctx.Err()
	}
}

// close stops the reader goroutine and waits for it, so the caller may
// release the underlying cursor afterwards.
func (pf *prefetcher) close() {
	pf.cancel()
	pf.wg.Wait()
}
