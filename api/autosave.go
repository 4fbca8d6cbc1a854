/*
autosave.go - Periodic flush of dirty collections

PURPOSE:
  Handlers flush after every mutation, but a failed flush leaves its
  collections dirty in memory. The Autosaver retries on a fixed interval
  so they reach the Persister once it is healthy again.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Skips the flush when nothing is dirty
  - Stop performs one last flush before returning

USAGE:
  saver := NewAutosaver(store, persister, log)
  saver.Interval = cfg.FlushInterval()
  saver.Start()
  // ... later
  saver.Stop()

SEE ALSO:
  - timetable/store.go: Store.Flush
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/timetable-engine/timetable"
)

// Autosaver flushes the Store on a ticker.
type Autosaver struct {
	Store     *timetable.Store
	Persister timetable.Persister
	Interval  time.Duration

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewAutosaver(store *timetable.Store, persister timetable.Persister, log zerolog.Logger) *Autosaver {
	return &Autosaver{
		Store:     store,
		Persister: persister,
		Interval:  30 * time.Second,
		log:       log,
	}
}

// Start begins the periodic flush. A non-positive Interval disables it.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Interval <= 0 {
		a.log.Info().Msg("autosave disabled")
		return
	}
	if a.ticker != nil {
		return
	}

	a.ticker = time.NewTicker(a.Interval)
	a.stop = make(chan struct{})
	a.wg.Add(1)
	go a.run(a.ticker, a.stop)

	a.log.Info().Dur("interval", a.Interval).Msg("autosave started")
}

// Stop halts the ticker and flushes once more.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.ticker != nil {
		a.ticker.Stop()
		close(a.stop)
		a.wg.Wait()
		a.ticker = nil
		a.log.Info().Msg("autosave stopped")
	}
	a.mu.Unlock()

	return a.Store.Flush(ctx, a.Persister)
}

func (a *Autosaver) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer a.wg.Done()
	for {
		select {
		case <-ticker.C:
			a.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow flushes immediately if anything is dirty.
func (a *Autosaver) RunNow(ctx context.Context) {
	dirty := a.Store.Dirty()
	if len(dirty) == 0 {
		return
	}
	if err := a.Store.Flush(ctx, a.Persister); err != nil {
		a.log.Warn().Err(err).Int("dirty", len(dirty)).Msg("autosave failed, will retry")
		return
	}
	a.log.Debug().Int("collections", len(dirty)).Msg("autosave flushed")
}
