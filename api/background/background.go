package background

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background runs fire-and-forget tasks, such as sending emails after a
// payment has been committed, without tying them to the request that
// spawned them. Shutdown drains pending tasks before the process exits.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Add schedules fn on its own goroutine. A failure or panic is logged and
// never propagated: background work must not affect request outcomes.
func (b *Background) Add(fn func() error) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				b.log.WithField("message", fmt.Sprintf("%v", rec)).Error("background task panicked")
			}
		}()

		if err := fn(); err != nil {
			b.log.WithField("message", err).Error("background task failed")
		}
	}()
}

// Shutdown waits for in-flight tasks, giving up when ctx expires.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
