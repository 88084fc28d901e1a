package exchange

import (
	"context"
	"sync"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/google/logger"
	"github.com/nats-io/nats.go/jetstream"
)

// natsSubscription folds watcher entries into snapshots.
// Nothing is emitted until the watcher has replayed the current values.
type natsSubscription struct {
	path    string
	watcher jetstream.KeyWatcher

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	updates chan *models.Snapshot
	errs    chan error

	closeOnce sync.Once
	closeErr  error
}

func (s *natsSubscription) Updates() <-chan *models.Snapshot { return s.updates }

func (s *natsSubscription) Errors() <-chan error { return s.errs }

func (s *natsSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.watcher.Stop()
		s.cancel()
		<-s.done
	})
	return s.closeErr
}

func (s *natsSubscription) run() {
	defer close(s.done)
	defer close(s.updates)

	state := newNATSState(s.path)
	initialized := false

	for {
		select {
		case <-s.ctx.Done():
			return
		case entry, ok := <-s.watcher.Updates():
			if !ok {
				return
			}
			if entry == nil {
				initialized = true
			} else if err := state.apply(entry); err != nil {
				logger.Warningf("exchange %s: subscription read failed: %v", s.path, err)
				select {
				case s.errs <- err:
				default:
				}
				continue
			}

			if !initialized {
				continue
			}

			select {
			case s.updates <- state.snapshot():
			case <-s.ctx.Done():
				return
			}
		}
	}
}
