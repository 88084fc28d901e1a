package exchange

import (
	"context"
	"sync"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/google/logger"
	"github.com/redis/go-redis/v9"
)

const updatesBuffer = 16

// redisSubscription turns change announcements into full snapshots
type redisSubscription struct {
	repo   *redisRepository
	path   string
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	updates chan *models.Snapshot
	errs    chan error

	closeOnce sync.Once
	closeErr  error
}

func newRedisSubscription(ctx context.Context, repo *redisRepository, path string, pubsub *redis.PubSub) *redisSubscription {
	subCtx, cancel := context.WithCancel(ctx)
	return &redisSubscription{
		repo:    repo,
		path:    path,
		pubsub:  pubsub,
		ctx:     subCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		updates: make(chan *models.Snapshot, updatesBuffer),
		errs:    make(chan error, 1),
	}
}

func (s *redisSubscription) Updates() <-chan *models.Snapshot { return s.updates }

func (s *redisSubscription) Errors() <-chan error { return s.errs }

// Close stops listening and waits for the feed to drain
func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.pubsub.Close()
		<-s.done
	})
	return s.closeErr
}

func (s *redisSubscription) run() {
	defer close(s.done)
	defer close(s.updates)

	messages := s.pubsub.Channel()

	var last uint64
	first := true

	deliver := func() {
		snapshot, err := s.repo.GetSnapshot(s.ctx, &GetSnapshotInput{Path: s.path})
		if err != nil {
			if s.ctx.Err() == nil {
				s.report(err)
			}
			return
		}
		// Announcements can arrive after a later read already covered them
		if !first && snapshot.Revision <= last {
			return
		}
		select {
		case s.updates <- snapshot:
			first = false
			last = snapshot.Revision
		case <-s.ctx.Done():
		}
	}

	deliver()

	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			deliver()
		}
	}
}

// report keeps only the most recent error if nobody is reading
func (s *redisSubscription) report(err error) {
	logger.Warningf("exchange %s: subscription read failed: %v", s.path, err)
	select {
	case s.errs <- err:
	default:
	}
}
