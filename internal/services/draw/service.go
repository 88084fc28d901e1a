package draw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"

	"github.com/KirkDiggler/secretsanta/internal/common/metrics"
	"github.com/KirkDiggler/secretsanta/internal/common/names"
	"github.com/KirkDiggler/secretsanta/internal/common/uuid"
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/repositories/exchange"
	"github.com/KirkDiggler/secretsanta/internal/services/assignment"
)

// service implements the Service interface
type service struct {
	repo         exchange.Repository
	generator    assignment.Generator
	idGenerator  uuid.Generator
	roster       *models.Roster
	path         string
	writeTimeout time.Duration
	strictInit   bool
	strictReveal bool
	onWriteError func(participantID string, err error)

	// ctx outlives single requests so background writes survive them; Close cancels it
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	current  *models.Snapshot
	pending  map[string]bool
	sub      exchange.Subscription
	started  bool
	closed   bool
	feedErr  error
	ready    chan struct{}
	readyOne sync.Once
	done     chan struct{}

	watchMu  sync.Mutex
	watchers map[int]chan *models.Board
	nextID   int

	writes    sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new draw coordinator
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}

	if cfg.Generator == nil {
		return nil, ErrNilGenerator
	}

	if cfg.IDGenerator == nil {
		return nil, ErrNilIDGenerator
	}

	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}

	roster := cfg.Roster
	if roster == nil {
		roster = models.DefaultRoster()
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &service{
		repo:         cfg.Repository,
		generator:    cfg.Generator,
		idGenerator:  cfg.IDGenerator,
		roster:       roster,
		path:         cfg.Path,
		writeTimeout: writeTimeout,
		strictInit:   cfg.StrictInit,
		strictReveal: cfg.StrictReveal,
		onWriteError: cfg.OnWriteError,
		ctx:          ctx,
		cancel:       cancel,
		pending:      make(map[string]bool),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
		watchers:     make(map[int]chan *models.Board),
	}, nil
}

// Start subscribes to the document, initializes it when absent and
// returns once the exchange is ready
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	// The feed lives until Close. ctx only bounds startup, so it may tear the
	// feed down while we are still waiting but never afterwards.
	feedCtx, cancelFeed := context.WithCancel(s.ctx)
	abort := context.AfterFunc(ctx, cancelFeed)

	err := s.start(ctx, feedCtx)
	if !abort() && err == nil {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
	}
	if err != nil {
		cancelFeed()
	}
	return err
}

func (s *service) start(ctx, feedCtx context.Context) error {
	sub, err := s.repo.Subscribe(feedCtx, &exchange.SubscribeInput{Path: s.path})
	if err != nil {
		close(s.done)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	first, err := s.firstSnapshot(ctx, sub)
	if err != nil {
		close(s.done)
		if closeErr := sub.Close(); closeErr != nil {
			logger.Warningf("Failed to close subscription for %s: %v", s.path, closeErr)
		}
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(s.done)
		return errors.Join(ErrClosed, sub.Close())
	}
	s.sub = sub
	s.mu.Unlock()

	s.apply(first)
	go s.run(sub)

	if first.Absent() {
		if err := s.initialize(ctx); err != nil {
			return err
		}
	}

	return s.awaitReady(ctx)
}

// firstSnapshot waits until the store answers with the current document
func (s *service) firstSnapshot(ctx context.Context, sub exchange.Subscription) (*models.Snapshot, error) {
	select {
	case snapshot, ok := <-sub.Updates():
		if !ok {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, exchange.ErrSubscriptionClosed)
		}
		return snapshot, nil
	case err := <-sub.Errors():
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
	}
}

func (s *service) awaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.done:
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.closed {
			return ErrClosed
		}
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, s.feedErr)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
	}
}

// initialize generates a ring for the roster and writes the first document
func (s *service) initialize(ctx context.Context) error {
	participants := make([]models.Participant, 0, len(s.roster.Participants))
	for _, name := range s.roster.Participants {
		participants = append(participants, models.Participant{
			ID:   s.idGenerator.NewID(),
			Name: name,
		})
	}

	out, err := s.generator.Generate(ctx, &assignment.GenerateInput{
		Participants: participants,
		Forbidden:    s.roster.Exclusions,
	})
	if err != nil {
		metrics.Initializations.WithLabelValues("generate_failed").Inc()
		logger.Errorf("Failed to generate ring for %s: %v", s.path, err)
		return fmt.Errorf("initialize exchange: %w", err)
	}

	doc := &models.Exchange{
		Participants: participants,
		Edges:        out.Edges,
		DrawStatus:   models.DrawStatus{},
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if s.strictInit {
		err = s.repo.CreateIfAbsent(writeCtx, &exchange.CreateIfAbsentInput{Path: s.path, Exchange: doc})
		if errors.Is(err, exchange.ErrDocumentExists) {
			// another client won the race, its snapshot is on the way
			metrics.Initializations.WithLabelValues("lost_race").Inc()
			logger.Infof("Exchange %s was created by another client", s.path)
			return nil
		}
	} else {
		err = s.repo.WriteFull(writeCtx, &exchange.WriteFullInput{Path: s.path, Exchange: doc})
	}
	if err != nil {
		metrics.Initializations.WithLabelValues("write_failed").Inc()
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	metrics.Initializations.WithLabelValues("created").Inc()
	logger.Infof("Created exchange %s with %d participants after %d attempts",
		s.path, len(participants), out.Attempts)
	return nil
}

// run mirrors the subscription into the local cache until it ends
func (s *service) run(sub exchange.Subscription) {
	defer close(s.done)

	updates := sub.Updates()
	errs := sub.Errors()
	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				s.mu.Lock()
				if !s.closed {
					s.feedErr = exchange.ErrSubscriptionClosed
					logger.Errorf("Subscription to %s ended", s.path)
				}
				s.mu.Unlock()
				return
			}
			s.apply(snapshot)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warningf("Exchange %s feed error: %v", s.path, err)
		}
	}
}

// apply caches a snapshot unless it is older than what we already saw
func (s *service) apply(snapshot *models.Snapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	if s.current != nil && snapshot.Revision <= s.current.Revision {
		s.mu.Unlock()
		return
	}
	s.current = &models.Snapshot{
		Revision: snapshot.Revision,
		Exchange: snapshot.Exchange.Clone(),
	}
	if !snapshot.Absent() {
		s.readyOne.Do(func() { close(s.ready) })
	}
	board := models.NewBoard(s.current)
	s.mu.Unlock()

	metrics.SnapshotsApplied.Inc()
	s.broadcast(board)
}

// Board returns the public view of the latest snapshot
func (s *service) Board() (*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.feedErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, s.feedErr)
	}
	if s.current.Absent() {
		return nil, ErrNotReady
	}
	return models.NewBoard(s.current), nil
}

// Watch streams boards as they change. The channel holds one board and
// a newer board replaces an unread one.
func (s *service) Watch() (<-chan *models.Board, func()) {
	ch := make(chan *models.Board, 1)

	s.watchMu.Lock()
	s.mu.RLock()
	var board *models.Board
	if !s.current.Absent() {
		board = models.NewBoard(s.current)
	}
	s.mu.RUnlock()

	id := s.nextID
	s.nextID++
	if s.watchers == nil {
		// already closed
		close(ch)
		s.watchMu.Unlock()
		return ch, func() {}
	}
	s.watchers[id] = ch
	if board != nil {
		offer(ch, board)
	}
	s.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.watchMu.Lock()
			defer s.watchMu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
}

func (s *service) broadcast(board *models.Board) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		offer(ch, board)
	}
}

// offer replaces whatever is buffered with the newest board. Only called with watchMu held.
func offer(ch chan *models.Board, board *models.Board) {
	for {
		select {
		case ch <- board:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Reveal hands the participant their recipient and records that they drew
func (s *service) Reveal(ctx context.Context, input *RevealInput) (*RevealOutput, error) {
	if input == nil || input.ParticipantID == "" {
		return nil, ErrParticipantNotFound
	}
	id := input.ParticipantID

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.feedErr != nil {
		err := s.feedErr
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("store_unavailable").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if s.current.Absent() {
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("not_ready").Inc()
		return nil, ErrNotReady
	}

	doc := s.current.Exchange
	giver, ok := doc.Participant(id)
	if !ok {
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("not_found").Inc()
		return nil, ErrParticipantNotFound
	}

	if doc.HasDrawn(id) || s.pending[id] {
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("already_drawn").Inc()
		return nil, ErrAlreadyDrawn
	}

	edge, ok := doc.EdgeFor(id)
	if !ok {
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("corrupt").Inc()
		logger.Errorf("Exchange %s has no edge for giver %s", s.path, id)
		return nil, fmt.Errorf("%w: no edge for giver %s", ErrCorruptState, id)
	}

	recipient, ok := doc.Participant(edge.RecipientID)
	if !ok {
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("corrupt").Inc()
		logger.Errorf("Exchange %s edge %s -> %s names an unknown recipient", s.path, id, edge.RecipientID)
		return nil, fmt.Errorf("%w: unknown recipient %s", ErrCorruptState, edge.RecipientID)
	}

	s.pending[id] = true
	if !s.strictReveal {
		s.writes.Add(1)
	}
	s.mu.Unlock()

	output := &RevealOutput{Giver: giver, Recipient: recipient}

	if !s.strictReveal {
		go s.recordDraw(id)
		metrics.Reveals.WithLabelValues("ok").Inc()
		return output, nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	err := s.repo.WriteDrawStatus(writeCtx, &exchange.WriteDrawStatusInput{
		Path:          s.path,
		ParticipantID: id,
		IfAbsent:      true,
	})
	if errors.Is(err, exchange.ErrAlreadySet) {
		metrics.Reveals.WithLabelValues("already_drawn").Inc()
		return nil, ErrAlreadyDrawn
	}
	if err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		metrics.Reveals.WithLabelValues("write_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	metrics.Reveals.WithLabelValues("ok").Inc()
	return output, nil
}

// recordDraw writes the draw status in the background. The participant
// has already seen their recipient, so a failure is only reported.
func (s *service) recordDraw(participantID string) {
	defer s.writes.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.writeTimeout)
	defer cancel()

	err := s.repo.WriteDrawStatus(ctx, &exchange.WriteDrawStatusInput{
		Path:          s.path,
		ParticipantID: participantID,
	})
	if err == nil {
		return
	}

	metrics.Reveals.WithLabelValues("write_failed").Inc()
	logger.Warningf("Failed to record draw for %s in %s: %v", participantID, s.path, err)
	if s.onWriteError != nil {
		s.onWriteError(participantID, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
}

// FindParticipant resolves a self-declared display name
func (s *service) FindParticipant(ctx context.Context, input *FindParticipantInput) (*FindParticipantOutput, error) {
	if input == nil {
		return nil, ErrParticipantNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.Absent() {
		return nil, ErrNotReady
	}

	for _, p := range s.current.Exchange.Participants {
		if names.Equal(p.Name, input.Name) {
			return &FindParticipantOutput{
				Participant: p,
				HasDrawn:    s.current.Exchange.HasDrawn(p.ID) || s.pending[p.ID],
			}, nil
		}
	}

	return nil, ErrParticipantNotFound
}

// Close stops the subscription and waits for pending writes
func (s *service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		sub := s.sub
		started := s.started
		s.mu.Unlock()

		if sub != nil {
			err = sub.Close()
		}
		if started {
			<-s.done
		}

		s.writes.Wait()
		s.cancel()

		s.watchMu.Lock()
		for id, ch := range s.watchers {
			delete(s.watchers, id)
			close(ch)
		}
		s.watchers = nil
		s.watchMu.Unlock()
	})
	return err
}
