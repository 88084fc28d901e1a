package draw

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	uuidMocks "github.com/KirkDiggler/secretsanta/internal/common/uuid/mocks"
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/repositories/exchange"
	exchangeMocks "github.com/KirkDiggler/secretsanta/internal/repositories/exchange/mocks"
	"github.com/KirkDiggler/secretsanta/internal/services/assignment"
	assignmentMocks "github.com/KirkDiggler/secretsanta/internal/services/assignment/mocks"
)

const (
	testPath    = "christmas-draw-test"
	waitTimeout = 2 * time.Second
	tick        = 5 * time.Millisecond
)

type DrawServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockRepo      *exchangeMocks.MockRepository
	mockSub       *exchangeMocks.MockSubscription
	mockGenerator *assignmentMocks.MockGenerator
	mockUUID      *uuidMocks.MockGenerator
	ctx           context.Context

	updates   chan *models.Snapshot
	errs      chan error
	closeFeed func()

	roster      *models.Roster
	testEdges   []models.AssignmentEdge
	writeErrors chan error
}

func (s *DrawServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = exchangeMocks.NewMockRepository(s.mockCtrl)
	s.mockSub = exchangeMocks.NewMockSubscription(s.mockCtrl)
	s.mockGenerator = assignmentMocks.NewMockGenerator(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockGenerator(s.mockCtrl)
	s.ctx = context.Background()

	s.updates = make(chan *models.Snapshot, 16)
	s.errs = make(chan error, 4)
	var once sync.Once
	s.closeFeed = func() { once.Do(func() { close(s.updates) }) }

	s.mockSub.EXPECT().Updates().Return((<-chan *models.Snapshot)(s.updates)).AnyTimes()
	s.mockSub.EXPECT().Errors().Return((<-chan error)(s.errs)).AnyTimes()
	s.mockSub.EXPECT().Close().DoAndReturn(func() error {
		s.closeFeed()
		return nil
	}).AnyTimes()

	s.roster = &models.Roster{
		Participants: []string{"Anya", "Bence", "Bogi"},
		Exclusions:   map[string][]string{"Bence": {"Bogi"}},
	}
	s.testEdges = []models.AssignmentEdge{
		{GiverID: "p-anya", RecipientID: "p-bogi"},
		{GiverID: "p-bogi", RecipientID: "p-bence"},
		{GiverID: "p-bence", RecipientID: "p-anya"},
	}
	s.writeErrors = make(chan error, 4)
}

func (s *DrawServiceTestSuite) newService(modify ...func(*Config)) *service {
	cfg := &Config{
		Repository:   s.mockRepo,
		Generator:    s.mockGenerator,
		IDGenerator:  s.mockUUID,
		Roster:       s.roster,
		Path:         testPath,
		WriteTimeout: time.Second,
		OnWriteError: func(participantID string, err error) {
			s.writeErrors <- err
		},
	}
	for _, m := range modify {
		m(cfg)
	}

	svc, err := New(cfg)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = svc.Close() })
	return svc
}

func (s *DrawServiceTestSuite) testExchange() *models.Exchange {
	return &models.Exchange{
		Participants: []models.Participant{
			{ID: "p-anya", Name: "Anya"},
			{ID: "p-bence", Name: "Bence"},
			{ID: "p-bogi", Name: "Bogi"},
		},
		Edges:      append([]models.AssignmentEdge(nil), s.testEdges...),
		DrawStatus: models.DrawStatus{},
	}
}

func (s *DrawServiceTestSuite) expectSubscribe() {
	s.mockRepo.EXPECT().
		Subscribe(gomock.Any(), &exchange.SubscribeInput{Path: testPath}).
		Return(s.mockSub, nil)
}

// startReady starts a coordinator on top of an existing document
func (s *DrawServiceTestSuite) startReady(doc *models.Exchange, modify ...func(*Config)) *service {
	svc := s.newService(modify...)
	s.expectSubscribe()
	s.updates <- &models.Snapshot{Revision: 1, Exchange: doc}
	s.Require().NoError(svc.Start(s.ctx))
	return svc
}

func (s *DrawServiceTestSuite) waitForRevision(svc *service, revision uint64) {
	s.Require().Eventually(func() bool {
		board, err := svc.Board()
		return err == nil && board.Revision == revision
	}, waitTimeout, tick)
}

func (s *DrawServiceTestSuite) TestNewValidatesConfig() {
	valid := func() *Config {
		return &Config{
			Repository:  s.mockRepo,
			Generator:   s.mockGenerator,
			IDGenerator: s.mockUUID,
			Path:        testPath,
		}
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil config", cfg: nil, wantErr: ErrNilConfig},
		{name: "nil repository", cfg: func() *Config { c := valid(); c.Repository = nil; return c }(), wantErr: ErrNilRepository},
		{name: "nil generator", cfg: func() *Config { c := valid(); c.Generator = nil; return c }(), wantErr: ErrNilGenerator},
		{name: "nil id generator", cfg: func() *Config { c := valid(); c.IDGenerator = nil; return c }(), wantErr: ErrNilIDGenerator},
		{name: "empty path", cfg: func() *Config { c := valid(); c.Path = ""; return c }(), wantErr: ErrEmptyPath},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			svc, err := New(tt.cfg)
			s.ErrorIs(err, tt.wantErr)
			s.Nil(svc)
		})
	}

	svc, err := New(valid())
	s.Require().NoError(err)
	s.Equal(DefaultWriteTimeout, svc.writeTimeout)
	s.Equal(models.DefaultRoster(), svc.roster)
}

func (s *DrawServiceTestSuite) TestStartWithExistingDocument() {
	svc := s.startReady(s.testExchange())

	board, err := svc.Board()
	s.Require().NoError(err)
	s.Equal(uint64(1), board.Revision)
	s.Equal(3, board.Total)
	s.Equal(0, board.Drawn)
	s.Equal("Anya", board.Entries[0].Name)
}

func (s *DrawServiceTestSuite) TestFeedOutlivesStartContext() {
	svc := s.newService()

	var feedCtx context.Context
	s.mockRepo.EXPECT().
		Subscribe(gomock.Any(), &exchange.SubscribeInput{Path: testPath}).
		DoAndReturn(func(ctx context.Context, _ *exchange.SubscribeInput) (exchange.Subscription, error) {
			feedCtx = ctx
			return s.mockSub, nil
		})
	s.updates <- &models.Snapshot{Revision: 1, Exchange: s.testExchange()}

	startCtx, cancel := context.WithTimeout(s.ctx, waitTimeout)
	s.Require().NoError(svc.Start(startCtx))
	cancel()

	s.Require().NotNil(feedCtx)
	s.NoError(feedCtx.Err())

	s.updates <- &models.Snapshot{Revision: 2, Exchange: s.testExchange()}
	s.waitForRevision(svc, 2)

	s.Require().NoError(svc.Close())
	s.Error(feedCtx.Err())
}

func (s *DrawServiceTestSuite) TestStartContextCancelledBeforeFirstSnapshot() {
	svc := s.newService()

	var feedCtx context.Context
	s.mockRepo.EXPECT().
		Subscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *exchange.SubscribeInput) (exchange.Subscription, error) {
			feedCtx = ctx
			return s.mockSub, nil
		})

	startCtx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := svc.Start(startCtx)
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, context.Canceled)
	s.Require().NotNil(feedCtx)
	s.Error(feedCtx.Err())
}

func (s *DrawServiceTestSuite) TestStartInitializesAbsentDocument() {
	svc := s.newService()
	s.expectSubscribe()
	s.updates <- &models.Snapshot{Revision: 0}

	gomock.InOrder(
		s.mockUUID.EXPECT().NewID().Return("p-anya"),
		s.mockUUID.EXPECT().NewID().Return("p-bence"),
		s.mockUUID.EXPECT().NewID().Return("p-bogi"),
	)

	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *assignment.GenerateInput) (*assignment.GenerateOutput, error) {
			s.Equal(s.testExchange().Participants, input.Participants)
			s.Equal(s.roster.Exclusions, input.Forbidden)
			return &assignment.GenerateOutput{Edges: s.testEdges, Attempts: 4}, nil
		})

	s.mockRepo.EXPECT().
		WriteFull(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *exchange.WriteFullInput) error {
			s.Equal(testPath, input.Path)
			s.Equal(s.testExchange(), input.Exchange)
			s.updates <- &models.Snapshot{Revision: 1, Exchange: input.Exchange.Clone()}
			return nil
		})

	s.Require().NoError(svc.Start(s.ctx))

	board, err := svc.Board()
	s.Require().NoError(err)
	s.Equal(3, board.Total)
	s.Equal(0, board.Drawn)
}

func (s *DrawServiceTestSuite) TestStrictInitLosingTheRaceWaitsForWinner() {
	svc := s.newService(func(c *Config) { c.StrictInit = true })
	s.expectSubscribe()
	s.updates <- &models.Snapshot{Revision: 0}

	s.mockUUID.EXPECT().NewID().Return("mine").Times(3)
	s.mockGenerator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&assignment.GenerateOutput{Edges: s.testEdges, Attempts: 1}, nil)

	winner := s.testExchange()
	s.mockRepo.EXPECT().
		CreateIfAbsent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *exchange.CreateIfAbsentInput) error {
			s.updates <- &models.Snapshot{Revision: 2, Exchange: winner}
			return exchange.ErrDocumentExists
		})

	s.Require().NoError(svc.Start(s.ctx))

	found, err := svc.FindParticipant(s.ctx, &FindParticipantInput{Name: "Bogi"})
	s.Require().NoError(err)
	s.Equal("p-bogi", found.Participant.ID)
}

func (s *DrawServiceTestSuite) TestStartInfeasibleRoster() {
	svc := s.newService()
	s.expectSubscribe()
	s.updates <- &models.Snapshot{Revision: 0}

	s.mockUUID.EXPECT().NewID().Return("id").Times(3)
	s.mockGenerator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(nil, assignment.ErrInfeasible)

	err := svc.Start(s.ctx)
	s.ErrorIs(err, assignment.ErrInfeasible)

	_, err = svc.Board()
	s.ErrorIs(err, ErrNotReady)
}

func (s *DrawServiceTestSuite) TestStartWriteFailure() {
	svc := s.newService()
	s.expectSubscribe()
	s.updates <- &models.Snapshot{Revision: 0}

	storeErr := errors.New("connection refused")
	s.mockUUID.EXPECT().NewID().Return("id").Times(3)
	s.mockGenerator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&assignment.GenerateOutput{Edges: s.testEdges}, nil)
	s.mockRepo.EXPECT().WriteFull(gomock.Any(), gomock.Any()).Return(storeErr)

	err := svc.Start(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, storeErr)
}

func (s *DrawServiceTestSuite) TestStartSubscribeFailure() {
	svc := s.newService()
	storeErr := errors.New("dial tcp: timeout")
	s.mockRepo.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(nil, storeErr)

	err := svc.Start(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, storeErr)
}

func (s *DrawServiceTestSuite) TestStartFirstReadFailure() {
	svc := s.newService()
	s.expectSubscribe()
	storeErr := errors.New("corrupt document")
	s.errs <- storeErr

	err := svc.Start(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, storeErr)
}

func (s *DrawServiceTestSuite) TestStartTwice() {
	svc := s.startReady(s.testExchange())
	s.ErrorIs(svc.Start(s.ctx), ErrAlreadyStarted)
}

func (s *DrawServiceTestSuite) TestNotReadyBeforeStart() {
	svc := s.newService()

	_, err := svc.Board()
	s.ErrorIs(err, ErrNotReady)

	_, err = svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrNotReady)

	_, err = svc.FindParticipant(s.ctx, &FindParticipantInput{Name: "Anya"})
	s.ErrorIs(err, ErrNotReady)
}

func (s *DrawServiceTestSuite) TestRevealReturnsRecipientAndWritesScopedStatus() {
	svc := s.startReady(s.testExchange())

	written := make(chan struct{})
	s.mockRepo.EXPECT().
		WriteDrawStatus(gomock.Any(), &exchange.WriteDrawStatusInput{Path: testPath, ParticipantID: "p-anya"}).
		DoAndReturn(func(context.Context, *exchange.WriteDrawStatusInput) error {
			close(written)
			return nil
		})

	out, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.Require().NoError(err)
	s.Equal("Anya", out.Giver.Name)
	s.Equal(models.Participant{ID: "p-bogi", Name: "Bogi"}, out.Recipient)

	select {
	case <-written:
	case <-time.After(waitTimeout):
		s.Fail("draw status was never written")
	}

	// the store has not echoed yet, the local pending set still blocks a repeat
	_, err = svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrAlreadyDrawn)

	found, err := svc.FindParticipant(s.ctx, &FindParticipantInput{Name: "anya"})
	s.Require().NoError(err)
	s.True(found.HasDrawn)
}

func (s *DrawServiceTestSuite) TestRevealAlreadyDrawnInStore() {
	doc := s.testExchange()
	doc.DrawStatus["p-bence"] = true
	svc := s.startReady(doc)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-bence"})
	s.ErrorIs(err, ErrAlreadyDrawn)
}

func (s *DrawServiceTestSuite) TestRevealUnknownParticipant() {
	svc := s.startReady(s.testExchange())

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-nobody"})
	s.ErrorIs(err, ErrParticipantNotFound)

	_, err = svc.Reveal(s.ctx, nil)
	s.ErrorIs(err, ErrParticipantNotFound)
}

func (s *DrawServiceTestSuite) TestRevealMissingEdgeIsCorrupt() {
	doc := s.testExchange()
	doc.Edges = doc.Edges[1:]
	svc := s.startReady(doc)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrCorruptState)
	s.NotErrorIs(err, ErrAlreadyDrawn)
}

func (s *DrawServiceTestSuite) TestRevealUnknownRecipientIsCorrupt() {
	doc := s.testExchange()
	doc.Edges[0].RecipientID = "p-ghost"
	svc := s.startReady(doc)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrCorruptState)
}

func (s *DrawServiceTestSuite) TestRevealWriteFailureIsReportedNotReturned() {
	svc := s.startReady(s.testExchange())

	storeErr := errors.New("write timed out")
	s.mockRepo.EXPECT().WriteDrawStatus(gomock.Any(), gomock.Any()).Return(storeErr)

	out, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-bogi"})
	s.Require().NoError(err)
	s.Equal("Bence", out.Recipient.Name)

	select {
	case reported := <-s.writeErrors:
		s.ErrorIs(reported, ErrStoreUnavailable)
		s.ErrorIs(reported, storeErr)
	case <-time.After(waitTimeout):
		s.Fail("write failure was not reported")
	}
}

func (s *DrawServiceTestSuite) TestStrictRevealConflict() {
	svc := s.startReady(s.testExchange(), func(c *Config) { c.StrictReveal = true })

	s.mockRepo.EXPECT().
		WriteDrawStatus(gomock.Any(), &exchange.WriteDrawStatusInput{Path: testPath, ParticipantID: "p-anya", IfAbsent: true}).
		Return(exchange.ErrAlreadySet)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrAlreadyDrawn)
}

func (s *DrawServiceTestSuite) TestStrictRevealFailureCanBeRetried() {
	svc := s.startReady(s.testExchange(), func(c *Config) { c.StrictReveal = true })

	storeErr := errors.New("connection reset")
	gomock.InOrder(
		s.mockRepo.EXPECT().WriteDrawStatus(gomock.Any(), gomock.Any()).Return(storeErr),
		s.mockRepo.EXPECT().WriteDrawStatus(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-bence"})
	s.ErrorIs(err, ErrStoreUnavailable)
	s.ErrorIs(err, storeErr)

	out, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-bence"})
	s.Require().NoError(err)
	s.Equal("Anya", out.Recipient.Name)
}

func (s *DrawServiceTestSuite) TestStaleSnapshotsAreDropped() {
	svc := s.startReady(s.testExchange())

	newer := s.testExchange()
	newer.DrawStatus["p-anya"] = true
	s.updates <- &models.Snapshot{Revision: 5, Exchange: newer}
	s.waitForRevision(svc, 5)

	// an older revision must not roll back the draw status
	s.updates <- &models.Snapshot{Revision: 4, Exchange: s.testExchange()}
	latest := s.testExchange()
	latest.DrawStatus["p-anya"] = true
	latest.DrawStatus["p-bogi"] = true
	s.updates <- &models.Snapshot{Revision: 6, Exchange: latest}
	s.waitForRevision(svc, 6)

	board, err := svc.Board()
	s.Require().NoError(err)
	s.Equal(2, board.Drawn)

	_, err = svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrAlreadyDrawn)
}

func (s *DrawServiceTestSuite) TestCachedSnapshotIsIsolatedFromFeed() {
	doc := s.testExchange()
	svc := s.startReady(doc)

	doc.DrawStatus["p-anya"] = true

	board, err := svc.Board()
	s.Require().NoError(err)
	s.Equal(0, board.Drawn)
}

func (s *DrawServiceTestSuite) TestWatchDeliversLatestBoard() {
	svc := s.startReady(s.testExchange())

	boards, cancel := svc.Watch()

	select {
	case board := <-boards:
		s.Equal(uint64(1), board.Revision)
	case <-time.After(waitTimeout):
		s.Fail("no initial board")
	}

	drawn := s.testExchange()
	drawn.DrawStatus["p-bence"] = true
	s.updates <- &models.Snapshot{Revision: 2, Exchange: drawn}

	select {
	case board := <-boards:
		s.Equal(uint64(2), board.Revision)
		s.Equal(1, board.Drawn)
		s.True(board.Entries[1].HasDrawn)
	case <-time.After(waitTimeout):
		s.Fail("no board after update")
	}

	cancel()
	_, ok := <-boards
	s.False(ok)

	// cancelling twice is harmless
	cancel()
}

func (s *DrawServiceTestSuite) TestWatchSkipsToNewestForSlowReaders() {
	svc := s.startReady(s.testExchange())

	boards, cancel := svc.Watch()
	defer cancel()

	for rev := uint64(2); rev <= 5; rev++ {
		s.updates <- &models.Snapshot{Revision: rev, Exchange: s.testExchange()}
	}
	s.waitForRevision(svc, 5)

	select {
	case board := <-boards:
		s.Equal(uint64(5), board.Revision)
	case <-time.After(waitTimeout):
		s.Fail("no board")
	}
}

func (s *DrawServiceTestSuite) TestFindParticipantNormalizesNames() {
	doc := s.testExchange()
	doc.Participants[1].Name = "Balázs"
	svc := s.startReady(doc)

	found, err := svc.FindParticipant(s.ctx, &FindParticipantInput{Name: "  balázs "})
	s.Require().NoError(err)
	s.Equal("p-bence", found.Participant.ID)
	s.False(found.HasDrawn)

	_, err = svc.FindParticipant(s.ctx, &FindParticipantInput{Name: "Zsani"})
	s.ErrorIs(err, ErrParticipantNotFound)
}

func (s *DrawServiceTestSuite) TestFeedEndingMakesStoreUnavailable() {
	svc := s.startReady(s.testExchange())

	s.closeFeed()

	s.Require().Eventually(func() bool {
		_, err := svc.Board()
		return errors.Is(err, ErrStoreUnavailable)
	}, waitTimeout, tick)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrStoreUnavailable)
}

func (s *DrawServiceTestSuite) TestCloseEndsWatchersAndRejectsReveals() {
	svc := s.startReady(s.testExchange())
	boards, _ := svc.Watch()
	<-boards

	s.Require().NoError(svc.Close())

	_, ok := <-boards
	s.False(ok)

	_, err := svc.Reveal(s.ctx, &RevealInput{ParticipantID: "p-anya"})
	s.ErrorIs(err, ErrClosed)

	s.ErrorIs(svc.Start(s.ctx), ErrClosed)
}

func TestDrawServiceSuite(t *testing.T) {
	suite.Run(t, new(DrawServiceTestSuite))
}
