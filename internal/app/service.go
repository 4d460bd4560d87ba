// Package app wires the reconciliation engine together and implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/example/leaguedesk/internal/adapters/blobstore"
	jobqueue "github.com/example/leaguedesk/internal/adapters/mq/queue"
	workerpool "github.com/example/leaguedesk/internal/adapters/mq/worker"
	"github.com/example/leaguedesk/internal/adapters/replay"
	"github.com/example/leaguedesk/internal/adapters/repository"
	"github.com/example/leaguedesk/internal/domain/dedupe"
	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/pkg/logger"
	"github.com/example/leaguedesk/pkg/metrics"
)

// Upload is one replay file in a batch submission.
type Upload struct {
	Name string
	Raw  []byte
}

// MatchConfirmation carries a full match's outcome: one winner per set slot,
// forfeit flags, optional replay digests, and the ace pairing when the
// decider was played.
type MatchConfirmation struct {
	Week        int
	MatchNumber int
	Winners     [model.SetsPerMatch]model.Winner
	Forfeits    [model.SetsPerMatch]bool
	Digests     [model.SetsPerMatch]string
	Ace         *model.AceMatchRecord
}

// Service runs the reconciliation engine.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	blobs     blobstore.Store
	extractor replay.Extractor
	queue     jobqueue.Queue
	pool      *workerpool.Pool
	resolver  *match.BatchResolver

	dsn         string
	dataDir     string
	parserCmd   string
	queueSize   int
	workerCount int
	dedupeSize  int
	migrate     bool

	started bool

	log logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:   1024,
		workerCount: runtime.NumCPU() * 2,
		dedupeSize:  50_000,
		dataDir:     "data",
		migrate:     true,
		resolver:    match.NewBatchResolver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects the store, prepares blob storage, and launches the
// extraction workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Named("app")
	}

	s.log.Info(ctx, "starting league service...")

	if s.store == nil {
		store, err := repository.New(ctx, s.dsn)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if s.migrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return fmt.Errorf("start: %w", err)
			}
		}
		s.store = store
	}

	if s.blobs == nil {
		blobs, err := blobstore.New(s.dataDir,
			blobstore.WithCache(dedupe.NewDigestCache(dedupe.WithMaxSize(s.dedupeSize))))
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		s.blobs = blobs
	}

	if s.extractor == nil {
		s.extractor = replay.New(replay.WithCommand(s.parserCmd))
	}

	if s.queue == nil {
		s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	}

	s.pool = workerpool.NewPool(s.queue, s.blobs, s.extractor, s.workerCount)
	s.pool.Start(ctx)

	s.started = true
	s.log.Info(ctx, "league service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize))
	return nil
}

// Stop drains the workers and closes the store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.log.Info(ctx, "stopping league service...")

	if q, ok := s.queue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.log.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.log.Info(ctx, "league service stopped")
}

// ResolveBatch archives and parses the uploads in parallel, then matches
// each against the schedule window for targetWeek. Output preserves input
// order; per-item parse failures surface on the item, not as a batch error.
func (s *Service) ResolveBatch(ctx context.Context, uploads []Upload, targetWeek int) ([]match.Suggestion, error) {
	if targetWeek < 1 {
		return nil, fmt.Errorf("%w: week %d", ErrValidation, targetWeek)
	}

	replies := make([]chan match.Item, len(uploads))
	for i, up := range uploads {
		reply := make(chan match.Item, 1)
		replies[i] = reply
		ok := s.queue.Enqueue(ctx, jobqueue.Job{Name: up.Name, Raw: up.Raw, Reply: reply})
		if !ok {
			// Refuse the whole batch: partial enqueue would report
			// fewer items than were uploaded.
			for j := 0; j < i; j++ {
				<-replies[j]
			}
			return nil, fmt.Errorf("%w: extraction queue full", ErrBusy)
		}
	}

	items := make([]match.Item, len(uploads))
	for i, reply := range replies {
		select {
		case items[i] = <-reply:
		case <-ctx.Done():
			return nil, fmt.Errorf("resolve batch: %w", ctx.Err())
		}
	}

	return s.resolver.Resolve(ctx, s.store, items, targetWeek)
}

// ConfirmSetResult records one set's outcome. Precondition order: unknown
// game, then existing result, then winner validity.
func (s *Service) ConfirmSetResult(ctx context.Context, week, matchNumber, setNumber int, winner string, digest string) error {
	key, err := model.NewSetKey(week, matchNumber, setNumber)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	parsed, werr := model.ParseWinner(winner)
	if werr != nil {
		// The slot checks outrank winner validation, so an invalid
		// winner against an unknown or already-recorded slot reports
		// the slot problem.
		if err := s.store.CheckSlot(ctx, key); err != nil {
			return err
		}
		metrics.RecordConfirmationReject()
		return fmt.Errorf("%w: %w", ErrValidation, werr)
	}

	result, err := model.NewSetResult(key, parsed, false, digest)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.store.ConfirmSet(ctx, result)
}

// ConfirmMatchResult records all five sets of a match atomically, enforcing
// best-of-five structure and the ace pairing requirement.
func (s *Service) ConfirmMatchResult(ctx context.Context, confirmation MatchConfirmation) error {
	if confirmation.Week < 1 || confirmation.MatchNumber < 1 {
		return fmt.Errorf("%w: week %d match %d", ErrValidation, confirmation.Week, confirmation.MatchNumber)
	}

	for _, w := range confirmation.Winners {
		if _, err := model.ParseWinner(string(w)); err != nil {
			metrics.RecordConfirmationReject()
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	if err := validateBestOfFive(confirmation.Winners); err != nil {
		metrics.RecordConfirmationReject()
		return err
	}

	deciderPlayed := confirmation.Winners[model.AceSetNumber-1] != model.WinnerNone
	if deciderPlayed {
		if confirmation.Ace == nil {
			metrics.RecordConfirmationReject()
			return fmt.Errorf("%w: decider recorded without ace pairing", ErrValidation)
		}
		if err := confirmation.Ace.Validate(); err != nil {
			metrics.RecordConfirmationReject()
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	results := make([]model.SetResult, 0, model.SetsPerMatch)
	for i := 0; i < model.SetsPerMatch; i++ {
		key := model.SetKey{Week: confirmation.Week, MatchNumber: confirmation.MatchNumber, SetNumber: i + 1}
		result, err := model.NewSetResult(key, confirmation.Winners[i], confirmation.Forfeits[i], confirmation.Digests[i])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		results = append(results, result)
	}

	ace := confirmation.Ace
	if ace != nil {
		ace.Week = confirmation.Week
		ace.MatchNumber = confirmation.MatchNumber
	}
	return s.store.ConfirmMatch(ctx, results, ace)
}

// validateBestOfFive rejects win patterns impossible in a best-of-five: more
// than three wins for a side, or play continuing after a side reached three.
func validateBestOfFive(winners [model.SetsPerMatch]model.Winner) error {
	homeWins, awayWins := 0, 0
	for i, w := range winners {
		if homeWins >= 3 || awayWins >= 3 {
			if w != model.WinnerNone {
				return fmt.Errorf("%w: set %d recorded after match was decided", ErrValidation, i+1)
			}
			continue
		}
		home, away := w.Flags()
		if home {
			homeWins++
		}
		if away {
			awayWins++
		}
	}
	return nil
}

// MissingResults lists the unrecorded slots for the given matches.
func (s *Service) MissingResults(ctx context.Context, week int, matchNumbers []int) ([]model.SetKey, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week %d", ErrValidation, week)
	}
	return s.store.MissingResults(ctx, week, matchNumbers)
}

// Schedule returns the scheduled sets for one week.
func (s *Service) Schedule(ctx context.Context, week int) ([]model.ScheduledSet, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week %d", ErrValidation, week)
	}
	return s.store.ListScheduledSets(ctx, week, week)
}

// Weeks returns every scheduled week.
func (s *Service) Weeks(ctx context.Context) ([]int, error) {
	return s.store.ListWeeks(ctx)
}

// SubmitLineup validates and stores a team's weekly lineup.
func (s *Service) SubmitLineup(ctx context.Context, lineup model.LineupSubmission) error {
	if err := lineup.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.store.SubmitLineup(ctx, lineup)
}

// Lineups returns a week's submitted lineups.
func (s *Service) Lineups(ctx context.Context, week int) ([]repository.LineupRow, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week %d", ErrValidation, week)
	}
	return s.store.ListLineups(ctx, week)
}

// Teams returns the league's teams.
func (s *Service) Teams(ctx context.Context) ([]model.Team, error) {
	return s.store.ListTeams(ctx)
}

// Players returns a team's active roster.
func (s *Service) Players(ctx context.Context, teamID int) ([]model.Player, error) {
	return s.store.ListPlayers(ctx, teamID)
}

// Replay returns an archived replay's bytes by digest.
func (s *Service) Replay(ctx context.Context, digest string) ([]byte, error) {
	return s.blobs.Get(ctx, digest)
}

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return errors.New("service not started")
	}
	return s.store.Ping(ctx)
}

// GetStats reports operational counters for the stats endpoint.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": 0,
		"queue_size":   0,
	}
	if s.pool != nil {
		stats["worker_count"] = s.pool.Size()
	}
	if s.queue != nil {
		stats["queue_size"] = s.queue.Len(ctx)
	}
	return stats
}
