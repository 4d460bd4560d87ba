package match

import (
	"context"
	"fmt"
	"time"

	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/pkg/metrics"
)

// Replays may be uploaded a week late but never early.
const defaultLookbackWeeks = 1

// CandidateProvider lists scheduled sets for an inclusive week window,
// ordered by (week, match, set) ascending so first-match tie-breaks are
// deterministic.
type CandidateProvider interface {
	ListScheduledSets(ctx context.Context, weekMin, weekMax int) ([]model.ScheduledSet, error)
}

// Item is one replay in a resolve batch: the upload's display name plus
// either extracted metadata or the extraction error.
type Item struct {
	Name     string
	Metadata model.ReplayMetadata
	Digest   string
	Err      error
}

// Suggestion is the resolver's verdict for one item, in input position.
// Candidate is nil when extraction failed or nothing matched.
type Suggestion struct {
	Name      string
	Digest    string
	Candidate *model.ScheduledSet
	Err       error
}

// BatchResolver applies a Matcher across an upload batch.
type BatchResolver struct {
	matcher  Matcher
	lookback int
}

// NewBatchResolver builds a resolver. Defaults: exact rule matcher, one week
// of lookback.
func NewBatchResolver(opts ...Option) *BatchResolver {
	r := &BatchResolver{
		matcher:  NewRuleMatcher(),
		lookback: defaultLookbackWeeks,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns one suggestion per item, same length and order as the
// input. Items carrying an extraction error pass through unmatched; a store
// failure aborts the whole batch since no item could be judged.
func (r *BatchResolver) Resolve(ctx context.Context, provider CandidateProvider, items []Item, targetWeek int) ([]Suggestion, error) {
	if targetWeek < 1 {
		return nil, fmt.Errorf("%w: week %d", ErrInvalidWeek, targetWeek)
	}

	start := time.Now()
	defer func() {
		metrics.RecordResolveLatency(float64(time.Since(start).Milliseconds()))
	}()

	weekMin := targetWeek - r.lookback
	if weekMin < 1 {
		weekMin = 1
	}
	candidates, err := provider.ListScheduledSets(ctx, weekMin, targetWeek)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListCandidates, err)
	}

	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		s := Suggestion{Name: item.Name, Digest: item.Digest, Err: item.Err}
		if item.Err == nil {
			s.Candidate = r.firstMatch(item.Metadata, candidates)
		}
		if s.Candidate != nil {
			metrics.RecordSuggestionMatched()
		} else {
			metrics.RecordSuggestionUnmatched()
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *BatchResolver) firstMatch(md model.ReplayMetadata, candidates []model.ScheduledSet) *model.ScheduledSet {
	for i := range candidates {
		if r.matcher.Matches(md, candidates[i]) {
			c := candidates[i]
			return &c
		}
	}
	return nil
}
