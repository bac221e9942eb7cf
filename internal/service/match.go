package service

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/circlemap/internal/match"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

const defaultPageSize = 64

// MatchOptions tunes batch scoring.
type MatchOptions struct {
	// MinScore drops pairs scoring below it. Pairs with nothing in common
	// are always dropped.
	MinScore int
	// PageSize is the number of pairs one worker scores between context
	// checks. Zero uses a default.
	PageSize int
	// Limit caps the number of results. Zero means no cap.
	Limit int
}

// MatchService runs the O(n²) scorers over a roster with a bounded worker
// pool.
type MatchService struct {
	engine      *match.Engine
	vocab       *vocab.Vocabulary
	metrics     *metrics.Collector
	concurrency int
	logger      *slog.Logger
}

// NewMatchService creates a match service. concurrency <= 0 uses GOMAXPROCS.
func NewMatchService(engine *match.Engine, v *vocab.Vocabulary, mc *metrics.Collector, concurrency int) *MatchService {
	if v == nil {
		v = vocab.Default()
	}
	if engine == nil {
		engine = match.NewEngine(v)
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &MatchService{
		engine:      engine,
		vocab:       v,
		metrics:     mc,
		concurrency: concurrency,
		logger:      slog.Default(),
	}
}

// Engine returns the serendipity engine.
func (s *MatchService) Engine() *match.Engine {
	return s.engine
}

// Pair scores two deep profiles.
func (s *MatchService) Pair(a, b models.DeepProfile) models.MatchResult {
	defer s.metrics.Time(metrics.OpSerendipity)()
	return s.engine.FindSerendipity(&a, &b)
}

type pair struct{ i, j int }

// pages splits all unordered pairs of n items into chunks of size.
func pages(n, size int) [][]pair {
	if size <= 0 {
		size = defaultPageSize
	}
	var out [][]pair
	var cur []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cur = append(cur, pair{i, j})
			if len(cur) == size {
				out = append(out, cur)
				cur = nil
			}
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// scorePages runs score over every pair page by page with at most
// s.concurrency pages in flight. Results keep pair order. The context is
// checked before each pair.
func scorePages[T any](ctx context.Context, s *MatchService, pp [][]pair, score func(p pair) (T, bool)) ([]T, error) {
	perPage := make([][]T, len(pp))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for idx, page := range pp {
		g.Go(func() error {
			for _, p := range page {
				if err := gctx.Err(); err != nil {
					return err
				}
				if r, ok := score(p); ok {
					perPage[idx] = append(perPage[idx], r)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []T{}
	for _, rs := range perPage {
		out = append(out, rs...)
	}
	return out, nil
}

// ScoreAll scores every pair in roster and returns the matches, best first.
// Ties keep roster order.
func (s *MatchService) ScoreAll(ctx context.Context, roster []models.DeepProfile, opts MatchOptions) ([]models.MatchResult, error) {
	defer s.metrics.Time(metrics.OpSerendipity)()

	pp := pages(len(roster), opts.PageSize)
	out, err := scorePages(ctx, s, pp, func(p pair) (models.MatchResult, bool) {
		r := s.engine.FindSerendipity(&roster[p.i], &roster[p.j])
		return r, len(r.Connections) > 0 && r.SerendipityScore >= opts.MinScore
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SerendipityScore > out[j].SerendipityScore
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}

	s.logger.Debug("roster scored", "profiles", len(roster), "pages", len(pp), "matches", len(out))
	return out, nil
}

// Opportunities ranks roster members for the user.
func (s *MatchService) Opportunities(ctx context.Context, user models.UserContext, roster []models.DeepProfile, maxResults int) ([]models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.metrics.Time(metrics.OpOpportunity)()
	return match.DetectOpportunities(user, roster, maxResults, s.vocab), nil
}

// CrossConnections scores every pair of contacts, best first.
func (s *MatchService) CrossConnections(ctx context.Context, contacts []models.Contact) ([]models.CrossConnection, error) {
	defer s.metrics.Time(metrics.OpCrossConnect)()

	out, err := scorePages(ctx, s, pages(len(contacts), 0), func(p pair) (models.CrossConnection, bool) {
		return match.CrossConnect(&contacts[p.i], &contacts[p.j], s.vocab)
	})
	if err != nil {
		return nil, err
	}
	match.SortCrossConnections(out)
	return out, nil
}
