// Package service composes the pure analysis packages into the operations
// the CLI, HTTP API and MCP server expose, and owns the mutable state they
// share: the profile registry, enrichment jobs and batch scoring.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/raphaelgruber/circlemap/internal/graph"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/parser"
	"github.com/raphaelgruber/circlemap/internal/profile"
	"github.com/raphaelgruber/circlemap/internal/suggest"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Analysis is everything derived from one transcript.
type Analysis struct {
	Stats       models.TranscriptStats    `json:"stats"`
	Profiles    []models.Profile          `json:"profiles"`
	Edges       []models.RelationshipEdge `json:"edges"`
	Roles       models.NetworkRoles       `json:"roles"`
	Suggestions []models.Suggestion       `json:"suggestions"`

	Transcript models.Transcript `json:"-"`
}

// Samples returns the message texts of a member, oldest first. Media
// placeholders are skipped.
func (a *Analysis) Samples(name string) []string {
	for _, m := range a.Transcript.Members {
		if m.Name != name {
			continue
		}
		out := make([]string, 0, len(m.Messages))
		for _, msg := range m.Messages {
			if !msg.IsMedia {
				out = append(out, msg.Text)
			}
		}
		return out
	}
	return nil
}

// Analyzer runs the full pipeline over a transcript.
type Analyzer struct {
	vocab   *vocab.Vocabulary
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil vocabulary uses the default; mc and
// logger may be nil.
func NewAnalyzer(v *vocab.Vocabulary, mc *metrics.Collector, logger *slog.Logger) *Analyzer {
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{vocab: v, metrics: mc, logger: logger}
}

// Vocabulary returns the tables the analyzer runs with.
func (a *Analyzer) Vocabulary() *vocab.Vocabulary {
	return a.vocab
}

// Analyze parses text and derives profiles, the relationship graph, network
// roles and meetup suggestions. It only fails when ctx is done.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	start := time.Now()
	out := &Analysis{}

	stages := []struct {
		op  string
		run func()
	}{
		{metrics.OpParse, func() { out.Transcript = parser.New(a.vocab).Parse(text) }},
		{metrics.OpProfile, func() { out.Profiles = profile.Build(out.Transcript, a.vocab) }},
		{metrics.OpGraph, func() {
			out.Edges = graph.Build(out.Transcript, a.vocab)
			out.Roles = graph.Analyze(out.Profiles)
		}},
		{metrics.OpSuggest, func() { out.Suggestions = suggest.Generate(out.Profiles, a.vocab) }},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stop := a.metrics.Time(stage.op)
		stage.run()
		stop()
	}
	out.Stats = out.Transcript.Stats

	a.logger.Info("transcript analyzed",
		"messages", out.Stats.TotalMessages,
		"members", out.Stats.TotalMembers,
		"edges", len(out.Edges),
		"suggestions", len(out.Suggestions),
		"duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
