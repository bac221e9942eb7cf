package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
)

// maxSample caps how many messages go into one prompt.
const maxSample = 40

const enrichSystemPrompt = `You profile members of a community group chat so an organizer can introduce people to each other.
Reply with ONE JSON object and nothing else. Use only these keys, and omit any you cannot support from the messages:
  role, company, industry, location (strings)
  expertise, lookingFor, offering, interests (arrays of short phrases)
  current: {role, company, location, lifeStage, mode}
  experiences: {struggles, achievements, transformations}
  scenes: {communities, venues, events}
  deepInterests: {obsessions: [{topic, depth}], creates}
depth is one of "interested", "deep", "obsessed".
Never invent facts that are not stated or strongly implied.`

// Enricher turns a member's messages into an overlay by asking a model.
type Enricher struct {
	gen      Generator
	cache    Cacher
	cacheTTL time.Duration
	metrics  *metrics.Collector
	logger   *slog.Logger
	attempts uint
	delay    time.Duration
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithCache stores replies in c for ttl.
func WithCache(c Cacher, ttl time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithMetrics records call timings and token usage.
func WithMetrics(mc *metrics.Collector) EnricherOption {
	return func(e *Enricher) { e.metrics = mc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EnricherOption {
	return func(e *Enricher) { e.logger = l }
}

// WithRetry sets the attempt count and the base delay between attempts.
func WithRetry(attempts uint, delay time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.attempts = max(attempts, 1)
		e.delay = delay
	}
}

// NewEnricher creates an enricher over gen.
func NewEnricher(gen Generator, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		gen:      gen,
		logger:   slog.Default(),
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich asks the model about p and returns the resulting overlay. sample
// holds message texts; the most recent ones are used. The overlay is always
// tagged with the "llm" source.
func (e *Enricher) Enrich(ctx context.Context, p models.Profile, sample []string) (models.Overlay, error) {
	user := enrichPrompt(p, sample)

	var raw []byte
	var err error
	if e.cache != nil {
		key := cacheKey(e.gen.Model(), enrichSystemPrompt, user)
		raw, err = e.cache.GetSet(ctx, key, func(ctx context.Context) ([]byte, error) {
			return e.generate(ctx, p.DisplayName, user)
		}, e.cacheTTL)
	} else {
		raw, err = e.generate(ctx, p.DisplayName, user)
	}
	if err != nil {
		return models.Overlay{}, fmt.Errorf("enrich %s: %w", p.DisplayName, err)
	}

	overlay, err := deep.ParseOverlay(raw)
	if err != nil {
		return models.Overlay{}, fmt.Errorf("enrich %s: %w", p.DisplayName, err)
	}
	if overlay.Name == "" {
		overlay.Name = p.DisplayName
	}
	if !containsFold(overlay.Sources, models.OverlaySourceLLM) {
		overlay.Sources = append(overlay.Sources, models.OverlaySourceLLM)
	}
	return overlay, nil
}

// generate calls the model with retries and returns the reply's JSON object.
// Replies that do not decode as an overlay count as failures so they are
// never cached.
func (e *Enricher) generate(ctx context.Context, name, user string) ([]byte, error) {
	var lastErr error

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.Delay(e.delay),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, ErrFatalAPI) }),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Debug("retrying enrichment", "member", name, "attempt", n+1, "error", err)
		}),
	}
	if jitter := e.delay / 2; jitter > 0 {
		opts = append(opts, retry.MaxJitter(jitter))
	}

	reply, err := retry.DoWithData(
		func() ([]byte, error) {
			start := time.Now()
			c, err := e.gen.Complete(ctx, enrichSystemPrompt, user)
			if err != nil {
				lastErr = err
				return nil, err
			}
			e.metrics.RecordLLMUsage(metrics.OpLLMEnrich, time.Since(start), c.InputTokens, c.OutputTokens)

			obj := extractJSON(c.Text)
			if _, err := deep.ParseOverlay(obj); err != nil {
				lastErr = err
				return nil, err
			}
			return obj, nil
		},
		opts...,
	)
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return reply, nil
}

func enrichPrompt(p models.Profile, sample []string) string {
	if len(sample) > maxSample {
		sample = sample[len(sample)-maxSample:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Member: %s\n", p.DisplayName)
	if p.Location.Primary != "" {
		fmt.Fprintf(&b, "Mentions city: %s\n", p.Location.Primary)
	}
	if cats := p.InterestCategories(); len(cats) > 0 {
		fmt.Fprintf(&b, "Keyword interests: %s\n", strings.Join(cats, ", "))
	}
	fmt.Fprintf(&b, "Activity: %s (%d messages)\n\nMessages:\n", p.ActivityLevel, p.MessageCount)
	for _, msg := range sample {
		fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(strings.TrimSpace(msg), "\n", " "))
	}
	return b.String()
}

// extractJSON returns the outermost {...} span of a reply, dropping code
// fences and chatter around it. Replies without braces come back trimmed.
func extractJSON(s string) []byte {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return bytes.TrimSpace([]byte(s))
	}
	return []byte(s[start : end+1])
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
