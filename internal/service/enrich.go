package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/raphaelgruber/circlemap/internal/llm"
	"github.com/raphaelgruber/circlemap/internal/models"
)

// JobTypeEnrich is the type of enrichment jobs.
const JobTypeEnrich = "enrich"

// ErrNoProfiles is returned when an enrichment run has nothing to do.
var ErrNoProfiles = errors.New("no profiles loaded")

// ErrUnknownProfile is returned for profile IDs that are not in the registry.
var ErrUnknownProfile = errors.New("unknown profile")

// ProfileEnricher produces an overlay for a profile from its messages.
// *llm.Enricher implements it.
type ProfileEnricher interface {
	Enrich(ctx context.Context, p models.Profile, sample []string) (models.Overlay, error)
}

// OverlayStore persists overlays. *db.Client implements it.
type OverlayStore interface {
	UpsertOverlay(ctx context.Context, profileID, source string, o models.Overlay) (*models.StoredOverlay, error)
}

// EnrichService runs LLM enrichment over registry profiles as background
// jobs.
type EnrichService struct {
	enricher ProfileEnricher
	registry *Registry
	store    OverlayStore
	jobs     *JobManager
	logger   *slog.Logger
}

// NewEnrichService creates an enrichment service. store may be nil, in which
// case overlays only live in the registry.
func NewEnrichService(enricher ProfileEnricher, registry *Registry, store OverlayStore, jobs *JobManager, logger *slog.Logger) *EnrichService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichService{
		enricher: enricher,
		registry: registry,
		store:    store,
		jobs:     jobs,
		logger:   logger,
	}
}

// Start validates ids, creates a job and enriches in the background. An
// empty ids list enriches every loaded profile. The returned job can be
// followed with JobManager.Get or Subscribe.
func (s *EnrichService) Start(ctx context.Context, name string, ids []string) (Job, error) {
	targets, err := s.resolve(ids)
	if err != nil {
		return Job{}, err
	}

	profileIDs := make([]string, len(targets))
	for i, p := range targets {
		profileIDs[i] = p.ID
	}
	job, err := s.jobs.CreateJob(ctx, JobTypeEnrich, name, profileIDs)
	if err != nil {
		return Job{}, err
	}

	// The job outlives the request that started it.
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		result, err := s.Run(bgCtx, job, targets)
		if err != nil {
			s.jobs.Fail(bgCtx, job, err)
			return
		}
		s.jobs.Complete(bgCtx, job, result)
	}()

	return job.Snapshot(), nil
}

// resolve maps ids to registry profiles.
func (s *EnrichService) resolve(ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		all := s.registry.Snapshot()
		if len(all) == 0 {
			return nil, ErrNoProfiles
		}
		return all, nil
	}

	out := make([]models.Profile, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := s.registry.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, strings.Join(missing, ", "))
	}
	return out, nil
}

// Run enriches targets with a pool of workers, reporting progress on job.
// Per-profile failures are collected in the result. A fatal provider error
// (bad credentials, exhausted quota) stops the run and is returned.
func (s *EnrichService) Run(ctx context.Context, job *Job, targets []models.Profile) (*EnrichResult, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.jobs.SetRunning(ctx, job)

	var (
		processed atomic.Int32
		enriched  atomic.Int32
		errorsMu  sync.Mutex
		failures  []string
	)

	workChan := make(chan models.Profile, len(targets))
	var wg sync.WaitGroup

	for i := 0; i < s.jobs.Concurrency(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for p := range workChan {
				if ctx.Err() != nil {
					return
				}

				err := s.enrichOne(ctx, p)
				current := processed.Add(1)
				s.logger.Debug("enriched profile", "worker", workerID, "profile", p.ID,
					"progress", fmt.Sprintf("%d/%d", current, len(targets)), "error", err)

				if err != nil {
					if errors.Is(err, llm.ErrFatalAPI) {
						cancel(err)
						return
					}
					errorsMu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", p.ID, err))
					errorsMu.Unlock()
				} else {
					enriched.Add(1)
				}
				s.jobs.UpdateProgress(ctx, job, int(current))
			}
		}(i)
	}

	for _, p := range targets {
		workChan <- p
	}
	close(workChan)
	wg.Wait()

	if cause := context.Cause(ctx); cause != nil {
		return nil, cause
	}

	return &EnrichResult{
		Enriched: int(enriched.Load()),
		Failed:   len(failures),
		Errors:   failures,
	}, nil
}

func (s *EnrichService) enrichOne(ctx context.Context, p models.Profile) error {
	fresh, err := s.enricher.Enrich(ctx, p, s.registry.Samples(p.ID))
	if err != nil {
		return err
	}

	merged := fresh
	if existing, ok := s.registry.Overlay(p.ID); ok {
		merged = mergeOverlay(existing, fresh)
	}
	s.registry.SetOverlay(p.ID, merged)

	if s.store != nil {
		if _, err := s.store.UpsertOverlay(ctx, p.ID, models.OverlaySourceLLM, merged); err != nil {
			return fmt.Errorf("store overlay: %w", err)
		}
	}
	return nil
}

// mergeOverlay layers fresh under existing: values already set (often by
// hand) are kept, lists are unioned and missing sections are filled in.
func mergeOverlay(existing, fresh models.Overlay) models.Overlay {
	out := existing

	fillEmpty(&out.Name, fresh.Name)
	fillEmpty(&out.Role, fresh.Role)
	fillEmpty(&out.Company, fresh.Company)
	fillEmpty(&out.Industry, fresh.Industry)
	fillEmpty(&out.Location, fresh.Location)
	fillEmpty(&out.LinkedInURL, fresh.LinkedInURL)

	out.Expertise = union(out.Expertise, fresh.Expertise)
	out.LookingFor = union(out.LookingFor, fresh.LookingFor)
	out.Offering = union(out.Offering, fresh.Offering)
	out.Interests = union(out.Interests, fresh.Interests)
	out.Affinities = union(out.Affinities, fresh.Affinities)
	out.Sources = union(out.Sources, fresh.Sources)

	out.Verified = out.Verified || fresh.Verified
	out.LinkedInVerified = out.LinkedInVerified || fresh.LinkedInVerified
	out.IdentityConfirmed = out.IdentityConfirmed || fresh.IdentityConfirmed
	out.PhotoMatched = out.PhotoMatched || fresh.PhotoMatched
	out.MutualConfirmed = out.MutualConfirmed || fresh.MutualConfirmed
	out.RecentlyActive = out.RecentlyActive || fresh.RecentlyActive

	if out.Timeline == nil {
		out.Timeline = fresh.Timeline
	}
	if out.Current == nil {
		out.Current = fresh.Current
	}
	if out.Experiences == nil {
		out.Experiences = fresh.Experiences
	}
	if out.Scenes == nil {
		out.Scenes = fresh.Scenes
	}
	if out.DeepInterests == nil {
		out.DeepInterests = fresh.DeepInterests
	}
	if out.Relationships == nil {
		out.Relationships = fresh.Relationships
	}
	if out.Values == nil {
		out.Values = fresh.Values
	}
	return out
}

func fillEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// union appends the items of add missing from list, comparing
// case-insensitively. list is not modified.
func union(list, add []string) []string {
	out := append([]string(nil), list...)
	seen := make(map[string]bool, len(list)+len(add))
	for _, v := range list {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range add {
		if k := strings.ToLower(v); !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}
