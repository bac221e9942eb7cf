package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// CreateEnrichJob persists a new pending enrichment job.
func (c *Client) CreateEnrichJob(ctx context.Context, id, name string, profileIDs []string) error {
	if profileIDs == nil {
		profileIDs = []string{}
	}
	var namePtr *string
	if name != "" {
		namePtr = &name
	}
	_, err := query[any](ctx, c, `
		CREATE type::record("enrich_job", $id) SET
			status = "pending",
			name = $name,
			profile_ids = $profile_ids,
			total = $total,
			progress = 0,
			started_at = time::now()
	`, map[string]any{
		"id":          id,
		"name":        namePtr,
		"profile_ids": profileIDs,
		"total":       len(profileIDs),
	})
	if err != nil {
		return fmt.Errorf("create enrich job: %w", err)
	}
	return nil
}

// UpdateJobProgress records how many profiles a job has finished.
func (c *Client) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := query[any](ctx, c, `
		UPDATE type::record("enrich_job", $id) SET progress = $progress, status = "running"
	`, map[string]any{"id": id, "progress": progress})
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// UpdateJobStatus sets a job's status.
func (c *Client) UpdateJobStatus(ctx context.Context, id, status string) error {
	_, err := query[any](ctx, c, `
		UPDATE type::record("enrich_job", $id) SET status = $status
	`, map[string]any{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// CompleteJob marks a job completed and stores its result summary.
func (c *Client) CompleteJob(ctx context.Context, id string, result map[string]any) error {
	_, err := query[any](ctx, c, `
		UPDATE type::record("enrich_job", $id) SET
			status = "completed",
			progress = total,
			result = $result,
			completed_at = time::now()
	`, map[string]any{"id": id, "result": result})
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// FailJob marks a job failed.
func (c *Client) FailJob(ctx context.Context, id, message string) error {
	_, err := query[any](ctx, c, `
		UPDATE type::record("enrich_job", $id) SET
			status = "failed",
			error = $error,
			completed_at = time::now()
	`, map[string]any{"id": id, "error": message})
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// GetEnrichJob returns a job or ErrNotFound.
func (c *Client) GetEnrichJob(ctx context.Context, id string) (*models.EnrichJob, error) {
	results, err := query[[]models.EnrichJob](ctx, c, `
		SELECT * FROM type::record("enrich_job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get enrich job: %w", err)
	}
	job, ok := first(results)
	if !ok {
		return nil, fmt.Errorf("enrich job %s: %w", id, ErrNotFound)
	}
	return job, nil
}

// ListEnrichJobs returns the most recent jobs first. limit <= 0 means 50.
func (c *Client) ListEnrichJobs(ctx context.Context, limit int) ([]models.EnrichJob, error) {
	if limit <= 0 {
		limit = 50
	}
	results, err := query[[]models.EnrichJob](ctx, c, `
		SELECT * FROM enrich_job ORDER BY started_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list enrich jobs: %w", err)
	}
	return rows(results), nil
}

// GetIncompleteJobs returns pending and running jobs, oldest first.
func (c *Client) GetIncompleteJobs(ctx context.Context) ([]models.EnrichJob, error) {
	results, err := query[[]models.EnrichJob](ctx, c, `
		SELECT * FROM enrich_job WHERE status IN ["pending", "running"] ORDER BY started_at ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("get incomplete jobs: %w", err)
	}
	return rows(results), nil
}
