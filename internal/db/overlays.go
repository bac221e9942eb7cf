package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// UpsertOverlay stores the overlay for a profile, replacing any previous one.
func (c *Client) UpsertOverlay(ctx context.Context, profileID, source string, o models.Overlay) (*models.StoredOverlay, error) {
	if source == "" {
		source = models.OverlaySourceManual
	}
	results, err := query[[]models.StoredOverlay](ctx, c, `
		UPSERT type::record("overlay", $id) SET
			profile_id = $id,
			source = $source,
			overlay = $overlay,
			updated_at = time::now()
		RETURN AFTER
	`, map[string]any{
		"id":      profileID,
		"source":  source,
		"overlay": o,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert overlay: %w", err)
	}
	stored, ok := first(results)
	if !ok {
		return nil, fmt.Errorf("upsert overlay: no result returned")
	}
	return stored, nil
}

// GetOverlay returns the overlay for a profile or ErrNotFound.
func (c *Client) GetOverlay(ctx context.Context, profileID string) (*models.StoredOverlay, error) {
	results, err := query[[]models.StoredOverlay](ctx, c, `
		SELECT * FROM type::record("overlay", $id)
	`, map[string]any{"id": profileID})
	if err != nil {
		return nil, fmt.Errorf("get overlay: %w", err)
	}
	stored, ok := first(results)
	if !ok {
		return nil, fmt.Errorf("overlay %s: %w", profileID, ErrNotFound)
	}
	return stored, nil
}

// ListOverlays returns every stored overlay ordered by profile id.
func (c *Client) ListOverlays(ctx context.Context) ([]models.StoredOverlay, error) {
	results, err := query[[]models.StoredOverlay](ctx, c, `
		SELECT * FROM overlay ORDER BY profile_id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list overlays: %w", err)
	}
	return rows(results), nil
}

// DeleteOverlay removes the overlay for a profile or returns ErrNotFound.
func (c *Client) DeleteOverlay(ctx context.Context, profileID string) error {
	results, err := query[[]models.StoredOverlay](ctx, c, `
		DELETE type::record("overlay", $id) RETURN BEFORE
	`, map[string]any{"id": profileID})
	if err != nil {
		return fmt.Errorf("delete overlay: %w", err)
	}
	if _, ok := first(results); !ok {
		return fmt.Errorf("overlay %s: %w", profileID, ErrNotFound)
	}
	return nil
}

// UpsertUserContext stores a named user context.
func (c *Client) UpsertUserContext(ctx context.Context, name string, uc models.UserContext) (*models.StoredUserContext, error) {
	results, err := query[[]models.StoredUserContext](ctx, c, `
		UPSERT type::record("user_context", $name) SET
			context = $context,
			updated_at = time::now()
		RETURN AFTER
	`, map[string]any{
		"name":    name,
		"context": uc,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user context: %w", err)
	}
	stored, ok := first(results)
	if !ok {
		return nil, fmt.Errorf("upsert user context: no result returned")
	}
	return stored, nil
}

// GetUserContext returns a named user context or ErrNotFound.
func (c *Client) GetUserContext(ctx context.Context, name string) (*models.StoredUserContext, error) {
	results, err := query[[]models.StoredUserContext](ctx, c, `
		SELECT * FROM type::record("user_context", $name)
	`, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("get user context: %w", err)
	}
	stored, ok := first(results)
	if !ok {
		return nil, fmt.Errorf("user context %s: %w", name, ErrNotFound)
	}
	return stored, nil
}
