package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// EnrichJob is a persisted enrichment run.
type EnrichJob struct {
	ID          surrealmodels.RecordID `json:"id"`
	Status      string                 `json:"status"`
	Name        *string                `json:"name,omitempty"`
	ProfileIDs  []string               `json:"profile_ids"`
	Total       int                    `json:"total"`
	Progress    int                    `json:"progress"`
	Result      map[string]any         `json:"result,omitempty"`
	Error       *string                `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// StoredOverlay is an overlay persisted in contact memory.
type StoredOverlay struct {
	ID        surrealmodels.RecordID `json:"id"`
	ProfileID string                 `json:"profile_id"`
	Source    string                 `json:"source"` // "llm" | "note" | "manual"
	Overlay   Overlay                `json:"overlay"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// StoredUserContext is a user context persisted in contact memory.
type StoredUserContext struct {
	ID        surrealmodels.RecordID `json:"id"`
	Context   UserContext            `json:"context"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Overlay sources.
const (
	OverlaySourceLLM    = "llm"
	OverlaySourceNote   = "note"
	OverlaySourceManual = "manual"
)
