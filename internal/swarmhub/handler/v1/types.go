package v1

import (
	"time"

	"github.com/kiosk404/swarmscope/internal/swarm/entity"
)

// CreateRunResponse is returned by POST /v1/runs.
type CreateRunResponse struct {
	ID              string           `json:"id"`
	Status          entity.RunStatus `json:"status"`
	EventCount      int              `json:"event_count"`
	Handoffs        int              `json:"handoffs"`
	RequirementsMet bool             `json:"requirements_met"`
	Missing         []string         `json:"missing,omitempty"`
}

// RunSummary is one entry of GET /v1/runs.
type RunSummary struct {
	ID              string           `json:"id"`
	Source          string           `json:"source"`
	Status          entity.RunStatus `json:"status"`
	EventCount      int              `json:"event_count"`
	Handoffs        int              `json:"handoffs"`
	RequirementsMet bool             `json:"requirements_met"`
	CreatedAt       string           `json:"created_at"`
}

// ListRunsResponse is returned by GET /v1/runs.
type ListRunsResponse struct {
	Data  []RunSummary `json:"data"`
	Total int          `json:"total"`
}

// FormatTime formats t in RFC 3339 with the local zone.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toRunSummary(r *entity.Run) RunSummary {
	return RunSummary{
		ID:              r.ID,
		Source:          r.Source,
		Status:          r.Status,
		EventCount:      r.EventCount,
		Handoffs:        len(r.Handoffs),
		RequirementsMet: r.RequirementsMet(),
		CreatedAt:       FormatTime(r.CreatedAt),
	}
}
