package dto

import "time"

// Provider constants
const (
	ProviderGoogle = "google"
)

// ========== Sync DTOs ==========

// SyncResult is the outcome of one sync run, returned to every trigger
// (manual route, scheduled job, webhook handler).
type SyncResult struct {
	Success     bool     `json:"success"`
	Pushed      int      `json:"pushed"`
	Pulled      int      `json:"pulled"`
	Deleted     int      `json:"deleted"`
	Errors      []string `json:"errors"`
	NeedsReauth bool     `json:"needs_reauth,omitempty"`
}

// SyncStatusResponse describes the connection state shown on the calendar
// status screen.
type SyncStatusResponse struct {
	Connected    bool           `json:"connected"`
	Provider     string         `json:"provider,omitempty"`
	CalendarName string         `json:"calendar_name,omitempty"`
	AccountEmail string         `json:"account_email,omitempty"`
	SyncEnabled  bool           `json:"sync_enabled"`
	NeedsReauth  bool           `json:"needs_reauth"`
	LastSyncedAt *time.Time     `json:"last_synced_at,omitempty"`
	RecentRuns   []SyncLogEntry `json:"recent_runs,omitempty"`
}

type SyncLogEntry struct {
	RunID   string    `json:"run_id"`
	RanAt   time.Time `json:"ran_at"`
	Pushed  int       `json:"pushed"`
	Pulled  int       `json:"pulled"`
	Deleted int       `json:"deleted"`
	Errors  []string  `json:"errors,omitempty"`
}

// ========== Event DTOs ==========

type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   string  `json:"start_time" validate:"required"` // RFC3339
	EndTime     *string `json:"end_time,omitempty"`             // RFC3339
	AllDay      bool    `json:"all_day"`
	Category    string  `json:"category"`
	Color       *string `json:"color,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	AllDay      *bool   `json:"all_day,omitempty"`
	Category    *string `json:"category,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ========== Token DTOs ==========

// TokenSet is what the token service hands to the provider client: a
// credential guaranteed fresh for at least the refresh buffer, unless the
// expiry is unknown.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string
}
