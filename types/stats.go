package types

import "time"

// UserStats summarizes the user and submission population.
// The "new", "active" and "recent" counters are computed over the
// trailing WindowDays days.
type UserStats struct {
	TotalUsers        int64 `json:"total_users"`
	VerifiedUsers     int64 `json:"verified_users"`
	NewUsers          int64 `json:"new_users"`
	ActiveUsers       int64 `json:"active_users"`
	TotalSubmissions  int64 `json:"total_submissions"`
	RecentSubmissions int64 `json:"recent_submissions"`
	WindowDays        int   `json:"window_days"`
}

// StatsSnapshot is the document written to object storage by a stats export.
type StatsSnapshot struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	TopRequested []DictionaryEntry `json:"top_requested"`
	UserStats    UserStats         `json:"user_stats"`
}
