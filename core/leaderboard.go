package langboard

import (
	"github.com/langboard/langboard/schemas"
	"github.com/langboard/langboard/store"
)

// Leaderboard exposes the search-count table: recording hits after
// successful searches and serving the paginated top-N. It is not allowed to
// fail a request — store failures degrade to a log line or an empty page.
type Leaderboard struct {
	store  store.Store
	logger schemas.Logger
}

// NewLeaderboard creates a leaderboard over the given store.
func NewLeaderboard(s store.Store, logger schemas.Logger) *Leaderboard {
	return &Leaderboard{store: s, logger: logger}
}

// LeaderboardEntry is one row of the top-N response, with timestamps already
// converted to ISO-8601 UTC.
type LeaderboardEntry struct {
	Provider  string  `json:"provider"`
	Username  string  `json:"username"`
	Hit       int64   `json:"hit"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Record normalizes the handle and bumps its hit counter. It never fails and
// never blocks the response: upsert errors and panics are logged only.
func (l *Leaderboard) Record(provider schemas.Provider, handle, avatarURL string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("leaderboard: record panicked for %s: %v", handle, r)
		}
	}()
	username := schemas.NormalizeHandle(handle)
	if err := l.store.LeaderboardUpsert(provider, username, avatarURL); err != nil {
		l.logger.Warn("leaderboard: failed to record search for %s: %v", username, err)
	}
}

// Top returns one page of most-searched handles plus the total count for the
// provider. A store read failure yields an empty page with total 0 rather
// than an error.
func (l *Leaderboard) Top(provider schemas.Provider, limit, offset int) ([]LeaderboardEntry, int64) {
	rows, total, err := l.store.LeaderboardPage(provider, limit, offset)
	if err != nil {
		l.logger.Warn("leaderboard: failed to read page: %v", err)
		return []LeaderboardEntry{}, 0
	}
	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Provider:  row.Provider,
			Username:  row.Username,
			Hit:       row.Hit,
			AvatarURL: row.AvatarURL,
			CreatedAt: schemas.FormatEpochSeconds(row.CreatedAt),
			UpdatedAt: schemas.FormatEpochSeconds(row.UpdatedAt),
		}
	}
	return entries, total
}
