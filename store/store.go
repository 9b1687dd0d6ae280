// Package store provides the embedded persistent storage for langboard: the
// search result cache and the most-searched-handles leaderboard, both backed
// by a single SQLite database.
package store

import (
	"time"

	"github.com/langboard/langboard/schemas"
)

// CacheKey is the composite key addressing one cache row. All lookups and
// writes normalize Username and ProviderBaseURL first, so callers may pass
// raw values.
type CacheKey struct {
	Provider        schemas.Provider
	ProviderBaseURL string
	Username        string
	SchemaVersion   string
	OptionsHash     string
}

// Normalized returns the key with Username lowercased/trimmed and the base
// URL stripped of trailing slashes.
func (k CacheKey) Normalized() CacheKey {
	k.Username = schemas.NormalizeHandle(k.Username)
	k.ProviderBaseURL = schemas.NormalizeBaseURL(k.ProviderBaseURL)
	return k
}

// String renders the normalized key as a single flat string. The search core
// uses it to address the single-flight map.
func (k CacheKey) String() string {
	n := k.Normalized()
	return string(n.Provider) + "|" + n.ProviderBaseURL + "|" + n.Username + "|" + n.SchemaVersion + "|" + n.OptionsHash
}

// Store is the persistence contract the search core and the leaderboard
// depend on. Every operation is fallible; read failures degrade to a miss and
// write failures must never fail a successful search.
type Store interface {
	// CacheGet returns the row for the key whether or not it is still
	// fresh. The caller checks CachedUntil. The second return is false on
	// a miss or a read failure.
	CacheGet(key CacheKey) (*TableSearchCache, bool)

	// CacheUpsert writes the payload under the key, stamping
	// cachedAt = now, cachedUntil = now + TTL, updatedAt = now with the
	// store's own clock, and returns the stored row.
	CacheUpsert(key CacheKey, payloadJSON string) (*TableSearchCache, error)

	// LeaderboardUpsert atomically increments the hit counter for the
	// handle, inserting it with hit = 1 when absent. The avatar URL is
	// overwritten only when non-empty.
	LeaderboardUpsert(provider schemas.Provider, handle string, avatarURL string) error

	// LeaderboardPage returns one page ordered by
	// hit DESC, updated_at DESC, username ASC, plus the total row count
	// for the provider.
	LeaderboardPage(provider schemas.Provider, limit, offset int) ([]TableTopSearch, int64, error)

	// Close releases the underlying database handle.
	Close() error
}

// Config configures the SQLite store.
type Config struct {
	// Path is the database file path, or ":memory:" for an in-memory
	// database.
	Path string
	// TTL is the cache entry lifetime applied on every CacheUpsert.
	TTL time.Duration
	// Logger receives swallowed read/write failures.
	Logger schemas.Logger
}
