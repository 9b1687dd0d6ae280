package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/langboard/langboard/schemas"
)

// SQLiteStore implements Store on a single SQLite database via gorm. SQLite
// is a single-writer engine; gorm serializes writes on the shared handle
// while reads run in parallel.
type SQLiteStore struct {
	db     *gorm.DB
	ttl    time.Duration
	logger schemas.Logger
	clock  func() int64
}

// NewSQLiteStore opens (or creates) the database at config.Path and runs the
// idempotent schema migration for the cache and topsearch tables.
func NewSQLiteStore(config Config) (*SQLiteStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store: database path is required")
	}
	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database at %s: %w", config.Path, err)
	}
	if err := db.AutoMigrate(&TableSearchCache{}, &TableTopSearch{}); err != nil {
		return nil, fmt.Errorf("store: failed to migrate schema: %w", err)
	}
	return &SQLiteStore{
		db:     db,
		ttl:    config.TTL,
		logger: config.Logger,
		clock:  func() int64 { return time.Now().Unix() },
	}, nil
}

// CacheGet looks up the row for the normalized key. Stale rows are returned
// too; freshness is the caller's decision. A read failure is logged and
// reported as a miss so the core can fall through to the upstream.
func (s *SQLiteStore) CacheGet(key CacheKey) (*TableSearchCache, bool) {
	n := key.Normalized()
	var row TableSearchCache
	err := s.db.Where(
		"provider = ? AND provider_base_url = ? AND username = ? AND schema_version = ? AND options_hash = ?",
		string(n.Provider), n.ProviderBaseURL, n.Username, n.SchemaVersion, n.OptionsHash,
	).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("store: cache read failed for %s: %v", n.Username, err)
		}
		return nil, false
	}
	return &row, true
}

// CacheUpsert writes the payload under the normalized key in a single atomic
// statement and returns the stored row, so the caller needs no second read.
// The store stamps its own clock: cachedUntil = cachedAt + TTL.
func (s *SQLiteStore) CacheUpsert(key CacheKey, payloadJSON string) (*TableSearchCache, error) {
	n := key.Normalized()
	now := s.clock()
	row := TableSearchCache{
		Provider:        string(n.Provider),
		ProviderBaseURL: n.ProviderBaseURL,
		Username:        n.Username,
		SchemaVersion:   n.SchemaVersion,
		OptionsHash:     n.OptionsHash,
		PayloadJSON:     payloadJSON,
		CachedAt:        now,
		CachedUntil:     now + int64(s.ttl/time.Second),
		UpdatedAt:       now,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"}, {Name: "provider_base_url"}, {Name: "username"},
			{Name: "schema_version"}, {Name: "options_hash"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload_json": payloadJSON,
			"cached_at":    now,
			"cached_until": row.CachedUntil,
			"updated_at":   now,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("store: cache upsert failed for %s: %w", n.Username, err)
	}
	return &row, nil
}

// LeaderboardUpsert increments the hit counter for the handle in one atomic
// upsert. The avatar URL is overwritten only when the new value is non-empty;
// created_at is preserved on existing rows.
func (s *SQLiteStore) LeaderboardUpsert(provider schemas.Provider, handle string, avatarURL string) error {
	username := schemas.NormalizeHandle(handle)
	now := s.clock()
	row := TableTopSearch{
		Provider:  string(provider),
		Username:  username,
		Hit:       1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if avatarURL != "" {
		row.AvatarURL = &avatarURL
	}
	assignments := map[string]interface{}{
		"hit":        gorm.Expr("hit + 1"),
		"updated_at": now,
	}
	if avatarURL != "" {
		assignments["avatar_url"] = avatarURL
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "username"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store: leaderboard upsert failed for %s: %w", username, err)
	}
	return nil
}

// LeaderboardPage returns one page of leaderboard rows plus the total count
// for the provider. The username tiebreaker is stated explicitly so the
// ordering is deterministic across engines.
func (s *SQLiteStore) LeaderboardPage(provider schemas.Provider, limit, offset int) ([]TableTopSearch, int64, error) {
	var total int64
	if err := s.db.Model(&TableTopSearch{}).Where("provider = ?", string(provider)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("store: leaderboard count failed: %w", err)
	}
	var rows []TableTopSearch
	err := s.db.Where("provider = ?", string(provider)).
		Order("hit DESC, updated_at DESC, username ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("store: leaderboard page failed: %w", err)
	}
	return rows, total, nil
}

// Close releases the underlying sql.DB handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
