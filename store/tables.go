package store

// TableSearchCache is one cached search result. The payload blob excludes all
// cache-timing metadata; the timestamps live only in the row and are
// re-attached on each read. All time columns are UNIX seconds.
type TableSearchCache struct {
	Provider        string  `gorm:"column:provider;primaryKey" json:"provider"`
	ProviderBaseURL string  `gorm:"column:provider_base_url;primaryKey" json:"provider_base_url"`
	Username        string  `gorm:"column:username;primaryKey" json:"username"`
	SchemaVersion   string  `gorm:"column:schema_version;primaryKey" json:"schema_version"`
	OptionsHash     string  `gorm:"column:options_hash;primaryKey" json:"options_hash"`
	PayloadJSON     string  `gorm:"column:payload_json" json:"payload_json"`
	CachedAt        int64   `gorm:"column:cached_at" json:"cached_at"`
	CachedUntil     int64   `gorm:"column:cached_until" json:"cached_until"`
	UpdatedAt       int64   `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

// TableName overrides the gorm naming convention.
func (TableSearchCache) TableName() string { return "cache" }

// TableTopSearch is one leaderboard row. A row never exists with hit = 0.
// The two secondary indexes keep LeaderboardPage off a full scan.
type TableTopSearch struct {
	Provider  string  `gorm:"column:provider;primaryKey;index:idx_topsearch_provider_hit,priority:1;index:idx_topsearch_provider_updated,priority:1" json:"provider"`
	Username  string  `gorm:"column:username;primaryKey" json:"username"`
	Hit       int64   `gorm:"column:hit;not null;index:idx_topsearch_provider_hit,priority:2,sort:desc" json:"hit"`
	AvatarURL *string `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt int64   `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt int64   `gorm:"column:updated_at;autoUpdateTime:false;index:idx_topsearch_provider_updated,priority:2,sort:desc" json:"updated_at"`
}

// TableName overrides the gorm naming convention.
func (TableTopSearch) TableName() string { return "topsearch" }
