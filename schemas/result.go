package schemas

import (
	"sort"
	"strings"
)

// ResultUnit is the unit of the language series values.
const ResultUnit = "repos"

// ResultMetadata carries the timing metadata attached to every search result.
// CachedAt/CachedUntil are present only when the result was served from or
// written to the cache. All values are ISO-8601 UTC.
type ResultMetadata struct {
	GeneratedAt string  `json:"generatedAt"`
	Unit        string  `json:"unit"`
	CachedAt    *string `json:"cachedAt,omitempty"`
	CachedUntil *string `json:"cachedUntil,omitempty"`
}

// SearchResult is the aggregated answer for one handle: profile metadata plus
// the ordered language series. The cached payload blob is exactly this shape
// with the cache timestamps stripped; they are re-attached on every read.
type SearchResult struct {
	Provider Provider         `json:"provider"`
	Profile  Account          `json:"profile"`
	Data     []LanguageBucket `json:"data"`
	Metadata ResultMetadata   `json:"metadata"`
}

// SearchOptions holds future per-search options. It participates in the cache
// key through Hash, so adding an option transparently partitions the cache.
type SearchOptions map[string]string

// Hash returns the deterministic options fingerprint used in the cache key:
// sorted k=v pairs joined with "&". Empty or nil options hash to "default".
func (o SearchOptions) Hash() string {
	if len(o) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+o[k])
	}
	return strings.Join(pairs, "&")
}
