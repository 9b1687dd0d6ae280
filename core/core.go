// Package langboard provides the core implementation of the langboard
// system: a read-through cache over one upstream provider with single-flight
// coalescing, stale-on-error fallback and bounded upstream concurrency.
package langboard

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/langboard/langboard/core/providers"
	"github.com/langboard/langboard/schemas"
	"github.com/langboard/langboard/store"
)

// SchemaVersion tags every cache key. Bumping it on a payload shape change
// makes all prior rows unreachable without deleting them.
const SchemaVersion = "v1"

// DefaultConcurrencyLimit bounds simultaneous in-flight upstream calls when
// the config does not say otherwise.
const DefaultConcurrencyLimit = 20

// Config carries the collaborators and limits of a Langboard instance.
type Config struct {
	Provider providers.Provider
	Store    store.Store
	Logger   schemas.Logger

	// ConcurrencyLimit caps simultaneous upstream calls; zero means the
	// default. The cap never applies to cache hits or coalesced waiters.
	ConcurrencyLimit int64

	// EnableCache toggles the read-through cache. Disabled, every search
	// goes upstream (still coalesced and capped).
	EnableCache bool
}

// Langboard is the orchestrator every language-statistics read traverses. It
// owns the two process-wide concurrency primitives: the single-flight map
// and the upstream semaphore.
type Langboard struct {
	provider    providers.Provider
	store       store.Store
	leaderboard *Leaderboard
	logger      schemas.Logger

	flights     singleflight.Group
	sem         *semaphore.Weighted
	enableCache bool
}

// Init validates the configuration and creates a Langboard instance.
func Init(config Config) (*Langboard, error) {
	if config.Provider == nil {
		return nil, fmt.Errorf("provider is required to initialize langboard")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("store is required to initialize langboard")
	}
	if config.Logger == nil {
		config.Logger = NewDefaultLogger(schemas.LogLevelInfo, schemas.LoggerOutputTypeJSON)
	}
	limit := config.ConcurrencyLimit
	if limit <= 0 {
		limit = DefaultConcurrencyLimit
	}
	return &Langboard{
		provider:    config.Provider,
		store:       config.Store,
		leaderboard: NewLeaderboard(config.Store, config.Logger),
		logger:      config.Logger,
		sem:         semaphore.NewWeighted(limit),
		enableCache: config.EnableCache,
	}, nil
}

// Leaderboard returns the leaderboard component sharing this instance's
// store and logger.
func (lb *Langboard) Leaderboard() *Leaderboard {
	return lb.leaderboard
}

// Provider returns the configured upstream provider key.
func (lb *Langboard) Provider() schemas.Provider {
	return lb.provider.GetProviderKey()
}

// flightResult is what one upstream fetch produces for every coalesced
// caller: the payload and, when the cache write succeeded, the stored row.
type flightResult struct {
	result *schemas.SearchResult
	entry  *store.TableSearchCache
}

// Search returns the aggregated language statistics for the handle.
//
// The read path: a fresh decodable cache row is served directly; otherwise
// one upstream fetch runs per cache key (concurrent callers coalesce onto
// it), its result is cached and recorded on the leaderboard, and an expired
// row — when one decodes — is served unchanged if the fetch fails.
func (lb *Langboard) Search(ctx context.Context, handle string, opts schemas.SearchOptions) (*schemas.SearchResult, *schemas.SearchError) {
	username := schemas.NormalizeHandle(handle)
	key := store.CacheKey{
		Provider:        lb.provider.GetProviderKey(),
		ProviderBaseURL: lb.provider.BaseURL(),
		Username:        username,
		SchemaVersion:   SchemaVersion,
		OptionsHash:     opts.Hash(),
	}

	// A stale entry that still decodes is kept as the stale-on-error
	// fallback. A corrupted payload is a plain miss, with no fallback.
	var fallbackEntry *store.TableSearchCache
	var fallbackResult *schemas.SearchResult
	if lb.enableCache {
		if entry, ok := lb.store.CacheGet(key); ok {
			var cached schemas.SearchResult
			if err := sonic.UnmarshalString(entry.PayloadJSON, &cached); err != nil {
				lb.logger.Warn("search: corrupted cache payload for %s: %v", username, err)
			} else if time.Now().Unix() < entry.CachedUntil {
				return resultWithCacheTimes(&cached, entry), nil
			} else {
				fallbackEntry, fallbackResult = entry, &cached
			}
		}
	}

	ch := lb.flights.DoChan(key.String(), func() (out interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				lb.logger.Error("search: flight panicked for %s: %v", username, r)
				out, err = nil, &schemas.SearchError{
					Code:    schemas.ErrCodeUnknown,
					Message: fmt.Sprintf("internal failure during search: %v", r),
				}
			}
		}()
		return lb.fetchAndCache(ctx, key, username)
	})

	select {
	case <-ctx.Done():
		// Detach this waiter only; the flight keeps running and
		// populates the cache for everyone else.
		return nil, &schemas.SearchError{
			Code:    schemas.ErrCodeNetworkError,
			Message: "search cancelled: " + ctx.Err().Error(),
			Err:     ctx.Err(),
		}
	case res := <-ch:
		if res.Err != nil {
			if fallbackResult != nil {
				lb.logger.Info("search: serving stale cache for %s after upstream failure", username)
				return resultWithCacheTimes(fallbackResult, fallbackEntry), nil
			}
			return nil, asSearchError(res.Err)
		}
		fr := res.Val.(*flightResult)
		if fr.entry == nil {
			return fr.result, nil
		}
		out := *fr.result
		out.Metadata.CachedAt = schemas.Ptr(schemas.FormatEpochSeconds(fr.entry.CachedAt))
		out.Metadata.CachedUntil = schemas.Ptr(schemas.FormatEpochSeconds(fr.entry.CachedUntil))
		return &out, nil
	}
}

// fetchAndCache is the body of one single-flight execution: admit against
// the semaphore, fetch upstream, aggregate, cache, record. Only successful
// results are ever cached; cache and leaderboard write failures are logged
// and swallowed.
func (lb *Langboard) fetchAndCache(ctx context.Context, key store.CacheKey, username string) (*flightResult, error) {
	if !lb.sem.TryAcquire(1) {
		return nil, &schemas.SearchError{
			Code:    schemas.ErrCodeRateLimited,
			Message: "too many searches in flight, please retry shortly",
		}
	}
	defer lb.sem.Release(1)

	account, repos, serr := lb.provider.FetchAccount(ctx, username)
	if serr != nil {
		return nil, serr
	}

	payload := &schemas.SearchResult{
		Provider: lb.provider.GetProviderKey(),
		Profile:  *account,
		Data:     AggregateLanguages(repos),
		Metadata: schemas.ResultMetadata{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Unit:        schemas.ResultUnit,
		},
	}

	fr := &flightResult{result: payload}
	if lb.enableCache {
		blob, err := sonic.MarshalString(payload)
		if err != nil {
			lb.logger.Warn("search: failed to encode payload for %s: %v", username, err)
		} else if entry, err := lb.store.CacheUpsert(key, blob); err != nil {
			lb.logger.Warn("search: cache write failed for %s: %v", username, err)
		} else {
			fr.entry = entry
		}
	}

	avatar := ""
	if account.AvatarURL != nil {
		avatar = *account.AvatarURL
	}
	lb.leaderboard.Record(lb.provider.GetProviderKey(), username, avatar)

	return fr, nil
}

// resultWithCacheTimes re-attaches the row's cache timestamps to the decoded
// payload: generatedAt mirrors cachedAt so a cache-served response dates
// from when the data was produced.
func resultWithCacheTimes(cached *schemas.SearchResult, entry *store.TableSearchCache) *schemas.SearchResult {
	out := *cached
	out.Metadata.GeneratedAt = schemas.FormatEpochSeconds(entry.CachedAt)
	out.Metadata.Unit = schemas.ResultUnit
	out.Metadata.CachedAt = schemas.Ptr(schemas.FormatEpochSeconds(entry.CachedAt))
	out.Metadata.CachedUntil = schemas.Ptr(schemas.FormatEpochSeconds(entry.CachedUntil))
	return &out
}

// asSearchError normalizes errors crossing the single-flight boundary.
func asSearchError(err error) *schemas.SearchError {
	if serr, ok := err.(*schemas.SearchError); ok {
		return serr
	}
	return &schemas.SearchError{
		Code:    schemas.ErrCodeUnknown,
		Message: err.Error(),
		Err:     err,
	}
}
