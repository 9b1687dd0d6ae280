package langboard

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langboard/langboard/schemas"
	"github.com/langboard/langboard/store"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...any)   {}
func (testLogger) Info(msg string, args ...any)    {}
func (testLogger) Warn(msg string, args ...any)    {}
func (testLogger) Error(msg string, args ...any)   {}
func (testLogger) Fatal(msg string, args ...any)   {}
func (testLogger) SetLevel(level schemas.LogLevel) {}

// stubProvider drives the core without touching the network.
type stubProvider struct {
	calls atomic.Int64
	fetch func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError)
}

func (p *stubProvider) GetProviderKey() schemas.Provider { return schemas.ProviderGithub }

func (p *stubProvider) BaseURL() string { return "https://github.com" }

func (p *stubProvider) FetchAccount(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
	p.calls.Add(1)
	return p.fetch(ctx, handle)
}

func testAccount() *schemas.Account {
	return &schemas.Account{
		Kind:            schemas.AccountKindUser,
		ProviderUserID:  "123",
		AvatarURL:       schemas.Ptr("https://avatars.githubusercontent.com/u/123"),
		IsVerified:      true,
		ProviderBaseURL: "https://github.com",
	}
}

func testRepos() []schemas.Repository {
	return []schemas.Repository{
		repo("one", "JavaScript", false),
		repo("two", "JavaScript", false),
		repo("three", "Python", false),
		repo("four", "Ruby", true),
	}
}

func newTestCore(t *testing.T, provider *stubProvider, ttl time.Duration, opts ...func(*Config)) (*Langboard, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(store.Config{
		Path:   filepath.Join(t.TempDir(), "langboard.db"),
		TTL:    ttl,
		Logger: testLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	config := Config{
		Provider:    provider,
		Store:       st,
		Logger:      testLogger{},
		EnableCache: true,
	}
	for _, opt := range opts {
		opt(&config)
	}
	lb, err := Init(config)
	require.NoError(t, err)
	return lb, st
}

func TestInitRequiresProviderAndStore(t *testing.T) {
	_, err := Init(Config{Store: nil, Provider: nil})
	assert.Error(t, err)

	_, err = Init(Config{Provider: &stubProvider{}})
	assert.Error(t, err)
}

func TestSearchColdHit(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}}
	lb, st := newTestCore(t, provider, 12*time.Hour)

	result, serr := lb.Search(context.Background(), "TestUser", nil)
	require.Nil(t, serr)
	assert.Equal(t, int64(1), provider.calls.Load())

	assert.Equal(t, schemas.ProviderGithub, result.Provider)
	assert.True(t, result.Profile.IsVerified)
	require.Len(t, result.Data, 3)
	assert.Equal(t, schemas.LanguageBucket{Key: "JavaScript", Label: "JavaScript", Value: 2, Color: "#f1e05a"}, result.Data[0])
	assert.Equal(t, schemas.LanguageBucket{Key: "Python", Label: "Python", Value: 1, Color: "#3572A5"}, result.Data[1])
	assert.Equal(t, schemas.ForksBucketKey, result.Data[2].Key)
	assert.Equal(t, schemas.ResultUnit, result.Metadata.Unit)
	assert.NotNil(t, result.Metadata.CachedAt)
	assert.NotNil(t, result.Metadata.CachedUntil)

	_, ok := st.CacheGet(store.CacheKey{
		Provider:        schemas.ProviderGithub,
		ProviderBaseURL: "https://github.com",
		Username:        "testuser",
		SchemaVersion:   SchemaVersion,
		OptionsHash:     "default",
	})
	assert.True(t, ok)
}

func TestSearchWarmHitSkipsUpstream(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour)

	first, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)
	second, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)

	assert.Equal(t, int64(1), provider.calls.Load())
	require.NotNil(t, second.Metadata.CachedAt)
	assert.Equal(t, *first.Metadata.CachedAt, *second.Metadata.CachedAt)
	assert.Equal(t, first.Data, second.Data)
}

func TestSearchCoalescesConcurrentCallers(t *testing.T) {
	const callers = 8
	release := make(chan struct{})
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		<-release
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour)

	results := make([]*schemas.SearchResult, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			result, serr := lb.Search(context.Background(), "testuser", nil)
			assert.Nil(t, serr)
			results[i] = result
		}(i)
	}

	// Let every caller reach the flight before the fetch resolves.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), provider.calls.Load())
	for i := 1; i < callers; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].Data, results[i].Data)
	}
}

func TestSearchStaleOnError(t *testing.T) {
	failing := atomic.Bool{}
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		if failing.Load() {
			return nil, nil, schemas.NewRateLimitedError("API rate limit exceeded", 300)
		}
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, time.Second)

	first, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)

	// Let the entry expire, then fail the refresh.
	time.Sleep(1100 * time.Millisecond)
	failing.Store(true)

	second, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)
	assert.Equal(t, int64(2), provider.calls.Load())

	require.NotNil(t, second.Metadata.CachedAt)
	assert.Equal(t, *first.Metadata.CachedAt, *second.Metadata.CachedAt)
	assert.Equal(t, *first.Metadata.CachedUntil, *second.Metadata.CachedUntil)
	assert.Equal(t, first.Data, second.Data)
}

func TestSearchColdErrorHasNoFallback(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return nil, nil, schemas.NewSearchError(schemas.ErrCodeUserNotFound, "no user or organization found for handle nobody")
	}}
	lb, st := newTestCore(t, provider, 12*time.Hour)

	result, serr := lb.Search(context.Background(), "nobody", nil)
	assert.Nil(t, result)
	require.NotNil(t, serr)
	assert.Equal(t, schemas.ErrCodeUserNotFound, serr.Code)

	_, ok := st.CacheGet(store.CacheKey{
		Provider:        schemas.ProviderGithub,
		ProviderBaseURL: "https://github.com",
		Username:        "nobody",
		SchemaVersion:   SchemaVersion,
		OptionsHash:     "default",
	})
	assert.False(t, ok)

	entries, total := lb.Leaderboard().Top(schemas.ProviderGithub, 10, 0)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}

func TestSearchConcurrencyCap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		started <- struct{}{}
		<-release
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour, func(c *Config) {
		c.ConcurrencyLimit = 2
	})

	var wg sync.WaitGroup
	wg.Add(2)
	for _, handle := range []string{"usera", "userb"} {
		go func(handle string) {
			defer wg.Done()
			_, serr := lb.Search(context.Background(), handle, nil)
			assert.Nil(t, serr)
		}(handle)
	}

	// Both slots are held once the two fetches have started.
	<-started
	<-started

	_, serr := lb.Search(context.Background(), "userc", nil)
	require.NotNil(t, serr)
	assert.Equal(t, schemas.ErrCodeRateLimited, serr.Code)
	assert.Nil(t, serr.RetryAfterSeconds)
	assert.Contains(t, serr.Message, "too many searches")

	close(release)
	wg.Wait()

	result, serr := lb.Search(context.Background(), "userd", nil)
	require.Nil(t, serr)
	assert.NotNil(t, result)
}

func TestSearchRecordsLeaderboardOncePerCacheCycle(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour)

	_, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)
	_, serr = lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)

	entries, total := lb.Leaderboard().Top(schemas.ProviderGithub, 10, 0)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "testuser", entries[0].Username)
	assert.Equal(t, int64(1), entries[0].Hit)
}

func TestSearchCacheDisabled(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour, func(c *Config) {
		c.EnableCache = false
	})

	first, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)
	_, serr = lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)

	assert.Equal(t, int64(2), provider.calls.Load())
	assert.Nil(t, first.Metadata.CachedAt)
	assert.Nil(t, first.Metadata.CachedUntil)
}

func TestSearchCorruptedCacheEntryIsAMiss(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}}
	lb, st := newTestCore(t, provider, 12*time.Hour)

	key := store.CacheKey{
		Provider:        schemas.ProviderGithub,
		ProviderBaseURL: "https://github.com",
		Username:        "testuser",
		SchemaVersion:   SchemaVersion,
		OptionsHash:     "default",
	}
	_, err := st.CacheUpsert(key, "{not json")
	require.NoError(t, err)

	result, serr := lb.Search(context.Background(), "testuser", nil)
	require.Nil(t, serr)
	assert.Equal(t, int64(1), provider.calls.Load())
	assert.NotEmpty(t, result.Data)

	row, ok := st.CacheGet(key)
	require.True(t, ok)
	assert.NotEqual(t, "{not json", row.PayloadJSON)
}

func TestSearchPanicInFlightIsContained(t *testing.T) {
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		panic("boom")
	}}
	lb, _ := newTestCore(t, provider, 12*time.Hour, func(c *Config) {
		c.ConcurrencyLimit = 1
	})

	_, serr := lb.Search(context.Background(), "testuser", nil)
	require.NotNil(t, serr)
	assert.Equal(t, schemas.ErrCodeUnknown, serr.Code)

	// The slot must have been released despite the panic.
	provider.fetch = func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		return testAccount(), testRepos(), nil
	}
	result, serr := lb.Search(context.Background(), "otheruser", nil)
	require.Nil(t, serr)
	assert.NotNil(t, result)
}

func TestSearchWaiterCancelDetaches(t *testing.T) {
	release := make(chan struct{})
	provider := &stubProvider{fetch: func(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
		<-release
		return testAccount(), testRepos(), nil
	}}
	lb, st := newTestCore(t, provider, 12*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *schemas.SearchError, 1)
	go func() {
		_, serr := lb.Search(ctx, "testuser", nil)
		done <- serr
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	serr := <-done
	require.NotNil(t, serr)
	assert.Equal(t, schemas.ErrCodeNetworkError, serr.Code)

	// The detached flight still completes and populates the cache.
	close(release)
	require.Eventually(t, func() bool {
		_, ok := st.CacheGet(store.CacheKey{
			Provider:        schemas.ProviderGithub,
			ProviderBaseURL: "https://github.com",
			Username:        "testuser",
			SchemaVersion:   SchemaVersion,
			OptionsHash:     "default",
		})
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}
