package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "octocat", NormalizeHandle("  OctoCat "))
	assert.Equal(t, "octocat", NormalizeHandle("octocat"))
	assert.Equal(t, "", NormalizeHandle("   "))
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://github.com", NormalizeBaseURL("https://github.com/"))
	assert.Equal(t, "https://github.com", NormalizeBaseURL("https://github.com///"))
	assert.Equal(t, "https://github.com", NormalizeBaseURL(" https://github.com "))
}

func TestFormatEpochSeconds(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", FormatEpochSeconds(1700000000))
}

func TestSearchOptionsHash(t *testing.T) {
	assert.Equal(t, "default", SearchOptions(nil).Hash())
	assert.Equal(t, "default", SearchOptions{}.Hash())
	assert.Equal(t, "a=1&b=2", SearchOptions{"b": "2", "a": "1"}.Hash())
	assert.Equal(t, SearchOptions{"x": "y", "a": "1"}.Hash(), SearchOptions{"a": "1", "x": "y"}.Hash())
}

func TestAccountStatisticsIsEmpty(t *testing.T) {
	assert.True(t, (*AccountStatistics)(nil).IsEmpty())
	assert.True(t, (&AccountStatistics{}).IsEmpty())
	assert.False(t, (&AccountStatistics{Followers: Ptr(0)}).IsEmpty())
}

func TestProviderIsKnown(t *testing.T) {
	assert.True(t, ProviderGithub.IsKnown())
	assert.True(t, ProviderGitlab.IsKnown())
	assert.True(t, ProviderBitbucket.IsKnown())
	assert.False(t, Provider("sourceforge").IsKnown())
}
