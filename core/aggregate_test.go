package langboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langboard/langboard/schemas"
)

func repo(name, language string, fork bool) schemas.Repository {
	r := schemas.Repository{Name: name, IsFork: fork}
	if language != "" {
		r.Language = schemas.Ptr(language)
	}
	return r
}

func TestAggregateLanguages(t *testing.T) {
	buckets := AggregateLanguages([]schemas.Repository{
		repo("a", "JavaScript", false),
		repo("b", "JavaScript", false),
		repo("c", "Python", false),
		repo("d", "Ruby", true),
	})

	require.Len(t, buckets, 3)
	assert.Equal(t, schemas.LanguageBucket{Key: "JavaScript", Label: "JavaScript", Value: 2, Color: "#f1e05a"}, buckets[0])
	assert.Equal(t, schemas.LanguageBucket{Key: "Python", Label: "Python", Value: 1, Color: "#3572A5"}, buckets[1])
	assert.Equal(t, schemas.LanguageBucket{Key: schemas.ForksBucketKey, Label: schemas.ForksBucketLabel, Value: 1, Color: schemas.ForksBucketColor}, buckets[2])
}

func TestAggregateLanguagesForkLanguageIgnored(t *testing.T) {
	// A fork counts toward the forks bucket only, never its language.
	buckets := AggregateLanguages([]schemas.Repository{
		repo("a", "Ruby", true),
		repo("b", "Ruby", true),
	})

	require.Len(t, buckets, 1)
	assert.Equal(t, schemas.ForksBucketKey, buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Value)
}

func TestAggregateLanguagesUnknownBucket(t *testing.T) {
	buckets := AggregateLanguages([]schemas.Repository{
		repo("a", "", false),
		repo("b", "", false),
		repo("c", "Go", false),
	})

	require.Len(t, buckets, 2)
	assert.Equal(t, schemas.UnknownLanguageKey, buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Value)
	assert.Equal(t, "Go", buckets[1].Key)
}

func TestAggregateLanguagesEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateLanguages(nil))
	assert.Empty(t, AggregateLanguages([]schemas.Repository{}))
}

func TestAggregateLanguagesNoForksBucketWithoutForks(t *testing.T) {
	buckets := AggregateLanguages([]schemas.Repository{repo("a", "Go", false)})
	require.Len(t, buckets, 1)
	assert.Equal(t, "Go", buckets[0].Key)
}

func TestAggregateLanguagesDeterministic(t *testing.T) {
	repos := []schemas.Repository{
		repo("a", "Go", false),
		repo("b", "Go", false),
		repo("c", "Rust", false),
		repo("d", "", false),
		repo("e", "Zig", true),
	}

	first := AggregateLanguages(repos)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first[0], AggregateLanguages(repos)[0])
	}
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i].Value, first[i-1].Value)
	}
}

func TestLanguageColorFallback(t *testing.T) {
	assert.Equal(t, "#f1e05a", LanguageColor("JavaScript"))
	assert.Equal(t, defaultLanguageColor, LanguageColor("Befunge-93"))
}
