package langboard

import (
	"sort"

	"github.com/langboard/langboard/schemas"
)

// AggregateLanguages folds a repository list into the ordered language
// series. Forked repositories are counted into the reserved forks bucket and
// excluded from language accounting; repositories without a primary language
// land in the Unknown bucket. The series is sorted stably by value
// descending; tie order is unspecified.
func AggregateLanguages(repos []schemas.Repository) []schemas.LanguageBucket {
	counts := make(map[string]int)
	forks := 0

	for _, repo := range repos {
		if repo.IsFork {
			forks++
			continue
		}
		language := schemas.UnknownLanguageKey
		if repo.Language != nil && *repo.Language != "" {
			language = *repo.Language
		}
		counts[language]++
	}

	buckets := make([]schemas.LanguageBucket, 0, len(counts)+1)
	for language, count := range counts {
		buckets = append(buckets, schemas.LanguageBucket{
			Key:   language,
			Label: language,
			Value: count,
			Color: LanguageColor(language),
		})
	}
	if forks > 0 {
		buckets = append(buckets, schemas.LanguageBucket{
			Key:   schemas.ForksBucketKey,
			Label: schemas.ForksBucketLabel,
			Value: forks,
			Color: schemas.ForksBucketColor,
		})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	return buckets
}
