package schemas

// Reserved language series entries.
const (
	// ForksBucketKey is the reserved key counting forked repositories
	// irrespective of their language.
	ForksBucketKey = "__forks__"
	// ForksBucketLabel is the fixed label of the forks bucket.
	ForksBucketLabel = "Forked repos"
	// ForksBucketColor is the fixed color of the forks bucket.
	ForksBucketColor = "#ededed"
	// UnknownLanguageKey collects repositories whose primary language is null.
	UnknownLanguageKey = "Unknown"
)

// LanguageBucket is one entry of the aggregated language series.
type LanguageBucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}
