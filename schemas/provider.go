// Package schemas defines the shared types used across the langboard system,
// including the provider-agnostic account model, the language series returned
// to callers, and the error taxonomy.
package schemas

// Provider identifies an upstream version-control provider.
type Provider string

const (
	ProviderGithub    Provider = "github"
	ProviderGitlab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
)

// KnownProviders lists every provider the API accepts. Only github is
// implemented; the rest respond with not_implemented.
var KnownProviders = []Provider{ProviderGithub, ProviderGitlab, ProviderBitbucket}

// IsKnown reports whether p is a recognized provider name.
func (p Provider) IsKnown() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}
