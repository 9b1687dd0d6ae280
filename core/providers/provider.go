// Package providers implements the upstream version-control provider clients
// and their utility functions.
package providers

import (
	"context"

	"github.com/langboard/langboard/schemas"
)

// Provider is the contract every upstream client fulfills: fetch one
// account's profile and complete repository list, normalized into the
// provider-agnostic model, with failures translated into the fixed error
// taxonomy.
type Provider interface {
	// GetProviderKey returns the provider identifier.
	GetProviderKey() schemas.Provider

	// BaseURL returns the canonical web base URL of the configured
	// upstream, without a trailing slash. The search core uses it in the
	// cache key.
	BaseURL() string

	// FetchAccount resolves the handle to an account and pages through
	// its repositories. Cancelling ctx interrupts the in-flight call and
	// surfaces as a network error.
	FetchAccount(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError)
}
