// Package providers implements the upstream provider clients.
// This file contains the GitHub GraphQL provider implementation.
package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"github.com/langboard/langboard/schemas"
)

const (
	githubDefaultEndpoint = "https://api.github.com/graphql"
	githubDefaultBaseURL  = "https://github.com"
	githubAvatarHost      = "avatars.githubusercontent.com"

	// defaultRetryAfterSeconds applies when the upstream rate-limits us
	// without a usable reset hint.
	defaultRetryAfterSeconds = 60
)

// accountQuery projects both top-level selections; exactly one is expected to
// be non-null for a real account. Users restrict repository affiliation to
// self-owned, organizations do not.
const accountQuery = `query AccountWithRepositories($login: String!, $cursor: String) {
  user(login: $login) {
    databaseId
    name
    email
    avatarUrl
    createdAt
    followers { totalCount }
    following { totalCount }
    repositories(first: 100, after: $cursor, ownerAffiliations: [OWNER]) {
      pageInfo { endCursor hasNextPage }
      nodes { name isFork primaryLanguage { name } }
    }
  }
  organization(login: $login) {
    databaseId
    name
    avatarUrl
    createdAt
    isVerified
    membersWithRole { totalCount }
    repositories(first: 100, after: $cursor) {
      pageInfo { endCursor hasNextPage }
      nodes { name isFork primaryLanguage { name } }
    }
  }
}`

// GithubConfig configures the GitHub provider. An empty UpstreamBaseURL
// targets github.com; a GitHub Enterprise host serves its GraphQL API under
// /api/graphql.
type GithubConfig struct {
	Token           string
	UpstreamBaseURL string
	RequestTimeout  time.Duration
}

// GithubProvider implements Provider against the GitHub GraphQL v4 API.
type GithubProvider struct {
	logger   schemas.Logger
	client   *fasthttp.Client
	token    string
	endpoint string
	baseURL  string
}

// NewGithubProvider creates a GitHub provider from the given configuration.
func NewGithubProvider(config GithubConfig, logger schemas.Logger) *GithubProvider {
	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	endpoint := githubDefaultEndpoint
	baseURL := githubDefaultBaseURL
	if config.UpstreamBaseURL != "" {
		baseURL = schemas.NormalizeBaseURL(config.UpstreamBaseURL)
		endpoint = baseURL + "/api/graphql"
	}
	return &GithubProvider{
		logger: logger,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		token:    config.Token,
		endpoint: endpoint,
		baseURL:  baseURL,
	}
}

// GetProviderKey returns the provider identifier for GitHub.
func (p *GithubProvider) GetProviderKey() schemas.Provider {
	return schemas.ProviderGithub
}

// BaseURL returns the canonical web base URL of the configured upstream.
func (p *GithubProvider) BaseURL() string {
	return p.baseURL
}

// wire model

type githubCount struct {
	TotalCount int `json:"totalCount"`
}

type githubRepositoryConnection struct {
	PageInfo struct {
		EndCursor   *string `json:"endCursor"`
		HasNextPage bool    `json:"hasNextPage"`
	} `json:"pageInfo"`
	Nodes []struct {
		Name            string `json:"name"`
		IsFork          bool   `json:"isFork"`
		PrimaryLanguage *struct {
			Name string `json:"name"`
		} `json:"primaryLanguage"`
	} `json:"nodes"`
}

type githubUser struct {
	DatabaseID   *int64                     `json:"databaseId"`
	Name         *string                    `json:"name"`
	Email        *string                    `json:"email"`
	AvatarURL    *string                    `json:"avatarUrl"`
	CreatedAt    *string                    `json:"createdAt"`
	Followers    *githubCount               `json:"followers"`
	Following    *githubCount               `json:"following"`
	Repositories githubRepositoryConnection `json:"repositories"`
}

type githubOrganization struct {
	DatabaseID      *int64                     `json:"databaseId"`
	Name            *string                    `json:"name"`
	AvatarURL       *string                    `json:"avatarUrl"`
	CreatedAt       *string                    `json:"createdAt"`
	IsVerified      *bool                      `json:"isVerified"`
	MembersWithRole *githubCount               `json:"membersWithRole"`
	Repositories    githubRepositoryConnection `json:"repositories"`
}

type githubData struct {
	User         *githubUser         `json:"user"`
	Organization *githubOrganization `json:"organization"`
}

type githubError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type githubResponse struct {
	Data   *githubData   `json:"data"`
	Errors []githubError `json:"errors"`
}

// FetchAccount resolves the handle and pages the repositories connection via
// the opaque end cursor. Only the first page resolves the account; subsequent
// pages may only add repositories.
func (p *GithubProvider) FetchAccount(ctx context.Context, handle string) (*schemas.Account, []schemas.Repository, *schemas.SearchError) {
	login := schemas.NormalizeHandle(handle)

	var account *schemas.Account
	var repos []schemas.Repository
	var cursor *string

	for page := 0; ; page++ {
		body, err := sonic.Marshal(map[string]interface{}{
			"query": accountQuery,
			"variables": map[string]interface{}{
				"login":  login,
				"cursor": cursor,
			},
		})
		if err != nil {
			return nil, nil, &schemas.SearchError{
				Code:    schemas.ErrCodeProviderError,
				Message: "failed to marshal upstream query",
				Err:     err,
			}
		}

		out, serr := makeRequestWithContext(ctx, p.client, p.endpoint, p.token, body)
		if serr != nil {
			return nil, nil, serr
		}
		if out.statusCode != fasthttp.StatusOK {
			return nil, nil, p.mapHTTPError(out)
		}

		var parsed githubResponse
		if err := sonic.Unmarshal(out.body, &parsed); err != nil {
			return nil, nil, &schemas.SearchError{
				Code:    schemas.ErrCodeProviderError,
				Message: "failed to decode upstream response",
				Err:     err,
			}
		}

		if len(parsed.Errors) > 0 {
			if serr := p.mapGraphQLErrors(parsed.Errors, parsed.Data, out); serr != nil {
				return nil, nil, serr
			}
			// Errors absorbed: the data object carries a populated side.
			p.logger.Debug("github: absorbed %d upstream errors for %s", len(parsed.Errors), login)
		}

		data := parsed.Data
		if data == nil || (data.User == nil && data.Organization == nil) {
			if page == 0 {
				return nil, nil, schemas.NewSearchError(schemas.ErrCodeUserNotFound, "no user or organization found for handle "+login)
			}
			break
		}

		var conn *githubRepositoryConnection
		switch {
		case page == 0 && data.User != nil:
			account = projectUserAccount(data.User)
			conn = &data.User.Repositories
		case page == 0:
			account = projectOrganizationAccount(data.Organization)
			conn = &data.Organization.Repositories
		case account.Kind == schemas.AccountKindUser && data.User != nil:
			conn = &data.User.Repositories
		case account.Kind == schemas.AccountKindOrganization && data.Organization != nil:
			conn = &data.Organization.Repositories
		default:
			// The resolved side vanished mid-pagination; stop adding.
			return account, repos, nil
		}

		for _, node := range conn.Nodes {
			repo := schemas.Repository{Name: node.Name, IsFork: node.IsFork}
			if node.PrimaryLanguage != nil && node.PrimaryLanguage.Name != "" {
				repo.Language = schemas.Ptr(node.PrimaryLanguage.Name)
			}
			repos = append(repos, repo)
		}

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == nil {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return account, repos, nil
}

// mapGraphQLErrors translates the structured error list of a 200 response.
// A nil return means the errors were absorbed because the data object carries
// a populated side. Scope errors take precedence over absorption.
func (p *GithubProvider) mapGraphQLErrors(errs []githubError, data *githubData, out *upstreamResponse) *schemas.SearchError {
	for _, e := range errs {
		if e.Type == "INSUFFICIENT_SCOPES" {
			return schemas.NewSearchError(schemas.ErrCodeInsufficientScopes, e.Message)
		}
	}

	if data != nil && (data.User != nil || data.Organization != nil) {
		return nil
	}

	allNotFound := true
	for _, e := range errs {
		if e.Type != "NOT_FOUND" {
			allNotFound = false
			break
		}
	}
	if allNotFound {
		return schemas.NewSearchError(schemas.ErrCodeUserNotFound, firstMessage(errs, "not found"))
	}

	for _, e := range errs {
		if e.Type == "RATE_LIMITED" || strings.Contains(strings.ToLower(e.Message), "rate limit") {
			return schemas.NewRateLimitedError(e.Message, p.retryAfter(out.rateLimitReset))
		}
	}

	for _, e := range errs {
		msg := strings.ToLower(e.Message)
		if strings.Contains(msg, "bad credentials") {
			return schemas.NewSearchError(schemas.ErrCodeInvalidToken, e.Message)
		}
		if strings.Contains(msg, "network") || strings.Contains(msg, "timeout") || strings.Contains(msg, "econnrefused") {
			return schemas.NewSearchError(schemas.ErrCodeNetworkError, e.Message)
		}
	}

	upstream := make([]schemas.UpstreamError, len(errs))
	for i, e := range errs {
		upstream[i] = schemas.UpstreamError{Type: e.Type, Message: e.Message}
	}
	return &schemas.SearchError{
		Code:           schemas.ErrCodeProviderError,
		Message:        firstMessage(errs, "upstream returned errors"),
		StatusCode:     schemas.Ptr(out.statusCode),
		UpstreamErrors: upstream,
	}
}

// mapHTTPError translates a non-200 upstream status. The body is sniffed for
// a message field since GitHub serves REST-shaped errors here even on the
// GraphQL endpoint.
func (p *GithubProvider) mapHTTPError(out *upstreamResponse) *schemas.SearchError {
	message := gjson.GetBytes(out.body, "message").String()
	lower := strings.ToLower(message)

	switch {
	case out.statusCode == fasthttp.StatusUnauthorized || strings.Contains(lower, "bad credentials"):
		if message == "" {
			message = "upstream rejected the configured token"
		}
		serr := schemas.NewSearchError(schemas.ErrCodeInvalidToken, message)
		serr.StatusCode = schemas.Ptr(out.statusCode)
		return serr
	case out.statusCode == fasthttp.StatusForbidden:
		if message == "" {
			message = "upstream rate limit exceeded"
		}
		serr := schemas.NewRateLimitedError(message, p.retryAfter(out.rateLimitReset))
		serr.StatusCode = schemas.Ptr(out.statusCode)
		return serr
	case out.statusCode == fasthttp.StatusNotFound:
		if message == "" {
			message = "account not found"
		}
		return schemas.NewSearchError(schemas.ErrCodeUserNotFound, message)
	default:
		if message == "" {
			message = "upstream returned status " + strconv.Itoa(out.statusCode)
		}
		return &schemas.SearchError{
			Code:       schemas.ErrCodeProviderError,
			Message:    message,
			StatusCode: schemas.Ptr(out.statusCode),
		}
	}
}

// retryAfter derives the retry hint from the x-ratelimit-reset header:
// max(0, reset − now), or the default when the header is missing or mangled.
func (p *GithubProvider) retryAfter(reset string) int {
	if reset == "" {
		return defaultRetryAfterSeconds
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return defaultRetryAfterSeconds
	}
	remaining := epoch - time.Now().Unix()
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

func firstMessage(errs []githubError, fallback string) string {
	for _, e := range errs {
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}

// projectUserAccount maps the user selection to the provider-agnostic model.
// A user is verified when the provider exposes a non-empty email.
func projectUserAccount(u *githubUser) *schemas.Account {
	account := &schemas.Account{
		Kind:            schemas.AccountKindUser,
		ProviderUserID:  formatDatabaseID(u.DatabaseID),
		AvatarURL:       u.AvatarURL,
		CreatedAt:       u.CreatedAt,
		IsVerified:      u.Email != nil && strings.TrimSpace(*u.Email) != "",
		ProviderBaseURL: deriveProviderBaseURL(u.AvatarURL),
	}
	if name := trimmedName(u.Name); name != nil {
		account.Name = name
	}
	stats := &schemas.AccountStatistics{}
	if u.Followers != nil {
		stats.Followers = schemas.Ptr(u.Followers.TotalCount)
	}
	if u.Following != nil {
		stats.Following = schemas.Ptr(u.Following.TotalCount)
	}
	if !stats.IsEmpty() {
		account.Statistics = stats
	}
	return account
}

// projectOrganizationAccount maps the organization selection. Verification
// follows the provider flag, defaulting to false.
func projectOrganizationAccount(o *githubOrganization) *schemas.Account {
	account := &schemas.Account{
		Kind:            schemas.AccountKindOrganization,
		ProviderUserID:  formatDatabaseID(o.DatabaseID),
		AvatarURL:       o.AvatarURL,
		CreatedAt:       o.CreatedAt,
		IsVerified:      o.IsVerified != nil && *o.IsVerified,
		ProviderBaseURL: deriveProviderBaseURL(o.AvatarURL),
	}
	if name := trimmedName(o.Name); name != nil {
		account.Name = name
	}
	if o.MembersWithRole != nil {
		account.Statistics = &schemas.AccountStatistics{
			Members: schemas.Ptr(o.MembersWithRole.TotalCount),
		}
	}
	return account
}

func trimmedName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return schemas.Ptr(trimmed)
}

func formatDatabaseID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// deriveProviderBaseURL recovers the web base of the serving instance from
// the avatar host: "avatars.<host>" maps back to "<scheme>://<host>[:port]",
// the public github.com avatar CDN maps to https://github.com, and every
// other shape falls back to https://github.com.
func deriveProviderBaseURL(avatarURL *string) string {
	if avatarURL == nil {
		return githubDefaultBaseURL
	}
	parsed, err := url.Parse(*avatarURL)
	if err != nil || parsed.Scheme == "" || parsed.Hostname() == "" {
		return githubDefaultBaseURL
	}
	host := parsed.Hostname()
	if host == githubAvatarHost {
		return githubDefaultBaseURL
	}
	if !strings.HasPrefix(host, "avatars.") {
		return githubDefaultBaseURL
	}
	base := parsed.Scheme + "://" + strings.TrimPrefix(host, "avatars.")
	if port := parsed.Port(); port != "" {
		base += ":" + port
	}
	return base
}
