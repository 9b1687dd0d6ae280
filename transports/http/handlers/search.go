package handlers

import (
	"regexp"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	langboard "github.com/langboard/langboard/core"
	"github.com/langboard/langboard/schemas"
)

// handlePattern matches valid account handles: GitHub caps logins at 39
// characters of letters, digits and hyphens.
var handlePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,39}$`)

// SearchHandler manages HTTP requests for language-statistics searches.
type SearchHandler struct {
	client *langboard.Langboard
	logger schemas.Logger
}

// NewSearchHandler creates a new search handler instance.
func NewSearchHandler(client *langboard.Langboard, logger schemas.Logger) *SearchHandler {
	return &SearchHandler{
		client: client,
		logger: logger,
	}
}

// RegisterRoutes registers all search-related routes.
func (h *SearchHandler) RegisterRoutes(r *router.Router) {
	r.GET("/api/v1/search", h.Search)
}

// Search handles GET /api/v1/search requests. It validates the query at the
// edge and forwards everything else to the core; the core never sees an
// invalid handle or an unimplemented provider.
func (h *SearchHandler) Search(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	provider := schemas.Provider(string(args.Peek("provider")))
	if provider == "" {
		provider = schemas.ProviderGithub
	}
	if !provider.IsKnown() {
		SendError(ctx, fasthttp.StatusBadRequest, provider, schemas.ErrCodeValidation,
			"unknown provider: "+string(provider), h.logger)
		return
	}
	if provider != h.client.Provider() {
		SendError(ctx, fasthttp.StatusNotImplemented, provider, schemas.ErrCodeNotImplemented,
			"provider "+string(provider)+" is not implemented", h.logger)
		return
	}

	username := string(args.Peek("username"))
	if !handlePattern.MatchString(username) {
		SendError(ctx, fasthttp.StatusBadRequest, provider, schemas.ErrCodeValidation,
			"username must be 1-39 characters of letters, digits and hyphens", h.logger)
		return
	}

	result, serr := h.client.Search(ctx, username, nil)
	if serr != nil {
		h.logger.Debug("search for %s failed: %s", username, serr.Error())
		SendSearchError(ctx, StatusForError(serr), provider, serr, h.logger)
		return
	}

	SendJSON(ctx, SuccessResponse{
		OK:       true,
		Provider: result.Provider,
		Profile:  result.Profile,
		Data:     result.Data,
		Metadata: result.Metadata,
	}, h.logger)
}
