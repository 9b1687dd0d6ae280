package handlers

import (
	"strconv"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	langboard "github.com/langboard/langboard/core"
	"github.com/langboard/langboard/schemas"
)

const (
	defaultTopSearchLimit = 10
	maxTopSearchLimit     = 100
)

// TopSearchHandler manages HTTP requests for the most-searched leaderboard.
type TopSearchHandler struct {
	client *langboard.Langboard
	logger schemas.Logger
}

// NewTopSearchHandler creates a new leaderboard handler instance.
func NewTopSearchHandler(client *langboard.Langboard, logger schemas.Logger) *TopSearchHandler {
	return &TopSearchHandler{
		client: client,
		logger: logger,
	}
}

// RegisterRoutes registers all leaderboard-related routes.
func (h *TopSearchHandler) RegisterRoutes(r *router.Router) {
	r.GET("/api/v1/topsearch", h.TopSearch)
}

// Pagination describes the window a leaderboard page was cut from.
type Pagination struct {
	Total  int64 `json:"total"`
	Count  int   `json:"count"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// TopSearchResponse is the envelope of a leaderboard page.
type TopSearchResponse struct {
	OK         bool                         `json:"ok"`
	Provider   schemas.Provider             `json:"provider"`
	Data       []langboard.LeaderboardEntry `json:"data"`
	Pagination Pagination                   `json:"pagination"`
}

// TopSearch handles GET /api/v1/topsearch requests.
func (h *TopSearchHandler) TopSearch(ctx *fasthttp.RequestCtx) {
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

	limit := defaultTopSearchLimit
	if raw := string(args.Peek("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopSearchLimit {
			SendError(ctx, fasthttp.StatusBadRequest, provider, schemas.ErrCodeValidation,
				"limit must be an integer between 1 and 100", h.logger)
			return
		}
		limit = n
	}

	offset := 0
	if raw := string(args.Peek("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			SendError(ctx, fasthttp.StatusBadRequest, provider, schemas.ErrCodeValidation,
				"offset must be a non-negative integer", h.logger)
			return
		}
		offset = n
	}

	entries, total := h.client.Leaderboard().Top(provider, limit, offset)

	SendJSON(ctx, TopSearchResponse{
		OK:       true,
		Provider: provider,
		Data:     entries,
		Pagination: Pagination{
			Total:  total,
			Count:  len(entries),
			Offset: offset,
			Limit:  limit,
		},
	}, h.logger)
}
