package providers

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/langboard/langboard/schemas"
)

// upstreamResponse is one completed upstream round-trip, copied out of the
// fasthttp buffers so the caller never touches pooled memory.
type upstreamResponse struct {
	statusCode     int
	body           []byte
	rateLimitReset string
	err            error
}

// makeRequestWithContext posts the body to the endpoint and honors context
// cancellation. The round-trip runs in its own goroutine owning the pooled
// request/response pair; when ctx fires first the call is detached and the
// goroutine releases the buffers once the transport returns, so cancellation
// never races the pool.
func makeRequestWithContext(ctx context.Context, client *fasthttp.Client, endpoint, token string, body []byte) (*upstreamResponse, *schemas.SearchError) {
	ch := make(chan *upstreamResponse, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(endpoint)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		if token != "" {
			req.Header.Set("Authorization", "bearer "+token)
		}
		req.SetBody(body)

		if err := client.Do(req, resp); err != nil {
			ch <- &upstreamResponse{err: err}
			return
		}
		ch <- &upstreamResponse{
			statusCode:     resp.StatusCode(),
			body:           append([]byte(nil), resp.Body()...),
			rateLimitReset: string(resp.Header.Peek("x-ratelimit-reset")),
		}
	}()

	select {
	case <-ctx.Done():
		return nil, &schemas.SearchError{
			Code:    schemas.ErrCodeNetworkError,
			Message: "upstream request cancelled: " + ctx.Err().Error(),
			Err:     ctx.Err(),
		}
	case out := <-ch:
		if out.err != nil {
			return nil, &schemas.SearchError{
				Code:    schemas.ErrCodeNetworkError,
				Message: "upstream request failed: " + out.err.Error(),
				Err:     out.err,
			}
		}
		return out, nil
	}
}
