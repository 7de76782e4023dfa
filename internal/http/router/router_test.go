package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/logx"
)

type denyAll struct{ keys []string }

func (d *denyAll) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	d.keys = append(d.keys, key)
	return ratelimit.Decision{RetryAfter: 2 * time.Second}, nil
}

func newRouter(lim ratelimit.Limiter) http.Handler {
	return router.New(
		handlers.New(logx.Nop()),
		handlers.NewPartnerHandler(logx.Nop(), nil),
		handlers.NewDispatchHandler(logx.Nop(), nil),
		ratelimit.New(logx.Nop(), nil, lim),
		logx.Nop(),
	)
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	t.Parallel()

	h := newRouter(nil)

	rr := serve(h, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, http.MethodHead, "/healthcheck")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "go_goroutines"))

	rr = serve(h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_LocationUpdatesLimitedPerPartner(t *testing.T) {
	t.Parallel()

	lim := &denyAll{}
	rr := serve(newRouter(lim), http.MethodPut, "/partners/p-9/location")

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.Equal(t, []string{"id:p-9"}, lim.keys)
}

func TestRouter_DispatchRoutesLimitedPerClient(t *testing.T) {
	t.Parallel()

	lim := &denyAll{}
	h := newRouter(lim)

	for _, target := range []string{"/dispatch", "/orders/o-1/accept", "/orders/o-1/cancel"} {
		rr := serve(h, http.MethodPost, target)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code, target)
	}
	rr := serve(h, http.MethodGet, "/orders/o-1/assignment")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Len(t, lim.keys, 4)
	assert.Equal(t, "192.0.2.1", lim.keys[0])
}
