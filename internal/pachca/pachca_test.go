package pachca

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1nky/pachca-client/internal/cache"
	"github.com/k1nky/pachca-client/internal/client"
)

// recordedRequest is one request seen by fakeAPI.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakeAPI is an httptest server that serves canned responses per "METHOD path"
// and records every request it receives.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

const apiPrefix = "/api/shared/v1/"

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, handlers: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if len(path) >= len(apiPrefix) && path[:len(apiPrefix)] == apiPrefix {
		path = path[len(apiPrefix):]
	}
	rec := recordedRequest{Method: r.Method, Path: path, Query: r.URL.Query()}
	if r.Header.Get("Content-Type") == "application/json" {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	h, ok := f.handlers[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":"no route"}`))
		return
	}
	h(w, r)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

// handleJSON serves v wrapped in the data envelope.
func (f *fakeAPI) handleJSON(method, path string, status int, v any) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
	})
}

// handlePages serves pages of a listing by the page query parameter.
func (f *fakeAPI) handlePages(path string, pages ...[]map[string]any) {
	f.handle(http.MethodGet, path, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		items := []map[string]any{}
		if page >= 1 && page <= len(pages) {
			items = pages[page-1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	})
}

func (f *fakeAPI) requestsTo(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) client(opts ...client.Option) *client.Client {
	f.t.Helper()
	opts = append([]client.Option{client.WithBaseURL(f.server.URL + apiPrefix)}, opts...)
	c, err := client.New("secret-token", opts...)
	require.NoError(f.t, err)
	return c
}

func newCachedPachca(t *testing.T, api *fakeAPI) (*Pachca, *cache.Cache[[]Entity]) {
	t.Helper()
	c, err := cache.New[[]Entity](time.Minute)
	require.NoError(t, err)
	return New(api.client(), WithCache(c)), c
}

func TestRefParsing(t *testing.T) {
	assert.Equal(t, ByID(42), ParseRef("42"))
	assert.Equal(t, ByName("General"), ParseRef("General"))
	assert.Equal(t, ByName("0"), ParseRef("0"))
	assert.Equal(t, ByName("-3"), ParseRef("-3"))
	assert.True(t, ByName("x").IsName())
	assert.False(t, ByID(1).IsName())
	assert.Equal(t, `"General"`, ByName("General").String())
	assert.Equal(t, "42", ByID(42).String())
}

func TestPageValues(t *testing.T) {
	q, err := pageValues(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "50", q.Get("per"))
	assert.Equal(t, "1", q.Get("page"))

	q, err = pageValues(10, 3)
	require.NoError(t, err)
	assert.Equal(t, "10", q.Get("per"))
	assert.Equal(t, "3", q.Get("page"))
}

func TestFetchAll_StopsOnShortPage(t *testing.T) {
	calls := 0
	pages := map[int][]string{1: {"A", "B"}, 2: {"C"}, 3: {"D"}}
	got, err := fetchAll(context.Background(), 2, func(_ context.Context, page int) ([]string, error) {
		calls++
		return pages[page], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Equal(t, 2, calls)
}

func TestFetchAll_ExactMultipleFetchesEmptyPage(t *testing.T) {
	calls := 0
	pages := map[int][]string{1: {"A", "B"}}
	got, err := fetchAll(context.Background(), 2, func(_ context.Context, page int) ([]string, error) {
		calls++
		return pages[page], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
	assert.Equal(t, 2, calls)
}
