package mychem_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/cache"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...mychem.Option) *mychem.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return mychem.New(mychem.Config{
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
		Retries: 0,
	}, opts...)
}

func TestGet(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/metadata", r.URL.Path)
		_, _ = w.Write([]byte(`{"build_version":"20250801"}`))
	}))

	raw, err := c.Metadata(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"build_version":"20250801"}`, string(raw))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false}`, http.StatusNotFound)
	}))

	_, err := c.GetChem(context.Background(), "nosuchid", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrUpstream))
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestGetUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c := mychem.New(mychem.Config{
		BaseURL: ts.URL,
		Timeout: time.Second,
		Retries: 0,
	})
	_, err := c.Metadata(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrUnavailable))
}

func TestGetRetriesThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"took":1}`))
	}))
	t.Cleanup(ts.Close)

	c := mychem.New(mychem.Config{
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
		Retries: 3,
	})
	_, err := c.Query(context.Background(), map[string]string{"q": "aspirin"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetRetriesExhausted(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	c := mychem.New(mychem.Config{
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
		Retries: 2,
	})
	_, err := c.Query(context.Background(), map[string]string{"q": "aspirin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrUpstream))
	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetCached(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"_id":"X"}`))
	}), mychem.WithCache(cache.NewMemory(), time.Minute))

	ctx := context.Background()
	_, err := c.GetChem(ctx, "X", map[string]string{"fields": "name"})
	require.NoError(t, err)
	raw, err := c.GetChem(ctx, "X", map[string]string{"fields": "name"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"X"}`, string(raw))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A different projection is a different cache entry.
	_, err = c.GetChem(ctx, "X", map[string]string{"fields": "pubchem"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetChemEmptyID(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.GetChem(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrInvalidArgument))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestQueryParsesResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aspirin", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{
			"took": 2,
			"total": 1,
			"hits": [{"_id": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N", "name": "aspirin"}]
		}`))
	}))

	res, err := c.Query(context.Background(), map[string]string{"q": "aspirin"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Hits, 1)
}

// ids decodes the identifier list of a batched POST body.
func ids(t *testing.T, r *http.Request) []string {
	t.Helper()
	var body struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.IDs
}

func TestPostQueryEmptyList(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	records, err := c.PostQuery(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPostQuerySingleBatch(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/query", r.URL.Path)

		out := []map[string]any{}
		for _, id := range ids(t, r) {
			out = append(out, map[string]any{"query": id, "found": true})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))

	records, err := c.PostQuery(context.Background(), []string{"a", "b", "c"}, map[string]any{"scopes": "inchikey"})
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostQueryChunksLargeLists(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		batch := ids(t, r)
		assert.LessOrEqual(t, len(batch), mychem.MaxBatchSize)
		out := []map[string]any{}
		for _, id := range batch {
			out = append(out, map[string]any{"query": id, "found": true})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))

	const n = 2500
	list := make([]string, n)
	for i := range list {
		list[i] = fmt.Sprintf("CHEMBL%d", i)
	}

	records, err := c.PostQuery(context.Background(), list, nil)
	require.NoError(t, err)
	assert.Len(t, records, n)
	// ceil(2500 / 1000)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostChemPartialFailure(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		batch := ids(t, r)
		if batch[0] == "CHEMBL0" {
			http.Error(w, "boom", http.StatusBadRequest)
			return
		}
		out := []map[string]any{}
		for _, id := range batch {
			out = append(out, map[string]any{"query": id})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))

	list := make([]string, 1500)
	for i := range list {
		list[i] = fmt.Sprintf("CHEMBL%d", i)
	}

	records, err := c.PostChem(context.Background(), list, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrUpstream))
	assert.Contains(t, err.Error(), "batch 1 of 2")
	// The surviving chunk still returned its records.
	assert.Len(t, records, 500)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
