package batch_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postBody struct {
	IDs       []string `json:"ids"`
	Scopes    string   `json:"scopes"`
	Fields    string   `json:"fields"`
	ReturnAll *bool    `json:"returnall"`
}

func newClient(t *testing.T, handler http.HandlerFunc) *mychem.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return mychem.New(mychem.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
}

func TestQueryChemicals(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		var body postBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, batch.DefaultScopes, body.Scopes)
		require.NotNil(t, body.ReturnAll)
		assert.True(t, *body.ReturnAll)

		_, _ = w.Write([]byte(`[
			{"query": "CHEMBL25", "found": true, "_id": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N"},
			{"query": "NOSUCH", "found": false, "notfound": true}
		]`))
	})

	tool, err := batch.NewQueryChemicals(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &batch.QueryRequest{
		ChemicalIDs: []string{"CHEMBL25", "NOSUCH"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Found)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, []string{"NOSUCH"}, res.MissingIDs)
}

func TestQueryChemicalsChunking(t *testing.T) {
	var calls int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body postBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.LessOrEqual(t, len(body.IDs), mychem.MaxBatchSize)

		out := make([]map[string]any, 0, len(body.IDs))
		for _, id := range body.IDs {
			out = append(out, map[string]any{"query": id, "found": true})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	})

	tool, err := batch.NewQueryChemicals(c)
	require.NoError(t, err)

	list := make([]string, 1001)
	for i := range list {
		list[i] = fmt.Sprintf("CID%d", i)
	}
	res, err := tool.Run(context.Background(), &batch.QueryRequest{ChemicalIDs: list})
	require.NoError(t, err)
	assert.Equal(t, 1001, res.Total)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetChemicals(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chem", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "inchikey,name", body["fields"])

		_, _ = w.Write([]byte(`[{"query":"a","_id":"A"},{"query":"b","_id":"B"}]`))
	})

	tool, err := batch.NewGetChemicals(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &batch.GetRequest{
		ChemicalIDs: []string{"a", "b"},
		Fields:      "inchikey,name",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Chemicals, 2)
}

func TestGetChemicalsRejectsBadEmail(t *testing.T) {
	var calls int
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	tool, err := batch.NewGetChemicals(c)
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &batch.GetRequest{
		ChemicalIDs: []string{"a"},
		Email:       "not-an-email",
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
}
