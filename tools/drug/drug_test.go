package drug_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools/drug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *mychem.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return mychem.New(mychem.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
}

func TestSearchDrugFiltersWithdrawn(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"took": 1,
			"total": 2,
			"hits": [
				{"_id": "A", "drugbank": {"groups": ["approved"]}},
				{"_id": "B", "drugbank": {"groups": ["approved", "withdrawn"]}}
			]
		}`))
	})

	tool, err := drug.NewSearchDrug(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &drug.SearchRequest{Query: "aspirin"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Hits, 1)

	res, err = tool.Run(context.Background(), &drug.SearchRequest{
		Query:            "aspirin",
		IncludeWithdrawn: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestDrugInteractions(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("fields"), "drugbank.drug_interactions")
		// Single-element lists are collapsed to objects by the upstream.
		_, _ = w.Write([]byte(`{
			"_id": "X",
			"drugbank": {
				"drug_interactions": {
					"name": "Warfarin",
					"drugbank-id": "DB00682",
					"description": "Increased risk of bleeding"
				}
			}
		}`))
	})

	tool, err := drug.NewDrugInteractions(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &drug.IDRequest{DrugID: "X"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalInteractions)
	require.Len(t, res.Interactions, 1)
	assert.Equal(t, "Warfarin", res.Interactions[0].Drug)
	assert.Equal(t, "DB00682", res.Interactions[0].DrugID)
	assert.Equal(t, "drugbank", res.Interactions[0].Source)
}

func TestDrugTargets(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"_id": "X",
			"drugbank": {"targets": [{"name": "COX-1"}, {"name": "COX-2"}]},
			"pharmgkb": {"gene": {"symbol": "PTGS1"}}
		}`))
	})

	tool, err := drug.NewDrugTargets(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &drug.IDRequest{DrugID: "X"})
	require.NoError(t, err)
	assert.Len(t, res.Targets.DrugBankTargets, 2)
	assert.Len(t, res.Targets.ChemblTargets, 0)
	assert.Len(t, res.Targets.PharmgkbGenes, 1)
}
