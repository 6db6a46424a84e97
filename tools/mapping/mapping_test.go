package mapping_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools/mapping"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postBody struct {
	IDs    []string `json:"ids"`
	Scopes string   `json:"scopes"`
	Fields string   `json:"fields"`
}

func newClient(t *testing.T, handler http.HandlerFunc) *mychem.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return mychem.New(mychem.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
}

func TestMapIdentifiers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body postBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "drugbank.id", body.Scopes)
		assert.Contains(t, body.Fields, "_id")
		assert.Contains(t, body.Fields, "chembl.molecule_chembl_id")

		_, _ = w.Write([]byte(`[
			{
				"query": "DB00945",
				"found": true,
				"_id": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N",
				"chembl": {"molecule_chembl_id": "CHEMBL25"}
			},
			{"query": "DB99999", "found": false, "notfound": true}
		]`))
	})

	tool, err := mapping.NewMapIdentifiers(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &mapping.MapRequest{
		InputIDs: []string{"DB00945", "DB99999"},
		FromType: "drugbank",
		ToTypes:  []string{"inchikey", "chembl"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalInput)
	assert.Equal(t, 1, res.Mapped)
	assert.Equal(t, 1, res.Unmapped)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "BSYNRYMUTXBXSQ-UHFFFAOYSA-N", res.Mappings[0].Mappings["inchikey"])
	assert.Equal(t, "CHEMBL25", res.Mappings[0].Mappings["chembl"])
	assert.Equal(t, []string{"DB99999"}, res.UnmappedIDs)
}

func TestMapIdentifiersFallbackPaths(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		// No drugbank CAS number, pubchem provides it. Synonyms are a list.
		_, _ = w.Write([]byte(`[
			{
				"query": "2244",
				"found": true,
				"_id": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N",
				"pubchem": {"cas": "50-78-2", "synonyms": ["aspirin", "acetylsalicylic acid"]}
			}
		]`))
	})

	tool, err := mapping.NewMapIdentifiers(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &mapping.MapRequest{
		InputIDs: []string{"2244"},
		FromType: "pubchem",
		ToTypes:  []string{"cas", "name"},
	})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "50-78-2", res.Mappings[0].Mappings["cas"])
	assert.Equal(t, "aspirin", res.Mappings[0].Mappings["name"])
}

func TestValidateIdentifiers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"query": "CHEMBL25", "found": true, "_id": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N"},
			{"query": "CHEMBL0", "found": false, "notfound": true}
		]`))
	})

	tool, err := mapping.NewValidateIdentifiers(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &mapping.ValidRequest{
		Identifiers:    []string{"CHEMBL25", "CHEMBL0"},
		IdentifierType: "chembl",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.ValidCount)
	assert.Equal(t, 1, res.InvalidCount)
	require.Len(t, res.ValidIdentifiers, 1)
	assert.Equal(t, "CHEMBL25", res.ValidIdentifiers[0].Identifier)
	assert.Equal(t, []string{"CHEMBL0"}, res.InvalidIdentifiers)
}

func TestFindCommonIdentifiers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body postBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		out := []map[string]any{}
		for _, id := range body.IDs {
			rec := map[string]any{"query": id, "found": true}
			switch id {
			case "DB00945", "CHEMBL25":
				rec["_id"] = "BSYNRYMUTXBXSQ-UHFFFAOYSA-N"
				rec["chembl"] = map[string]any{"pref_name": "ASPIRIN"}
			case "DB00316":
				rec["_id"] = "RZVAJINKPMORJF-UHFFFAOYSA-N"
			case "CHEMBL112":
				rec["_id"] = "QWERTYUIOPASDFGH-UHFFFAOYSA-N"
			}
			out = append(out, rec)
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	})

	tool, err := mapping.NewFindCommonIdentifiers(c)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &mapping.CommonRequest{
		IdentifierLists: map[string][]string{
			"drugbank_ids": {"DB00945", "DB00316"},
			"chembl_ids":   {"CHEMBL25", "CHEMBL112"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalUniqueChemicals)
	assert.Equal(t, 1, res.CommonChemicalsCount)
	require.Len(t, res.CommonChemicals, 1)
	assert.Equal(t, "BSYNRYMUTXBXSQ-UHFFFAOYSA-N", res.CommonChemicals[0].InChIKey)
	assert.Equal(t, "ASPIRIN", res.CommonChemicals[0].Name)
	assert.Len(t, res.CommonChemicals[0].Identifiers, 2)
}

func TestFindCommonIdentifiersUnknownListName(t *testing.T) {
	var calls int
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	tool, err := mapping.NewFindCommonIdentifiers(c)
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &mapping.CommonRequest{
		IdentifierLists: map[string][]string{"mystery_ids": {"x"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrInvalidArgument))
	assert.Equal(t, 0, calls)
}
