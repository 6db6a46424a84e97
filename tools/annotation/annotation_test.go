package annotation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools/annotation"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chem/BSYNRYMUTXBXSQ-UHFFFAOYSA-N", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pubchem,chembl", q.Get("fields"))
		assert.Equal(t, "false", q.Get("dotfield"))
		_, _ = w.Write([]byte(`{"_id":"BSYNRYMUTXBXSQ-UHFFFAOYSA-N","pubchem":{"cid":2244}}`))
	}))
	t.Cleanup(ts.Close)
	c := mychem.New(mychem.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})

	tool, err := annotation.NewGetByID(c)
	require.NoError(t, err)

	dotfield := false
	res, err := tool.Run(context.Background(), &annotation.GetRequest{
		ChemicalID: "BSYNRYMUTXBXSQ-UHFFFAOYSA-N",
		Fields:     "pubchem,chembl",
		DotField:   &dotfield,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, string(res.Chemical), "2244")
}

func TestGetByIDRequiresID(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	t.Cleanup(ts.Close)
	c := mychem.New(mychem.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})

	tool, err := annotation.NewGetByID(c)
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &annotation.GetRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mychem.ErrInvalidArgument))
	assert.Equal(t, 0, calls)
}
