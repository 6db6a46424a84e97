package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/chembridge/mychem-mcp/schema"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query  string   `json:"q" jsonschema:"description=Query string" validate:"required"`
	Fields string   `json:"fields,omitempty" jsonschema:"description=Fields to return"`
	Size   int      `json:"size,omitempty" jsonschema:"description=Number of results,default=10"`
	IDs    []string `json:"ids,omitempty" jsonschema:"description=Identifier list"`
}

type nestedInput struct {
	Inner searchInput `json:"inner" jsonschema:"description=Nested input"`
}

func TestNewFlattensRoot(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(searchInput{}))
	require.NoError(t, err)
	require.NotNil(t, sc.Parameters)

	params, ok := sc.Parameters.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "object", params.Type)
	assert.Contains(t, params.Required, "q")

	bs, err := json.Marshal(params)
	require.NoError(t, err)
	text := string(bs)
	assert.Contains(t, text, `"q"`)
	assert.Contains(t, text, "Query string")
	assert.NotContains(t, text, "$ref")
	assert.NotContains(t, text, "$defs")
}

func TestNewCachesPerType(t *testing.T) {
	first, err := schema.New(reflect.TypeOf(searchInput{}))
	require.NoError(t, err)
	second, err := schema.New(reflect.TypeOf(searchInput{}))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestNewResolvesNestedRefs(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(nestedInput{}))
	require.NoError(t, err)

	bs, err := json.Marshal(sc.Parameters)
	require.NoError(t, err)
	text := string(bs)
	assert.Contains(t, text, `"inner"`)
	assert.Contains(t, text, `"q"`)
	assert.NotContains(t, text, "$ref")
}

func TestReflectNamesCarryPackageHash(t *testing.T) {
	refl := schema.Reflect(reflect.TypeOf(searchInput{}))
	require.NotEmpty(t, refl.Definitions)

	found := false
	for name := range refl.Definitions {
		if len(name) > len("searchInput") {
			assert.Contains(t, name, "searchInput@")
			found = true
		}
	}
	assert.True(t, found)
}
