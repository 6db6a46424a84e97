package encoding_test

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	aspirin = encoding.Record(`{
		"inchikey": "BSYNRYMUTXBXSQ-UHFFFAOYSA-N",
		"name": "aspirin",
		"pubchem": {"cid": 2244}
	}`)
	fields = []string{"inchikey", "name", "pubchem.cid"}
)

func TestNewUnsupportedFormat(t *testing.T) {
	enc, err := encoding.New("xml")
	assert.Nil(t, enc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, encoding.ErrUnsupportedFormat))
}

func TestSupported(t *testing.T) {
	for _, format := range encoding.Supported() {
		enc, err := encoding.New(format)
		require.NoError(t, err, "format %s", format)
		require.NotNil(t, enc)

		out, err := enc.Encode([]encoding.Record{aspirin}, fields)
		require.NoError(t, err, "format %s", format)
		assert.NotEmpty(t, out, "format %s", format)
	}
}

func TestEncodeTSV(t *testing.T) {
	enc, err := encoding.New(encoding.FormatTSV)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, fields)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "inchikey\tname\tpubchem.cid", lines[0])
	assert.Equal(t, "BSYNRYMUTXBXSQ-UHFFFAOYSA-N\taspirin\t2244", lines[1])
}

func TestEncodeCSVRoundTrip(t *testing.T) {
	enc, err := encoding.New(encoding.FormatCSV)
	require.NoError(t, err)

	quoted := encoding.Record(`{"inchikey":"X","name":"2,4-dinitrophenol","pubchem":{"cid":1493}}`)
	out, err := enc.Encode([]encoding.Record{aspirin, quoted}, fields)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, fields, rows[0])
	assert.Equal(t, []string{"BSYNRYMUTXBXSQ-UHFFFAOYSA-N", "aspirin", "2244"}, rows[1])
	assert.Equal(t, []string{"X", "2,4-dinitrophenol", "1493"}, rows[2])
}

func TestEncodeJSON(t *testing.T) {
	enc, err := encoding.New(encoding.FormatJSON)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, fields)
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "aspirin", docs[0]["name"])

	empty, err := enc.Encode(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestEncodeYAML(t *testing.T) {
	enc, err := encoding.New(encoding.FormatYAML)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, fields)
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "aspirin", docs[0]["name"])
}

func TestEncodeSDF(t *testing.T) {
	enc, err := encoding.New(encoding.FormatSDF)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, fields)
	require.NoError(t, err)

	assert.Contains(t, out, "> <INCHIKEY>\nBSYNRYMUTXBXSQ-UHFFFAOYSA-N\n\n")
	assert.Contains(t, out, "> <NAME>\naspirin\n\n")
	assert.Contains(t, out, "> <PUBCHEM_CID>\n2244\n\n")
	assert.True(t, strings.HasSuffix(out, "$$$$\n"))
}

func TestEncodeMarkdown(t *testing.T) {
	enc, err := encoding.New(encoding.FormatMarkdown)
	require.NoError(t, err)

	piped := encoding.Record(`{"inchikey":"X","name":"a|b","pubchem":{"cid":1}}`)
	out, err := enc.Encode([]encoding.Record{piped}, fields)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| inchikey | name | pubchem.cid |", lines[0])
	assert.Equal(t, "| --- | --- | --- |", lines[1])
	assert.Equal(t, `| X | a\|b | 1 |`, lines[2])
}

func TestEncodeDefaultFields(t *testing.T) {
	enc, err := encoding.New(encoding.FormatTSV)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, nil)
	require.NoError(t, err)

	// Top-level keys of the first record, sorted.
	assert.True(t, strings.HasPrefix(out, "inchikey\tname\tpubchem\n"))
}

func TestEncodeMissingField(t *testing.T) {
	enc, err := encoding.New(encoding.FormatTSV)
	require.NoError(t, err)

	out, err := enc.Encode([]encoding.Record{aspirin}, []string{"inchikey", "drugbank.id"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "BSYNRYMUTXBXSQ-UHFFFAOYSA-N\t", lines[1])
}
