// Package export implements dataset export tools. The output of these
// tools is the rendered document itself rather than a JSON envelope.
package export

import (
	"context"
	"strconv"
	"strings"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
)

// DefaultFields is the default projection for exports.
var DefaultFields = []string{
	"inchikey", "name", "pubchem.cid",
	"chembl.molecule_chembl_id", "drugbank.id", "molecular_formula",
}

// ListRequest is the input of export_chemical_list.
type ListRequest struct {
	ChemicalIDs []string `json:"chemical_ids" jsonschema:"description=List of chemical IDs to export" validate:"required,min=1"`
	Format      string   `json:"format,omitempty" jsonschema:"description=Export format,enum=tsv,enum=csv,enum=json,enum=yaml,enum=sdf,enum=markdown,default=tsv"`
	Fields      []string `json:"fields,omitempty" jsonschema:"description=Fields to include in the export"`
}

// Document is a rendered export.
type Document struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// renderDocument emits the document body as-is instead of a JSON envelope.
func renderDocument(doc *Document) (string, error) {
	return doc.Content, nil
}

// NewExportList creates the export_chemical_list tool. The format is
// checked before any upstream request is made.
func NewExportList(c *mychem.Client) (*tools.Func[ListRequest, Document], error) {
	t, err := tools.NewFunc("export_chemical_list",
		"Export chemical data in various formats (TSV CSV JSON YAML SDF Markdown)",
		func(ctx context.Context, req *ListRequest) (*Document, error) {
			format := req.Format
			if format == "" {
				format = string(encoding.FormatTSV)
			}
			enc, err := encoding.New(encoding.Format(format))
			if err != nil {
				return nil, err
			}

			fields := req.Fields
			if len(fields) == 0 {
				fields = DefaultFields
			}
			records, err := c.PostChem(ctx, req.ChemicalIDs, map[string]any{
				"fields": strings.Join(fields, ","),
			})
			if err != nil {
				return nil, err
			}

			content, err := enc.Encode(records, fields)
			if err != nil {
				return nil, err
			}
			return &Document{Format: format, Content: content}, nil
		})
	if err != nil {
		return nil, err
	}
	return t.WithRenderer(renderDocument), nil
}

// FilteredRequest is the input of export_filtered_dataset.
type FilteredRequest struct {
	Query  string   `json:"query" jsonschema:"description=Query string selecting the chemicals to export" validate:"required"`
	Format string   `json:"format,omitempty" jsonschema:"description=Export format,enum=tsv,enum=csv,enum=json,enum=yaml,enum=sdf,enum=markdown,default=tsv"`
	Fields []string `json:"fields,omitempty" jsonschema:"description=Fields to include in the export"`
	Size   int      `json:"size,omitempty" jsonschema:"description=Maximum number of records,default=100" validate:"omitempty,min=1,max=1000"`
}

// NewExportFiltered creates the export_filtered_dataset tool. It runs a
// search and renders the hits in the requested format.
func NewExportFiltered(c *mychem.Client) (*tools.Func[FilteredRequest, Document], error) {
	t, err := tools.NewFunc("export_filtered_dataset",
		"Export the results of a chemical search in various formats",
		func(ctx context.Context, req *FilteredRequest) (*Document, error) {
			format := req.Format
			if format == "" {
				format = string(encoding.FormatTSV)
			}
			enc, err := encoding.New(encoding.Format(format))
			if err != nil {
				return nil, err
			}

			fields := req.Fields
			if len(fields) == 0 {
				fields = DefaultFields
			}
			size := req.Size
			if size == 0 {
				size = 100
			}
			res, err := c.Query(ctx, map[string]string{
				"q":      req.Query,
				"fields": strings.Join(fields, ","),
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}

			content, err := enc.Encode(res.Hits, fields)
			if err != nil {
				return nil, err
			}
			return &Document{Format: format, Content: content}, nil
		})
	if err != nil {
		return nil, err
	}
	return t.WithRenderer(renderDocument), nil
}

// New returns the export tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	list, err := NewExportList(c)
	if err != nil {
		return nil, err
	}
	filtered, err := NewExportFiltered(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{list, filtered}, nil
}
