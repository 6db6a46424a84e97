// Package query implements the chemical query tools: full-text and fielded
// search, facet statistics, molecular-property ranges and Lucene query
// composition.
package query

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/cockroachdb/errors"
)

// DefaultFields is the default field projection for search results.
const DefaultFields = "inchikey,pubchem,chembl,drugbank,name"

const defaultSize = 10

// SearchRequest is the input of search_chemical.
type SearchRequest struct {
	Q         string `json:"q" jsonschema:"description=Query string such as a name (aspirin) formula (C9H8O4) or InChIKey" validate:"required"`
	Fields    string `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	Size      int    `json:"size,omitempty" jsonschema:"description=Number of results to return (max 1000),default=10" validate:"omitempty,min=0,max=1000"`
	From      int    `json:"from,omitempty" jsonschema:"description=Starting result offset for pagination" validate:"omitempty,min=0"`
	Sort      string `json:"sort,omitempty" jsonschema:"description=Sort order for results"`
	Facets    string `json:"facets,omitempty" jsonschema:"description=Facet fields for aggregation"`
	FacetSize int    `json:"facet_size,omitempty" jsonschema:"description=Number of facet results,default=10"`
	FetchAll  bool   `json:"fetch_all,omitempty" jsonschema:"description=Fetch all results (returns scroll_id)"`
	ScrollID  string `json:"scroll_id,omitempty" jsonschema:"description=Scroll ID for fetching the next batch"`
}

// SearchResult is the output of the search tools.
type SearchResult struct {
	Success  bool                    `json:"success"`
	Total    int                     `json:"total"`
	Took     int                     `json:"took"`
	Hits     []encoding.Record       `json:"hits"`
	ScrollID string                  `json:"scroll_id,omitempty"`
	Facets   map[string]mychem.Facet `json:"facets,omitempty"`
}

func runSearch(ctx context.Context, c *mychem.Client, req *SearchRequest) (*SearchResult, error) {
	params := map[string]string{"q": req.Q}
	if f := req.Fields; f != "" {
		params["fields"] = f
	} else {
		params["fields"] = DefaultFields
	}
	size := req.Size
	if size == 0 {
		size = defaultSize
	}
	params["size"] = strconv.Itoa(size)
	if req.From > 0 {
		params["from"] = strconv.Itoa(req.From)
	}
	if req.Sort != "" {
		params["sort"] = req.Sort
	}
	if req.Facets != "" {
		params["facets"] = req.Facets
		facetSize := req.FacetSize
		if facetSize == 0 {
			facetSize = defaultSize
		}
		params["facet_size"] = strconv.Itoa(facetSize)
	}
	if req.FetchAll {
		params["fetch_all"] = "true"
	}
	if req.ScrollID != "" {
		params["scroll_id"] = req.ScrollID
	}

	res, err := c.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	hits := res.Hits
	if hits == nil {
		hits = []encoding.Record{}
	}
	return &SearchResult{
		Success:  true,
		Total:    res.Total,
		Took:     res.Took,
		Hits:     hits,
		ScrollID: res.ScrollID,
		Facets:   res.Facets,
	}, nil
}

// NewSearchChemical creates the search_chemical tool.
func NewSearchChemical(c *mychem.Client) (*tools.Func[SearchRequest, SearchResult], error) {
	return tools.NewFunc("search_chemical",
		"Search for chemicals using various query types (name, formula, InChI, SMILES, etc.)",
		func(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
			return runSearch(ctx, c, req)
		})
}

// FieldSearchRequest is the input of search_by_field.
type FieldSearchRequest struct {
	FieldQueries map[string]string `json:"field_queries" jsonschema:"description=Field-value pairs to match" validate:"required,min=1"`
	Operator     string            `json:"operator,omitempty" jsonschema:"description=Boolean operator,enum=AND,enum=OR,default=AND" validate:"omitempty,oneof=AND OR"`
	Fields       string            `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	Size         int               `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=0,max=1000"`
}

// NewSearchByField creates the search_by_field tool.
func NewSearchByField(c *mychem.Client) (*tools.Func[FieldSearchRequest, SearchResult], error) {
	return tools.NewFunc("search_by_field",
		"Search chemicals by specific field values with boolean logic",
		func(ctx context.Context, req *FieldSearchRequest) (*SearchResult, error) {
			op := req.Operator
			if op == "" {
				op = "AND"
			}
			clauses := make([]string, 0, len(req.FieldQueries))
			for field, value := range req.FieldQueries {
				clauses = append(clauses, fieldClause(field, value))
			}
			// map iteration order is random, keep the query deterministic
			sort.Strings(clauses)

			return runSearch(ctx, c, &SearchRequest{
				Q:      strings.Join(clauses, " "+op+" "),
				Fields: req.Fields,
				Size:   req.Size,
			})
		})
}

// FieldStatsRequest is the input of get_field_statistics.
type FieldStatsRequest struct {
	Field string `json:"field" jsonschema:"description=Field to analyze such as chembl.molecule_type or drugbank.groups" validate:"required"`
	Size  int    `json:"size,omitempty" jsonschema:"description=Number of top values to return,default=100" validate:"omitempty,min=1,max=1000"`
}

// FieldStatsResult is the output of get_field_statistics.
type FieldStatsResult struct {
	Success           bool         `json:"success"`
	Field             string       `json:"field"`
	TotalUniqueValues int          `json:"total_unique_values"`
	TopValues         []FieldValue `json:"top_values"`
	TotalChemicals    int          `json:"total_chemicals"`
}

// FieldValue is one facet bucket with its share of all chemicals.
type FieldValue struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// NewFieldStatistics creates the get_field_statistics tool.
func NewFieldStatistics(c *mychem.Client) (*tools.Func[FieldStatsRequest, FieldStatsResult], error) {
	return tools.NewFunc("get_field_statistics",
		"Get statistics and top values for a specific field",
		func(ctx context.Context, req *FieldStatsRequest) (*FieldStatsResult, error) {
			size := req.Size
			if size == 0 {
				size = 100
			}
			res, err := c.Query(ctx, map[string]string{
				"q":          "*",
				"facets":     req.Field,
				"facet_size": strconv.Itoa(size),
				"size":       "0",
			})
			if err != nil {
				return nil, err
			}

			facet := res.Facets[req.Field]
			total := res.Total
			top := make([]FieldValue, 0, len(facet.Terms))
			for _, term := range facet.Terms {
				pct := 0.0
				if total > 0 {
					pct = round2(float64(term.Count) / float64(total) * 100)
				}
				top = append(top, FieldValue{
					Value:      term.Term,
					Count:      term.Count,
					Percentage: pct,
				})
			}
			return &FieldStatsResult{
				Success:           true,
				Field:             req.Field,
				TotalUniqueValues: facet.Total,
				TopValues:         top,
				TotalChemicals:    total,
			}, nil
		})
}

// PropertySearchRequest is the input of search_by_molecular_properties.
// Zero-valued bounds are left open.
type PropertySearchRequest struct {
	MinWeight float64 `json:"min_weight,omitempty" jsonschema:"description=Minimum molecular weight (g/mol)" validate:"omitempty,min=0"`
	MaxWeight float64 `json:"max_weight,omitempty" jsonschema:"description=Maximum molecular weight (g/mol)" validate:"omitempty,min=0"`
	MinLogP   float64 `json:"min_logp,omitempty" jsonschema:"description=Minimum logP"`
	MaxLogP   float64 `json:"max_logp,omitempty" jsonschema:"description=Maximum logP"`
	MaxTPSA   float64 `json:"max_tpsa,omitempty" jsonschema:"description=Maximum topological polar surface area" validate:"omitempty,min=0"`
	Fields    string  `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	Size      int     `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=0,max=1000"`
}

// NewPropertySearch creates the search_by_molecular_properties tool.
func NewPropertySearch(c *mychem.Client) (*tools.Func[PropertySearchRequest, SearchResult], error) {
	return tools.NewFunc("search_by_molecular_properties",
		"Search chemicals by molecular property ranges (weight, logP, TPSA)",
		func(ctx context.Context, req *PropertySearchRequest) (*SearchResult, error) {
			var clauses []string
			if req.MinWeight > 0 || req.MaxWeight > 0 {
				clauses = append(clauses, rangeClause("pubchem.molecular_weight", req.MinWeight, req.MaxWeight))
			}
			if req.MinLogP != 0 || req.MaxLogP != 0 {
				clauses = append(clauses, rangeClause("pubchem.xlogp", req.MinLogP, req.MaxLogP))
			}
			if req.MaxTPSA > 0 {
				clauses = append(clauses, rangeClause("pubchem.topological_polar_surface_area", 0, req.MaxTPSA))
			}
			if len(clauses) == 0 {
				return nil, errors.WithMessage(mychem.ErrInvalidArgument, "at least one property bound is required")
			}
			return runSearch(ctx, c, &SearchRequest{
				Q:      strings.Join(clauses, " AND "),
				Fields: req.Fields,
				Size:   req.Size,
			})
		})
}

// QueryClause is one term of build_complex_query.
type QueryClause struct {
	Field string `json:"field" jsonschema:"description=Field to query" validate:"required"`
	Value string `json:"value" jsonschema:"description=Value to match" validate:"required"`
	Not   bool   `json:"not,omitempty" jsonschema:"description=Negate this clause"`
}

// ComplexQueryRequest is the input of build_complex_query.
type ComplexQueryRequest struct {
	Clauses  []QueryClause `json:"clauses" jsonschema:"description=Query clauses to combine" validate:"required,min=1,dive"`
	Operator string        `json:"operator,omitempty" jsonschema:"description=Boolean operator joining the clauses,enum=AND,enum=OR,default=AND" validate:"omitempty,oneof=AND OR"`
	Fields   string        `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	Size     int           `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=0,max=1000"`
}

// ComplexQueryResult echoes the built query along with the hits.
type ComplexQueryResult struct {
	SearchResult
	Query string `json:"query"`
}

// NewComplexQuery creates the build_complex_query tool.
func NewComplexQuery(c *mychem.Client) (*tools.Func[ComplexQueryRequest, ComplexQueryResult], error) {
	return tools.NewFunc("build_complex_query",
		"Build and run a boolean query from field/value clauses",
		func(ctx context.Context, req *ComplexQueryRequest) (*ComplexQueryResult, error) {
			op := req.Operator
			if op == "" {
				op = "AND"
			}
			clauses := make([]string, 0, len(req.Clauses))
			for _, cl := range req.Clauses {
				clause := fieldClause(cl.Field, cl.Value)
				if cl.Not {
					clause = "NOT " + clause
				}
				clauses = append(clauses, clause)
			}
			q := strings.Join(clauses, " "+op+" ")

			res, err := runSearch(ctx, c, &SearchRequest{
				Q:      q,
				Fields: req.Fields,
				Size:   req.Size,
			})
			if err != nil {
				return nil, err
			}
			return &ComplexQueryResult{SearchResult: *res, Query: q}, nil
		})
}

// New returns all query tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	searchChemical, err := NewSearchChemical(c)
	if err != nil {
		return nil, err
	}
	searchByField, err := NewSearchByField(c)
	if err != nil {
		return nil, err
	}
	fieldStats, err := NewFieldStatistics(c)
	if err != nil {
		return nil, err
	}
	propSearch, err := NewPropertySearch(c)
	if err != nil {
		return nil, err
	}
	complexQuery, err := NewComplexQuery(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{searchChemical, searchByField, fieldStats, propSearch, complexQuery}, nil
}

// fieldClause quotes multi-word values.
func fieldClause(field, value string) string {
	if strings.Contains(value, " ") && !strings.HasPrefix(value, `"`) {
		value = `"` + value + `"`
	}
	return field + ":" + value
}

func rangeClause(field string, minVal, maxVal float64) string {
	lo, hi := "*", "*"
	if minVal != 0 {
		lo = formatNum(minVal)
	}
	if maxVal != 0 {
		hi = formatNum(maxVal)
	}
	return fmt.Sprintf("%s:[%s TO %s]", field, lo, hi)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
