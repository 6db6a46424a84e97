// Package patent implements patent lookup tools backed by the PharmGKB,
// DrugBank and ChEMBL patent annotations.
package patent

import (
	"context"
	"strconv"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/tidwall/gjson"
)

// Patent is one patent record, normalized across sources.
type Patent struct {
	PatentNumber string `json:"patent_number,omitempty"`
	Country      string `json:"country,omitempty"`
	Approved     string `json:"approved,omitempty"`
	Expires      string `json:"expires,omitempty"`
	Source       string `json:"source"`
}

// PatentData is the per-chemical patent collection.
type PatentData struct {
	ChemicalID string   `json:"chemical_id"`
	Patents    []Patent `json:"patents"`
}

// GetResult is the output of get_patent_data.
type GetResult struct {
	Success      bool       `json:"success"`
	TotalPatents int        `json:"total_patents"`
	PatentData   PatentData `json:"patent_data"`
}

// IDRequest addresses one chemical by identifier.
type IDRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
}

// NewGetPatentData creates the get_patent_data tool.
func NewGetPatentData(c *mychem.Client) (*tools.Func[IDRequest, GetResult], error) {
	return tools.NewFunc("get_patent_data",
		"Get patent information for a chemical",
		func(ctx context.Context, req *IDRequest) (*GetResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "pharmgkb.patent,drugbank.patents,chembl.patent",
			})
			if err != nil {
				return nil, err
			}

			patents := []Patent{}
			chemjson.ForEachItem(gjson.GetBytes(raw, "pharmgkb.patent"), func(item gjson.Result) {
				patents = append(patents, Patent{
					PatentNumber: item.String(),
					Source:       "pharmgkb",
				})
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.patents"), func(item gjson.Result) {
				patents = append(patents, Patent{
					PatentNumber: item.Get("number").String(),
					Country:      item.Get("country").String(),
					Approved:     item.Get("approved").String(),
					Expires:      item.Get("expires").String(),
					Source:       "drugbank",
				})
			})
			return &GetResult{
				Success:      true,
				TotalPatents: len(patents),
				PatentData: PatentData{
					ChemicalID: req.ChemicalID,
					Patents:    patents,
				},
			}, nil
		})
}

// SearchRequest is the input of search_patents_by_chemical.
type SearchRequest struct {
	ChemicalName string `json:"chemical_name" jsonschema:"description=Chemical name to search for" validate:"required"`
	Size         int    `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=1,max=1000"`
}

// SearchResult is the output of search_patents_by_chemical.
type SearchResult struct {
	Success bool              `json:"success"`
	Query   string            `json:"query"`
	Total   int               `json:"total"`
	Hits    []encoding.Record `json:"hits"`
}

// NewSearchPatents creates the search_patents_by_chemical tool.
func NewSearchPatents(c *mychem.Client) (*tools.Func[SearchRequest, SearchResult], error) {
	return tools.NewFunc("search_patents_by_chemical",
		"Search for chemicals mentioned in patents",
		func(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
			size := req.Size
			if size == 0 {
				size = 10
			}
			res, err := c.Query(ctx, map[string]string{
				"q": `_exists_:pharmgkb.patent OR _exists_:drugbank.patents OR _exists_:chembl.patent AND name:"` +
					req.ChemicalName + `"`,
				"fields": "inchikey,name,pharmgkb.patent,drugbank.patents,chembl.patent",
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}
			hits := res.Hits
			if hits == nil {
				hits = []encoding.Record{}
			}
			return &SearchResult{
				Success: true,
				Query:   req.ChemicalName,
				Total:   res.Total,
				Hits:    hits,
			}, nil
		})
}

// New returns the patent tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	getData, err := NewGetPatentData(c)
	if err != nil {
		return nil, err
	}
	search, err := NewSearchPatents(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{getData, search}, nil
}
