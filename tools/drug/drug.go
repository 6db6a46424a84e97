// Package drug implements drug-specific tools: drug search and
// interaction/target lookups across DrugBank, ChEMBL and PharmGKB.
package drug

import (
	"context"
	"strconv"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/tidwall/gjson"
)

// DefaultFields is the default projection for drug search results.
const DefaultFields = "drugbank,chembl,pubchem,name,pharmgkb"

// SearchRequest is the input of search_drug.
type SearchRequest struct {
	Query            string `json:"query" jsonschema:"description=Drug name or identifier" validate:"required"`
	Fields           string `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	IncludeWithdrawn bool   `json:"include_withdrawn,omitempty" jsonschema:"description=Include withdrawn drugs in results"`
	Size             int    `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=1,max=1000"`
}

// SearchResult is the output of search_drug.
type SearchResult struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Hits    []encoding.Record `json:"hits"`
}

// NewSearchDrug creates the search_drug tool.
func NewSearchDrug(c *mychem.Client) (*tools.Func[SearchRequest, SearchResult], error) {
	return tools.NewFunc("search_drug",
		"Search for drugs with information from DrugBank, ChEMBL, and other sources",
		func(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
			size := req.Size
			if size == 0 {
				size = 10
			}
			fields := req.Fields
			if fields == "" {
				fields = DefaultFields
			}
			res, err := c.Query(ctx, map[string]string{
				"q":      req.Query,
				"fields": fields,
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}

			hits := make([]encoding.Record, 0, len(res.Hits))
			for _, hit := range res.Hits {
				if !req.IncludeWithdrawn && isWithdrawn(hit) {
					continue
				}
				hits = append(hits, hit)
			}
			return &SearchResult{
				Success: true,
				Total:   len(hits),
				Hits:    hits,
			}, nil
		})
}

func isWithdrawn(hit encoding.Record) bool {
	groups := gjson.GetBytes(hit, "drugbank.groups")
	if !groups.Exists() {
		return false
	}
	withdrawn := false
	groups.ForEach(func(_, value gjson.Result) bool {
		if value.String() == "withdrawn" {
			withdrawn = true
			return false
		}
		return true
	})
	return withdrawn
}

// IDRequest addresses one drug by identifier.
type IDRequest struct {
	DrugID string `json:"drug_id" jsonschema:"description=Drug identifier such as an InChIKey or ChEMBL ID" validate:"required"`
}

// Interaction is one drug-drug interaction.
type Interaction struct {
	Drug        string `json:"drug,omitempty"`
	DrugID      string `json:"drug_id,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// InteractionsResult is the output of get_drug_interactions.
type InteractionsResult struct {
	Success           bool          `json:"success"`
	DrugID            string        `json:"drug_id"`
	TotalInteractions int           `json:"total_interactions"`
	Interactions      []Interaction `json:"interactions"`
}

// NewDrugInteractions creates the get_drug_interactions tool.
func NewDrugInteractions(c *mychem.Client) (*tools.Func[IDRequest, InteractionsResult], error) {
	return tools.NewFunc("get_drug_interactions",
		"Get drug-drug interaction information",
		func(ctx context.Context, req *IDRequest) (*InteractionsResult, error) {
			raw, err := c.GetChem(ctx, req.DrugID, map[string]string{
				"fields": "drugbank.drug_interactions,chembl.drug_mechanisms",
			})
			if err != nil {
				return nil, err
			}

			interactions := []Interaction{}
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.drug_interactions"), func(item gjson.Result) {
				interactions = append(interactions, Interaction{
					Drug:        item.Get("name").String(),
					DrugID:      item.Get("drugbank-id").String(),
					Description: item.Get("description").String(),
					Source:      "drugbank",
				})
			})
			return &InteractionsResult{
				Success:           true,
				DrugID:            req.DrugID,
				TotalInteractions: len(interactions),
				Interactions:      interactions,
			}, nil
		})
}

// Targets groups drug targets by source.
type Targets struct {
	DrugBankTargets []encoding.Record `json:"drugbank_targets"`
	ChemblTargets   []encoding.Record `json:"chembl_targets"`
	PharmgkbGenes   []encoding.Record `json:"pharmgkb_genes"`
}

// TargetsResult is the output of get_drug_targets.
type TargetsResult struct {
	Success bool    `json:"success"`
	DrugID  string  `json:"drug_id"`
	Targets Targets `json:"targets"`
}

// NewDrugTargets creates the get_drug_targets tool.
func NewDrugTargets(c *mychem.Client) (*tools.Func[IDRequest, TargetsResult], error) {
	return tools.NewFunc("get_drug_targets",
		"Get drug target proteins and mechanisms",
		func(ctx context.Context, req *IDRequest) (*TargetsResult, error) {
			raw, err := c.GetChem(ctx, req.DrugID, map[string]string{
				"fields": "drugbank.targets,chembl.target_component,pharmgkb.gene",
			})
			if err != nil {
				return nil, err
			}

			targets := Targets{
				DrugBankTargets: []encoding.Record{},
				ChemblTargets:   []encoding.Record{},
				PharmgkbGenes:   []encoding.Record{},
			}
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.targets"), func(item gjson.Result) {
				targets.DrugBankTargets = append(targets.DrugBankTargets, encoding.Record(item.Raw))
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "chembl.target_component"), func(item gjson.Result) {
				targets.ChemblTargets = append(targets.ChemblTargets, encoding.Record(item.Raw))
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "pharmgkb.gene"), func(item gjson.Result) {
				targets.PharmgkbGenes = append(targets.PharmgkbGenes, encoding.Record(item.Raw))
			})
			return &TargetsResult{
				Success: true,
				DrugID:  req.DrugID,
				Targets: targets,
			}, nil
		})
}

// New returns the drug tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	search, err := NewSearchDrug(c)
	if err != nil {
		return nil, err
	}
	interactions, err := NewDrugInteractions(c)
	if err != nil {
		return nil, err
	}
	targets, err := NewDrugTargets(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{search, interactions, targets}, nil
}
