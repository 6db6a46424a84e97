// Package admet implements ADMET tools: absorption, distribution,
// metabolism, excretion and toxicity properties.
package admet

import (
	"context"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/tidwall/gjson"
)

// IDRequest addresses one chemical by identifier.
type IDRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
}

// Properties groups ADMET data by category, with one entry per source.
type Properties struct {
	ChemicalID      string                     `json:"chemical_id"`
	Absorption      map[string]encoding.Record `json:"absorption"`
	Distribution    map[string]encoding.Record `json:"distribution"`
	Metabolism      map[string]encoding.Record `json:"metabolism"`
	Excretion       map[string]encoding.Record `json:"excretion"`
	Toxicity        map[string]encoding.Record `json:"toxicity"`
	Physicochemical map[string]encoding.Record `json:"physicochemical"`
}

// PropertiesResult is the output of get_admet_properties.
type PropertiesResult struct {
	Success         bool       `json:"success"`
	AdmetProperties Properties `json:"admet_properties"`
}

// admetFields lists the per-category upstream fields per source.
var admetFields = "chembl.absorption,chembl.distribution,chembl.metabolism," +
	"chembl.excretion,chembl.toxicity," +
	"drugbank.absorption,drugbank.metabolism,drugbank.toxicity," +
	"pubchem.molecular_weight,pubchem.logp,pubchem.tpsa"

// NewProperties creates the get_admet_properties tool.
func NewProperties(c *mychem.Client) (*tools.Func[IDRequest, PropertiesResult], error) {
	return tools.NewFunc("get_admet_properties",
		"Get ADMET (Absorption, Distribution, Metabolism, Excretion, Toxicity) properties",
		func(ctx context.Context, req *IDRequest) (*PropertiesResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{"fields": admetFields})
			if err != nil {
				return nil, err
			}

			props := Properties{
				ChemicalID:      req.ChemicalID,
				Absorption:      map[string]encoding.Record{},
				Distribution:    map[string]encoding.Record{},
				Metabolism:      map[string]encoding.Record{},
				Excretion:       map[string]encoding.Record{},
				Toxicity:        map[string]encoding.Record{},
				Physicochemical: map[string]encoding.Record{},
			}
			collect := func(dst map[string]encoding.Record, source, path string) {
				if res := gjson.GetBytes(raw, path); res.Exists() {
					dst[source] = encoding.Record(res.Raw)
				}
			}
			collect(props.Absorption, "chembl", "chembl.absorption")
			collect(props.Distribution, "chembl", "chembl.distribution")
			collect(props.Metabolism, "chembl", "chembl.metabolism")
			collect(props.Excretion, "chembl", "chembl.excretion")
			collect(props.Toxicity, "chembl", "chembl.toxicity")
			collect(props.Absorption, "drugbank", "drugbank.absorption")
			collect(props.Metabolism, "drugbank", "drugbank.metabolism")
			collect(props.Toxicity, "drugbank", "drugbank.toxicity")
			collect(props.Physicochemical, "molecular_weight", "pubchem.molecular_weight")
			collect(props.Physicochemical, "logp", "pubchem.logp")
			collect(props.Physicochemical, "tpsa", "pubchem.tpsa")

			return &PropertiesResult{Success: true, AdmetProperties: props}, nil
		})
}

// ToxicityData groups toxicity findings by kind and source.
type ToxicityData struct {
	ChemicalID           string                     `json:"chemical_id"`
	AcuteToxicity        map[string]encoding.Record `json:"acute_toxicity"`
	ChronicToxicity      map[string]encoding.Record `json:"chronic_toxicity"`
	HazardClassification map[string]encoding.Record `json:"hazard_classification"`
	ChemblToxicity       encoding.Record            `json:"chembl_toxicity,omitempty"`
	DrugbankToxicity     encoding.Record            `json:"drugbank_toxicity,omitempty"`
}

// ToxicityResult is the output of predict_toxicity.
type ToxicityResult struct {
	Success      bool         `json:"success"`
	ToxicityData ToxicityData `json:"toxicity_data"`
}

// NewToxicity creates the predict_toxicity tool.
func NewToxicity(c *mychem.Client) (*tools.Func[IDRequest, ToxicityResult], error) {
	return tools.NewFunc("predict_toxicity",
		"Get toxicity predictions and hazard classifications",
		func(ctx context.Context, req *IDRequest) (*ToxicityResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "chembl.toxicity,drugbank.toxicity,pubchem.ld50,pharmgkb.toxicity,ghs.hazard_statements",
			})
			if err != nil {
				return nil, err
			}

			data := ToxicityData{
				ChemicalID:           req.ChemicalID,
				AcuteToxicity:        map[string]encoding.Record{},
				ChronicToxicity:      map[string]encoding.Record{},
				HazardClassification: map[string]encoding.Record{},
			}
			if res := gjson.GetBytes(raw, "chembl.toxicity"); res.Exists() {
				data.ChemblToxicity = encoding.Record(res.Raw)
			}
			if res := gjson.GetBytes(raw, "drugbank.toxicity"); res.Exists() {
				data.DrugbankToxicity = encoding.Record(res.Raw)
			}
			if res := gjson.GetBytes(raw, "pubchem.ld50"); res.Exists() {
				data.AcuteToxicity["ld50"] = encoding.Record(res.Raw)
			}
			if res := gjson.GetBytes(raw, "ghs.hazard_statements"); res.Exists() {
				data.HazardClassification["ghs"] = encoding.Record(res.Raw)
			}
			return &ToxicityResult{Success: true, ToxicityData: data}, nil
		})
}

// New returns the ADMET tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	properties, err := NewProperties(c)
	if err != nil {
		return nil, err
	}
	toxicity, err := NewToxicity(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{properties, toxicity}, nil
}
