// Package biocontext implements biological context tools: pathways,
// disease associations, indications and mechanisms of action.
package biocontext

import (
	"context"
	"strconv"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/tidwall/gjson"
)

// IDRequest addresses one chemical by identifier.
type IDRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
}

// Pathway is one pathway association, normalized across sources.
type Pathway struct {
	Source   string `json:"source"`
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
}

// PathwayData groups the pathway and protein associations of a chemical.
type PathwayData struct {
	ChemicalID   string            `json:"chemical_id"`
	Pathways     []Pathway         `json:"pathways"`
	Enzymes      []encoding.Record `json:"enzymes"`
	Transporters []encoding.Record `json:"transporters"`
	Carriers     []encoding.Record `json:"carriers"`
	Metabolism   encoding.Record   `json:"metabolism,omitempty"`
}

// PathwayResult is the output of get_pathway_associations.
type PathwayResult struct {
	Success             bool        `json:"success"`
	PathwayAssociations PathwayData `json:"pathway_associations"`
}

// NewPathwayAssociations creates the get_pathway_associations tool.
func NewPathwayAssociations(c *mychem.Client) (*tools.Func[IDRequest, PathwayResult], error) {
	return tools.NewFunc("get_pathway_associations",
		"Get metabolic and signaling pathway associations for a chemical",
		func(ctx context.Context, req *IDRequest) (*PathwayResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "pharmgkb.pathways,drugbank.pathways,chembl.metabolism," +
					"drugbank.enzymes,drugbank.transporters,drugbank.carriers",
			})
			if err != nil {
				return nil, err
			}

			data := PathwayData{
				ChemicalID:   req.ChemicalID,
				Pathways:     []Pathway{},
				Enzymes:      []encoding.Record{},
				Transporters: []encoding.Record{},
				Carriers:     []encoding.Record{},
			}
			chemjson.ForEachItem(gjson.GetBytes(raw, "pharmgkb.pathways"), func(item gjson.Result) {
				data.Pathways = append(data.Pathways, Pathway{
					Source: "pharmgkb",
					Name:   item.Get("name").String(),
					ID:     item.Get("id").String(),
				})
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.pathways"), func(item gjson.Result) {
				data.Pathways = append(data.Pathways, Pathway{
					Source:   "drugbank",
					Name:     item.Get("name").String(),
					Category: item.Get("category").String(),
				})
			})
			collect := func(dst *[]encoding.Record, path string) {
				chemjson.ForEachItem(gjson.GetBytes(raw, path), func(item gjson.Result) {
					*dst = append(*dst, encoding.Record(item.Raw))
				})
			}
			collect(&data.Enzymes, "drugbank.enzymes")
			collect(&data.Transporters, "drugbank.transporters")
			collect(&data.Carriers, "drugbank.carriers")
			if res := gjson.GetBytes(raw, "chembl.metabolism"); res.Exists() {
				data.Metabolism = encoding.Record(res.Raw)
			}
			return &PathwayResult{Success: true, PathwayAssociations: data}, nil
		})
}

// Indication is one approved indication with its source.
type Indication struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

// DiseaseAssociation is one disease or indication association.
type DiseaseAssociation struct {
	Source     string `json:"source"`
	Indication string `json:"indication,omitempty"`
	Disease    string `json:"disease,omitempty"`
	ID         string `json:"id,omitempty"`
}

// DiseaseData groups the disease annotations of a chemical.
type DiseaseData struct {
	ChemicalID            string               `json:"chemical_id"`
	ApprovedIndications   []Indication         `json:"approved_indications"`
	DiseaseAssociations   []DiseaseAssociation `json:"disease_associations"`
	TherapeuticCategories []encoding.Record    `json:"therapeutic_categories"`
	Pharmacodynamics      string               `json:"pharmacodynamics,omitempty"`
}

// DiseaseRequest is the input of get_disease_associations.
type DiseaseRequest struct {
	ChemicalID      string `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
	IncludeOfflabel bool   `json:"include_offlabel,omitempty" jsonschema:"description=Include off-label uses,default=false"`
}

// DiseaseResult is the output of get_disease_associations.
type DiseaseResult struct {
	Success             bool        `json:"success"`
	DiseaseAssociations DiseaseData `json:"disease_associations"`
}

// NewDiseaseAssociations creates the get_disease_associations tool.
func NewDiseaseAssociations(c *mychem.Client) (*tools.Func[DiseaseRequest, DiseaseResult], error) {
	return tools.NewFunc("get_disease_associations",
		"Get disease associations and therapeutic indications",
		func(ctx context.Context, req *DiseaseRequest) (*DiseaseResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "drugbank.indication,drugbank.pharmacodynamics," +
					"chembl.indication_class,pharmgkb.diseases,drugbank.categories",
			})
			if err != nil {
				return nil, err
			}

			data := DiseaseData{
				ChemicalID:            req.ChemicalID,
				ApprovedIndications:   []Indication{},
				DiseaseAssociations:   []DiseaseAssociation{},
				TherapeuticCategories: []encoding.Record{},
			}
			if res := gjson.GetBytes(raw, "drugbank.indication"); res.Exists() {
				data.ApprovedIndications = append(data.ApprovedIndications, Indication{
					Source:      "drugbank",
					Description: res.String(),
				})
			}
			data.Pharmacodynamics = gjson.GetBytes(raw, "drugbank.pharmacodynamics").String()
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.categories"), func(item gjson.Result) {
				data.TherapeuticCategories = append(data.TherapeuticCategories, encoding.Record(item.Raw))
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "chembl.indication_class"), func(item gjson.Result) {
				data.DiseaseAssociations = append(data.DiseaseAssociations, DiseaseAssociation{
					Source:     "chembl",
					Indication: item.String(),
				})
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "pharmgkb.diseases"), func(item gjson.Result) {
				data.DiseaseAssociations = append(data.DiseaseAssociations, DiseaseAssociation{
					Source:  "pharmgkb",
					Disease: item.Get("name").String(),
					ID:      item.Get("id").String(),
				})
			})
			return &DiseaseResult{Success: true, DiseaseAssociations: data}, nil
		})
}

// IndicationRequest is the input of search_by_indication.
type IndicationRequest struct {
	Indication string `json:"indication" jsonschema:"description=Disease or condition to treat" validate:"required"`
	DrugStatus string `json:"drug_status,omitempty" jsonschema:"description=Drug approval status filter,enum=approved,enum=investigational,enum=experimental,default=approved" validate:"omitempty,oneof=approved investigational experimental"`
	Size       int    `json:"size,omitempty" jsonschema:"description=Number of results,default=20" validate:"omitempty,min=1,max=1000"`
}

// IndicationDrug is one drug matched by indication.
type IndicationDrug struct {
	InChIKey   string          `json:"inchikey"`
	Name       string          `json:"name,omitempty"`
	Indication string          `json:"indication,omitempty"`
	Status     encoding.Record `json:"status,omitempty"`
	MaxPhase   string          `json:"max_phase,omitempty"`
}

// IndicationResult is the output of search_by_indication.
type IndicationResult struct {
	Success          bool             `json:"success"`
	QueryIndication  string           `json:"query_indication"`
	DrugStatusFilter string           `json:"drug_status_filter,omitempty"`
	TotalFound       int              `json:"total_found"`
	Drugs            []IndicationDrug `json:"drugs"`
}

// NewSearchByIndication creates the search_by_indication tool.
func NewSearchByIndication(c *mychem.Client) (*tools.Func[IndicationRequest, IndicationResult], error) {
	return tools.NewFunc("search_by_indication",
		"Search for drugs by therapeutic indication",
		func(ctx context.Context, req *IndicationRequest) (*IndicationResult, error) {
			status := req.DrugStatus
			if status == "" {
				status = "approved"
			}
			size := req.Size
			if size == 0 {
				size = 20
			}
			q := `drugbank.indication:"` + req.Indication + `" AND drugbank.groups:"` + status + `"`
			res, err := c.Query(ctx, map[string]string{
				"q":      q,
				"fields": "inchikey,drugbank.name,drugbank.indication,drugbank.groups,chembl.max_phase",
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}

			drugs := []IndicationDrug{}
			for _, hit := range res.Hits {
				drug := IndicationDrug{
					InChIKey:   gjson.GetBytes(hit, "_id").String(),
					Name:       gjson.GetBytes(hit, "drugbank.name").String(),
					Indication: gjson.GetBytes(hit, "drugbank.indication").String(),
					MaxPhase:   gjson.GetBytes(hit, "chembl.max_phase").String(),
				}
				if groups := gjson.GetBytes(hit, "drugbank.groups"); groups.Exists() {
					drug.Status = encoding.Record(groups.Raw)
				}
				drugs = append(drugs, drug)
			}
			return &IndicationResult{
				Success:          true,
				QueryIndication:  req.Indication,
				DrugStatusFilter: status,
				TotalFound:       len(drugs),
				Drugs:            drugs,
			}, nil
		})
}

// Mechanism is one mechanism of action entry.
type Mechanism struct {
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	ActionType  string `json:"action_type,omitempty"`
	Mechanism   string `json:"mechanism,omitempty"`
	Target      string `json:"target,omitempty"`
}

// PrimaryTarget is one target with recorded actions.
type PrimaryTarget struct {
	Name     string          `json:"name,omitempty"`
	GeneName string          `json:"gene_name,omitempty"`
	Actions  encoding.Record `json:"actions,omitempty"`
	Organism string          `json:"organism,omitempty"`
}

// MOAData groups mechanism of action details.
type MOAData struct {
	ChemicalID     string          `json:"chemical_id"`
	Mechanisms     []Mechanism     `json:"mechanisms"`
	PrimaryTargets []PrimaryTarget `json:"primary_targets"`
}

// MOAResult is the output of get_mechanism_of_action.
type MOAResult struct {
	Success           bool    `json:"success"`
	MechanismOfAction MOAData `json:"mechanism_of_action"`
}

// NewMechanismOfAction creates the get_mechanism_of_action tool.
func NewMechanismOfAction(c *mychem.Client) (*tools.Func[IDRequest, MOAResult], error) {
	return tools.NewFunc("get_mechanism_of_action",
		"Get detailed mechanism of action information",
		func(ctx context.Context, req *IDRequest) (*MOAResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "drugbank.mechanism_of_action,chembl.drug_mechanisms," +
					"drugbank.pharmacodynamics,drugbank.targets",
			})
			if err != nil {
				return nil, err
			}

			data := MOAData{
				ChemicalID:     req.ChemicalID,
				Mechanisms:     []Mechanism{},
				PrimaryTargets: []PrimaryTarget{},
			}
			if res := gjson.GetBytes(raw, "drugbank.mechanism_of_action"); res.Exists() {
				data.Mechanisms = append(data.Mechanisms, Mechanism{
					Source:      "drugbank",
					Description: res.String(),
					Type:        "detailed",
				})
			}
			chemjson.ForEachItem(gjson.GetBytes(raw, "drugbank.targets"), func(item gjson.Result) {
				actions := item.Get("actions")
				if !actions.Exists() {
					return
				}
				data.PrimaryTargets = append(data.PrimaryTargets, PrimaryTarget{
					Name:     item.Get("name").String(),
					GeneName: item.Get("gene_name").String(),
					Actions:  encoding.Record(actions.Raw),
					Organism: item.Get("organism").String(),
				})
			})
			chemjson.ForEachItem(gjson.GetBytes(raw, "chembl.drug_mechanisms"), func(item gjson.Result) {
				data.Mechanisms = append(data.Mechanisms, Mechanism{
					Source:     "chembl",
					ActionType: item.Get("action_type").String(),
					Mechanism:  item.Get("mechanism_of_action").String(),
					Target:     item.Get("target_name").String(),
				})
			})
			return &MOAResult{Success: true, MechanismOfAction: data}, nil
		})
}

// TargetClassRequest is the input of find_drugs_by_target_class.
type TargetClassRequest struct {
	TargetClass            string `json:"target_class" jsonschema:"description=Target protein class such as Kinase or GPCR" validate:"required"`
	IncludeInvestigational bool   `json:"include_investigational,omitempty" jsonschema:"description=Include investigational drugs,default=false"`
	Size                   int    `json:"size,omitempty" jsonschema:"description=Number of results,default=20" validate:"omitempty,min=1,max=1000"`
}

// DrugMechanism is the action/target pair of one mechanism.
type DrugMechanism struct {
	Action string `json:"action,omitempty"`
	Target string `json:"target,omitempty"`
}

// TargetClassDrug is one drug matched by target class.
type TargetClassDrug struct {
	InChIKey         string          `json:"inchikey"`
	Name             string          `json:"name,omitempty"`
	TargetClasses    encoding.Record `json:"target_classes,omitempty"`
	DevelopmentPhase string          `json:"development_phase,omitempty"`
	Mechanisms       []DrugMechanism `json:"mechanisms"`
}

// TargetClassResult is the output of find_drugs_by_target_class.
type TargetClassResult struct {
	Success                bool              `json:"success"`
	TargetClassQuery       string            `json:"target_class_query"`
	IncludeInvestigational bool              `json:"include_investigational"`
	TotalFound             int               `json:"total_found"`
	Drugs                  []TargetClassDrug `json:"drugs"`
}

// NewDrugsByTargetClass creates the find_drugs_by_target_class tool.
func NewDrugsByTargetClass(c *mychem.Client) (*tools.Func[TargetClassRequest, TargetClassResult], error) {
	return tools.NewFunc("find_drugs_by_target_class",
		"Find drugs that act on a specific target class such as Kinase or GPCR",
		func(ctx context.Context, req *TargetClassRequest) (*TargetClassResult, error) {
			size := req.Size
			if size == 0 {
				size = 20
			}
			q := `chembl.target_class:"` + req.TargetClass + `"`
			if !req.IncludeInvestigational {
				q += " AND chembl.max_phase:4"
			}
			res, err := c.Query(ctx, map[string]string{
				"q":      q,
				"fields": "inchikey,chembl.pref_name,chembl.target_class,chembl.max_phase,chembl.drug_mechanisms",
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}

			drugs := []TargetClassDrug{}
			for _, hit := range res.Hits {
				drug := TargetClassDrug{
					InChIKey:         gjson.GetBytes(hit, "_id").String(),
					Name:             gjson.GetBytes(hit, "chembl.pref_name").String(),
					DevelopmentPhase: gjson.GetBytes(hit, "chembl.max_phase").String(),
					Mechanisms:       []DrugMechanism{},
				}
				if classes := gjson.GetBytes(hit, "chembl.target_class"); classes.Exists() {
					drug.TargetClasses = encoding.Record(classes.Raw)
				}
				chemjson.ForEachItem(gjson.GetBytes(hit, "chembl.drug_mechanisms"), func(item gjson.Result) {
					drug.Mechanisms = append(drug.Mechanisms, DrugMechanism{
						Action: item.Get("action_type").String(),
						Target: item.Get("target_name").String(),
					})
				})
				drugs = append(drugs, drug)
			}
			return &TargetClassResult{
				Success:                true,
				TargetClassQuery:       req.TargetClass,
				IncludeInvestigational: req.IncludeInvestigational,
				TotalFound:             len(drugs),
				Drugs:                  drugs,
			}, nil
		})
}

// New returns the biological context tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	pathways, err := NewPathwayAssociations(c)
	if err != nil {
		return nil, err
	}
	diseases, err := NewDiseaseAssociations(c)
	if err != nil {
		return nil, err
	}
	indication, err := NewSearchByIndication(c)
	if err != nil {
		return nil, err
	}
	moa, err := NewMechanismOfAction(c)
	if err != nil {
		return nil, err
	}
	targetClass, err := NewDrugsByTargetClass(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{pathways, diseases, indication, moa, targetClass}, nil
}
