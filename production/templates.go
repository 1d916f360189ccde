package production

// Production stage names.
const (
	StageDesign       = "design"
	StageMaterialPrep = "material_preparation"
	StageCutting      = "cutting"
	StagePrinting     = "printing"
	StageAssembly     = "assembly"
	StageFinishing    = "finishing"
	StageQualityCheck = "quality_check"
	StagePackaging    = "packaging"
)

// TemplateStage is one step of a workflow template.
type TemplateStage struct {
	Stage          string
	EstimatedHours float64
	Checks         []string
}

// Template is an ordered stage sequence for a box type.
type Template struct {
	BoxType string
	Stages  []TemplateStage
}

// templates maps box type to its workflow. "custom" is the fallback for
// unknown box types.
var templates = map[string]Template{
	"rigid": {
		BoxType: "rigid",
		Stages: []TemplateStage{
			{Stage: StageDesign, EstimatedHours: 4},
			{Stage: StageMaterialPrep, EstimatedHours: 2},
			{Stage: StageCutting, EstimatedHours: 3},
			{Stage: StageAssembly, EstimatedHours: 6},
			{Stage: StageFinishing, EstimatedHours: 4},
			{Stage: StageQualityCheck, EstimatedHours: 1, Checks: []string{"dimensions", "finish", "rigidity"}},
			{Stage: StagePackaging, EstimatedHours: 1},
		},
	},
	"corrugated": {
		BoxType: "corrugated",
		Stages: []TemplateStage{
			{Stage: StageDesign, EstimatedHours: 2},
			{Stage: StageMaterialPrep, EstimatedHours: 1},
			{Stage: StageCutting, EstimatedHours: 2},
			{Stage: StagePrinting, EstimatedHours: 3},
			{Stage: StageAssembly, EstimatedHours: 3},
			{Stage: StageQualityCheck, EstimatedHours: 1, Checks: []string{"dimensions", "print_quality", "flute_integrity"}},
			{Stage: StagePackaging, EstimatedHours: 1},
		},
	},
	"folding": {
		BoxType: "folding",
		Stages: []TemplateStage{
			{Stage: StageDesign, EstimatedHours: 3},
			{Stage: StageMaterialPrep, EstimatedHours: 1},
			{Stage: StageCutting, EstimatedHours: 2},
			{Stage: StagePrinting, EstimatedHours: 4},
			{Stage: StageAssembly, EstimatedHours: 2},
			{Stage: StageQualityCheck, EstimatedHours: 1, Checks: []string{"dimensions", "print_quality", "fold_lines"}},
			{Stage: StagePackaging, EstimatedHours: 1},
		},
	},
	"custom": {
		BoxType: "custom",
		Stages: []TemplateStage{
			{Stage: StageDesign, EstimatedHours: 6},
			{Stage: StageMaterialPrep, EstimatedHours: 2},
			{Stage: StageCutting, EstimatedHours: 4},
			{Stage: StageAssembly, EstimatedHours: 6},
			{Stage: StageFinishing, EstimatedHours: 4},
			{Stage: StageQualityCheck, EstimatedHours: 2, Checks: []string{"dimensions", "finish", "customer_spec"}},
			{Stage: StagePackaging, EstimatedHours: 1},
		},
	},
}

// stageDependencies is the fixed adjacency between stages. A generated
// task depends on these stages when they were generated earlier in the
// same pass.
var stageDependencies = map[string][]string{
	StageMaterialPrep: {StageDesign},
	StageCutting:      {StageMaterialPrep},
	StagePrinting:     {StageCutting},
	StageAssembly:     {StageCutting, StagePrinting},
	StageFinishing:    {StageAssembly},
	StageQualityCheck: {StageAssembly, StageFinishing},
	StagePackaging:    {StageQualityCheck},
}

// TemplateFor returns the workflow template for a box type, falling back
// to the generic custom template.
func TemplateFor(boxType string) Template {
	if t, ok := templates[boxType]; ok {
		return t
	}
	return templates["custom"]
}
