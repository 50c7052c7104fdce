package podcast

// Pipeline step names, reported in job progress and recorded on call
// traces. Order matches execution order.
const (
	StepPlan     = "plan"
	StepResearch = "research"
	StepOutline  = "outline"
	StepScript   = "script"
	StepTone     = "tone"
	StepEdit     = "edit"
	StepAudio    = "audio"
)

// TotalSteps is the fixed step count every job reports.
const TotalSteps = 7

// Steps lists the pipeline steps in execution order.
var Steps = []string{
	StepPlan,
	StepResearch,
	StepOutline,
	StepScript,
	StepTone,
	StepEdit,
	StepAudio,
}
