package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/script"
)

const (
	plannerMaxTokens   = 2500
	plannerTemperature = 0.7
)

// Planner turns a brief into the production plan and derives the word
// budget every later stage works against.
type Planner struct {
	rt *Runtime
}

// NewPlanner returns a planner on the given runtime.
func NewPlanner(rt *Runtime) *Planner {
	return &Planner{rt: rt}
}

// PlanInput parameterizes one planning call.
type PlanInput struct {
	Brief            podcast.Brief
	WordsPerMinute   int
	TolerancePercent float64
}

// PlanOutput is the planner's artifact plus its parsed form.
type PlanOutput struct {
	Markdown string
	Plan     *script.Plan
	Budget   podcast.WordBudget
	Warnings []string
}

type plannerPromptData struct {
	Topic            string
	Focus            string
	Mood             podcast.Mood
	Style            podcast.Style
	Chapters         int
	DurationMin      int
	TargetWords      int
	PerChapter       int
	LastChapterExtra bool
	LastChapterWords int
}

// Execute derives the word budget and requests the plan. Validation is
// lenient: more than two missing required sections fail the stage; a
// chapter count mismatch is only a warning because later stages adapt.
func (p *Planner) Execute(ctx context.Context, in PlanInput) (*PlanOutput, error) {
	brief := in.Brief.Normalize()
	budget := podcast.NewWordBudget(brief, in.WordsPerMinute, in.TolerancePercent)

	// Integer division leaves a remainder; the plan text assigns it to
	// the final chapter so estimates sum to the target.
	lastWords := budget.PerChapter
	if brief.Chapters > 0 {
		lastWords = budget.TotalWords - budget.PerChapter*(brief.Chapters-1)
	}

	user, err := renderPrompt("planner_user.tmpl", plannerPromptData{
		Topic:            brief.Topic,
		Focus:            brief.Focus,
		Mood:             brief.Mood,
		Style:            brief.Style,
		Chapters:         brief.Chapters,
		DurationMin:      brief.DurationMin,
		TargetWords:      budget.TotalWords,
		PerChapter:       budget.PerChapter,
		LastChapterExtra: lastWords != budget.PerChapter,
		LastChapterWords: lastWords,
	})
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepPlan, err)
	}

	text, err := p.rt.Complete(ctx, podcast.StepPlan, Request{
		System:      systemPrompt("planner_system.tmpl"),
		User:        user,
		MaxTokens:   plannerMaxTokens,
		Temperature: plannerTemperature,
	})
	if err != nil {
		return nil, err
	}

	missing := script.MissingSections(text, script.RequiredPlanSections)
	if len(missing) > 2 {
		return nil, podcast.NewError(podcast.ErrAgent, podcast.StepPlan,
			"plan is missing required sections: %s", strings.Join(missing, ", "))
	}

	out := &PlanOutput{
		Markdown: text,
		Plan:     script.ParsePlan(text),
		Budget:   budget,
	}
	if len(missing) > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("plan is missing sections: %s", strings.Join(missing, ", ")))
	}
	if got := len(out.Plan.Chapters); got != brief.Chapters {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("plan has %d chapters, brief asked for %d", got, brief.Chapters))
	}
	for _, w := range out.Warnings {
		p.rt.logger.Warn("plan validation", "job_id", p.rt.jobID, "warning", w)
	}
	return out, nil
}
