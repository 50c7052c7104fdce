package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/script"
)

const (
	outlinerMaxTokens   = 3500
	outlinerTemperature = 0.7

	// chapterCountTolerance allows the outline to drift one chapter from
	// the plan before the stage fails.
	chapterCountTolerance = 1
)

// Outliner expands the plan and research notes into the chapter-level
// outline the scripters work from.
type Outliner struct {
	rt *Runtime
}

// NewOutliner returns an outliner on the given runtime.
func NewOutliner(rt *Runtime) *Outliner {
	return &Outliner{rt: rt}
}

// OutlineInput parameterizes one outlining call.
type OutlineInput struct {
	Brief       podcast.Brief
	Plan        string
	Research    string
	TargetWords int
}

// OutlineOutput is the outliner's artifact plus its parsed form.
type OutlineOutput struct {
	Markdown string
	Outline  *script.Outline
	// Balance classifies how the section word estimates cover the target.
	Balance  script.Accuracy
	Warnings []string
}

type outlinerPromptData struct {
	DurationMin int
	Chapters    int
	TargetWords int
	Style       podcast.Style
	Plan        string
	Research    string
}

// Execute requests the outline and checks its shape: the chapter count
// may drift by one from the brief, the opening and closing segments are
// expected but their absence only warns.
func (o *Outliner) Execute(ctx context.Context, in OutlineInput) (*OutlineOutput, error) {
	brief := in.Brief.Normalize()

	user, err := renderPrompt("outliner_user.tmpl", outlinerPromptData{
		DurationMin: brief.DurationMin,
		Chapters:    brief.Chapters,
		TargetWords: in.TargetWords,
		Style:       brief.Style,
		Plan:        in.Plan,
		Research:    in.Research,
	})
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepOutline, err)
	}

	text, err := o.rt.Complete(ctx, podcast.StepOutline, Request{
		System:      systemPrompt("outliner_system.tmpl"),
		User:        user,
		MaxTokens:   outlinerMaxTokens,
		Temperature: outlinerTemperature,
	})
	if err != nil {
		return nil, err
	}

	outline := script.ParseOutline(text)

	got := outline.ChapterCount()
	if diff := got - brief.Chapters; diff > chapterCountTolerance || diff < -chapterCountTolerance {
		return nil, podcast.NewError(podcast.ErrAgent, podcast.StepOutline,
			"outline has %d chapters, brief asked for %d", got, brief.Chapters)
	}

	out := &OutlineOutput{
		Markdown: text,
		Outline:  outline,
		Balance:  outline.Balance(in.TargetWords),
	}
	if got != brief.Chapters {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("outline has %d chapters, brief asked for %d", got, brief.Chapters))
	}
	if missing := script.MissingSections(text, script.RequiredOutlineSections); len(missing) > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("outline is missing sections: %s", strings.Join(missing, ", ")))
	}
	if !hasSectionKind(outline, script.SectionOpening) {
		out.Warnings = append(out.Warnings, "outline has no opening segment")
	}
	if !hasSectionKind(outline, script.SectionClosing) {
		out.Warnings = append(out.Warnings, "outline has no closing segment")
	}
	if out.Balance == script.AccuracyPoor {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("outline word estimates total %d against a %d target",
				outline.TotalWordEstimate(), in.TargetWords))
	}
	for _, w := range out.Warnings {
		o.rt.logger.Warn("outline validation", "job_id", o.rt.jobID, "warning", w)
	}
	return out, nil
}

func hasSectionKind(o *script.Outline, kind script.SectionKind) bool {
	for _, s := range o.Sections {
		if s.Kind == kind {
			return true
		}
	}
	return false
}
