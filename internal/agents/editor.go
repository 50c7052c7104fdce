package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/script"
)

const (
	editorTemperature = 0.5

	// finalGateWarnPct is the lenient band on the finished script; a
	// breach is logged, never failed.
	finalGateWarnPct = 15.0

	// minFinalScriptChars rejects degenerate editor output.
	minFinalScriptChars = 100
)

// placeholderMarkers reject editor output that still contains unfinished
// writing.
var placeholderMarkers = []string{"TODO", "[INSERT"}

// Editor runs the final convergence pass: adjust the tone-annotated
// script to the episode word target while preserving tone tags and host
// labels, then apply the structural gates.
type Editor struct {
	rt *Runtime
}

// NewEditor returns an editor on the given runtime.
func NewEditor(rt *Runtime) *Editor {
	return &Editor{rt: rt}
}

// EditInput parameterizes the final pass.
type EditInput struct {
	Brief podcast.Brief
	// ToneScript is the annotated script from the tone stage.
	ToneScript  string
	TargetWords int
	// TolerancePct is the lenient band reported against the final count;
	// the loop itself converges on the strict two percent band.
	TolerancePct float64
}

// EditOutput is the final script with its convergence record.
type EditOutput struct {
	Markdown     string
	SpokenWords  int
	DeviationPct float64
	Attempts     int
	Converged    bool
	Warnings     []string
}

type editorPromptData struct {
	TargetWords  int
	CurrentWords int
	Direction    string
	Delta        int
	Mood         podcast.Mood
	Style        podcast.Style
	Directive    string
	Script       string
}

// Execute iterates up to three attempts toward the strict target,
// rejecting structurally broken drafts, then applies the final gates:
// deviation beyond the tolerance only warns, and a script with no tone
// tags only warns.
func (e *Editor) Execute(ctx context.Context, in EditInput) (*EditOutput, error) {
	brief := in.Brief.Normalize()
	system := systemPrompt("editor_system.tmpl")

	current := script.CountSpokenWords(in.ToneScript)
	data := editorPromptData{
		TargetWords:  in.TargetWords,
		CurrentWords: current,
		Mood:         brief.Mood,
		Style:        brief.Style,
		Script:       in.ToneScript,
	}
	data.Direction, data.Delta = editDirection(current, in.TargetWords)

	var last *EditOutput
	for attempt := 1; attempt <= convergenceAttempts; attempt++ {
		user, err := renderPrompt("editor_user.tmpl", data)
		if err != nil {
			return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepEdit, err)
		}

		text, err := e.rt.Complete(ctx, podcast.StepEdit, Request{
			System:      system,
			User:        user,
			MaxTokens:   tokensForWords(in.TargetWords),
			Temperature: editorTemperature,
		})
		if err != nil {
			return nil, err
		}

		if reason := structuralReject(text); reason != "" {
			e.rt.logger.Warn("editor draft rejected",
				"job_id", e.rt.jobID, "attempt", attempt, "reason", reason)
			data.Directive = fmt.Sprintf(
				"Correction: the previous draft was rejected (%s). Return the complete edited script.", reason)
			continue
		}

		words := script.CountSpokenWords(text)
		dev := script.DeviationPercent(in.TargetWords, words)
		last = &EditOutput{
			Markdown:     text,
			SpokenWords:  words,
			DeviationPct: dev,
			Attempts:     attempt,
		}

		if math.Abs(dev) <= convergenceTolerancePct {
			last.Converged = true
			e.rt.logger.Info("final script converged",
				"job_id", e.rt.jobID,
				"attempt", attempt,
				"words", words,
				"deviation_pct", round1(dev))
			break
		}

		e.rt.logger.Info("final script off target",
			"job_id", e.rt.jobID,
			"attempt", attempt,
			"words", words,
			"target", in.TargetWords,
			"deviation_pct", round1(dev))
		data.Directive = correctiveDirective(words, in.TargetWords)
	}

	if last == nil {
		return nil, podcast.NewError(podcast.ErrAgent, podcast.StepEdit,
			"every editor draft was structurally rejected")
	}

	e.applyFinalGates(last, in)
	return last, nil
}

// applyFinalGates attaches the lenient warnings: tolerance breach and
// missing tone tags never fail a job at this point.
func (e *Editor) applyFinalGates(out *EditOutput, in EditInput) {
	tolerance := in.TolerancePct
	if tolerance <= 0 {
		tolerance = 5
	}

	dev := math.Abs(out.DeviationPct)
	if dev > tolerance {
		w := fmt.Sprintf("final script is %.1f%% off the %d-word target", dev, in.TargetWords)
		if dev > finalGateWarnPct {
			w = fmt.Sprintf("final script is %.1f%% off the %d-word target, beyond the %d%% gate",
				dev, in.TargetWords, int(finalGateWarnPct))
		}
		out.Warnings = append(out.Warnings, w)
	}

	if script.CountToneTags(out.Markdown) == 0 {
		out.Warnings = append(out.Warnings, "final script carries no tone tags")
	}

	for _, w := range out.Warnings {
		e.rt.logger.Warn("final script gate", "job_id", e.rt.jobID, "warning", w)
	}
}

// structuralReject names why a draft cannot be the final script, or
// returns "".
func structuralReject(text string) string {
	if len(text) < minFinalScriptChars {
		return fmt.Sprintf("only %d characters", len(text))
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(text, marker) {
			return fmt.Sprintf("contains placeholder %q", marker)
		}
	}
	return ""
}

func editDirection(current, target int) (string, int) {
	delta := target - current
	if delta < 0 {
		return "condense", -delta
	}
	return "expand", delta
}
