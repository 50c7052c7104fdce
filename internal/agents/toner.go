package agents

import (
	"context"
	"fmt"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/script"
)

const tonerTemperature = 0.4

// Toner annotates the joined dialogue with per-line delivery tones and
// parses the result into the utterance sequence speech synthesis consumes.
type Toner struct {
	rt *Runtime
}

// NewToner returns a tone annotator on the given runtime.
func NewToner(rt *Runtime) *Toner {
	return &Toner{rt: rt}
}

// ToneInput parameterizes one annotation call.
type ToneInput struct {
	Brief podcast.Brief
	// Scripts are the chapter scripts in chapter order.
	Scripts []string
}

// ToneOutput is the annotated script, its parsed utterances, and the
// advisory emotional arc.
type ToneOutput struct {
	Markdown   string
	Utterances []script.Utterance
	Arc        script.Arc
	Warnings   []string
}

type tonerPromptData struct {
	Mood   podcast.Mood
	Style  podcast.Style
	Script string
}

// Execute joins the chapter scripts under chapter headings, requests
// strict tone placement, and parses the reply through the strategy chain
// in the script package. An unparseable reply fails the stage; the parser
// already tolerates legacy and untagged shapes.
func (t *Toner) Execute(ctx context.Context, in ToneInput) (*ToneOutput, error) {
	brief := in.Brief.Normalize()
	joined := script.JoinChapterScripts(in.Scripts)

	user, err := renderPrompt("toner_user.tmpl", tonerPromptData{
		Mood:   brief.Mood,
		Style:  brief.Style,
		Script: joined,
	})
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepTone, err)
	}

	text, err := t.rt.Complete(ctx, podcast.StepTone, Request{
		System:      systemPrompt("toner_system.tmpl"),
		User:        user,
		MaxTokens:   tokensForWords(script.CountSpokenWords(joined)),
		Temperature: tonerTemperature,
	})
	if err != nil {
		return nil, err
	}

	utterances, err := script.ParseToneScript(text)
	if err != nil {
		return nil, podcast.NewError(podcast.ErrAgent, podcast.StepTone,
			"tone script yielded no utterances: %v", err)
	}

	out := &ToneOutput{
		Markdown:   text,
		Utterances: utterances,
		Arc:        script.AnalyzeArc(utterances),
	}

	if n := countUnknownTones(utterances); n > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("%d utterances carry tones outside the closed set", n))
	}
	for _, w := range out.Warnings {
		t.rt.logger.Warn("tone validation", "job_id", t.rt.jobID, "warning", w)
	}

	t.rt.logger.Info("tone annotation complete",
		"job_id", t.rt.jobID,
		"utterances", len(utterances),
		"arc", out.Arc.Descriptor)
	return out, nil
}

func countUnknownTones(utterances []script.Utterance) int {
	n := 0
	for _, u := range utterances {
		if !script.KnownTone(u.Tone) {
			n++
		}
	}
	return n
}
