package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/script"
)

const (
	scripterTemperature = 0.8

	// convergenceAttempts bounds the word-count loop in the scripter and
	// the editor.
	convergenceAttempts = 3

	// convergenceTolerancePct is the strict acceptance band on spoken
	// words at generation time.
	convergenceTolerancePct = 2.0
)

// Scripter writes the two-host dialogue for one chapter, iterating until
// the spoken-word count converges on the chapter target. Fan-out across
// chapters belongs to the orchestrator.
type Scripter struct {
	rt *Runtime
}

// NewScripter returns a scripter on the given runtime.
func NewScripter(rt *Runtime) *Scripter {
	return &Scripter{rt: rt}
}

// ChapterInput parameterizes the script call for one chapter.
type ChapterInput struct {
	Brief podcast.Brief
	// Chapter is the outline section rendered as markdown.
	Chapter string
	Number  int
	// TargetWords is this chapter's share of the episode budget.
	TargetWords int
	// Context carries the whole outline for continuity.
	Context string
}

// ChapterScript is one chapter's dialogue with its convergence record.
type ChapterScript struct {
	Number       int     `json:"number"`
	Markdown     string  `json:"markdown"`
	SpokenWords  int     `json:"spokenWords"`
	DeviationPct float64 `json:"deviationPct"`
	Attempts     int     `json:"attempts"`
	Converged    bool    `json:"converged"`
}

type scripterPromptData struct {
	Number      int
	Topic       string
	Mood        podcast.Mood
	TargetWords int
	Chapter     string
	Context     string
	Directive   string
}

// Execute runs the convergence loop: up to three attempts, accepting when
// the spoken-word deviation is within two percent, otherwise retrying
// with a corrective directive. After the last attempt the final draft is
// kept and its deviation recorded.
func (s *Scripter) Execute(ctx context.Context, in ChapterInput) (*ChapterScript, error) {
	brief := in.Brief.Normalize()
	system, err := renderPrompt("scripter_system.tmpl", struct{ StyleGuidance string }{
		StyleGuidance: StyleGuidance(brief.Style),
	})
	if err != nil {
		return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepScript, err)
	}

	data := scripterPromptData{
		Number:      in.Number,
		Topic:       brief.Topic,
		Mood:        brief.Mood,
		TargetWords: in.TargetWords,
		Chapter:     in.Chapter,
		Context:     in.Context,
	}

	var last *ChapterScript
	for attempt := 1; attempt <= convergenceAttempts; attempt++ {
		user, err := renderPrompt("scripter_user.tmpl", data)
		if err != nil {
			return nil, podcast.WrapError(podcast.ErrInternal, podcast.StepScript, err)
		}

		text, err := s.rt.Complete(ctx, podcast.StepScript, Request{
			System:      system,
			User:        user,
			MaxTokens:   tokensForWords(in.TargetWords),
			Temperature: scripterTemperature,
		})
		if err != nil {
			return nil, err
		}

		words := script.CountSpokenWords(text)
		dev := script.DeviationPercent(in.TargetWords, words)
		last = &ChapterScript{
			Number:       in.Number,
			Markdown:     text,
			SpokenWords:  words,
			DeviationPct: dev,
			Attempts:     attempt,
		}

		if math.Abs(dev) <= convergenceTolerancePct {
			last.Converged = true
			s.rt.logger.Info("chapter script converged",
				"job_id", s.rt.jobID,
				"chapter", in.Number,
				"attempt", attempt,
				"words", words,
				"deviation_pct", round1(dev))
			return last, nil
		}

		s.rt.logger.Info("chapter script off target",
			"job_id", s.rt.jobID,
			"chapter", in.Number,
			"attempt", attempt,
			"words", words,
			"target", in.TargetWords,
			"deviation_pct", round1(dev))
		data.Directive = correctiveDirective(words, in.TargetWords)
	}

	// The last response stands; its deviation stays on the artifact.
	s.rt.logger.Warn("chapter script kept without convergence",
		"job_id", s.rt.jobID,
		"chapter", in.Number,
		"words", last.SpokenWords,
		"target", in.TargetWords,
		"deviation_pct", round1(last.DeviationPct))
	return last, nil
}

// correctiveDirective states what the previous draft produced, what the
// target requires, and which direction to move.
func correctiveDirective(produced, required int) string {
	delta := required - produced
	direction := "Expand the dialogue"
	if delta < 0 {
		delta = -delta
		direction = "Condense the dialogue"
	}
	return fmt.Sprintf(
		"Correction: the previous draft contained %d spoken words but %d are required. %s by about %d words. Keep the same format and flow.",
		produced, required, direction, delta)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
