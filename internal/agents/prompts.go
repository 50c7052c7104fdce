package agents

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/podforge/podforge/internal/podcast"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// renderPrompt executes one embedded prompt template.
func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// systemPrompt returns a static system prompt (no template data).
func systemPrompt(name string) string {
	out, err := renderPrompt(name, nil)
	if err != nil {
		panic(err)
	}
	return out
}

// Style guidance blocks inserted into the scripter system prompt.
var styleGuidance = map[podcast.Style]string{
	podcast.StyleConversational: `Style: conversational.
The hosts are two friends who know the topic well. Tangents are brief and always come back. Disagreement is friendly and resolved with evidence. Both hosts carry roughly equal weight.`,

	podcast.StyleStorytelling: `Style: storytelling.
Host 1 carries a narrative arc with scenes, stakes, and turns. Host 2 is the listener's surrogate: reacting, asking what happened next, pulling out the meaning. Build tension before resolving it.`,

	podcast.StyleInterview: `Style: interview.
Host 1 is the interviewer: prepared, curious, pressing politely on vague answers. Host 2 is the subject-matter expert giving substantive, first-hand answers. Questions are short; answers do the work.`,

	podcast.StyleEducational: `Style: educational.
Host 1 teaches in plain language, one concept at a time, with concrete examples. Host 2 asks the questions a smart beginner would ask and summarizes each concept back before moving on.`,
}

// StyleGuidance returns the scripter guidance block for a style. The
// narrative style shares the storytelling guidance.
func StyleGuidance(s podcast.Style) string {
	if s == podcast.StyleNarrative {
		s = podcast.StyleStorytelling
	}
	if g, ok := styleGuidance[s]; ok {
		return g
	}
	return styleGuidance[podcast.StyleConversational]
}
