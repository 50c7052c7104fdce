package testutil

import (
	"fmt"
	"strings"
)

// Dialogue returns alternating host lines totalling exactly words spoken
// words, ten per line.
func Dialogue(words int) string {
	return dialogueLines(words, "")
}

// TonedDialogue is Dialogue with a strict [calm] tone tag opening every
// line.
func TonedDialogue(words int) string {
	return dialogueLines(words, "[calm] ")
}

func dialogueLines(words int, prefix string) string {
	var b strings.Builder
	host := 1
	for words > 0 {
		take := 10
		if words < take {
			take = words
		}
		fmt.Fprintf(&b, "**Host %d:** %s%s\n\n", host, prefix,
			strings.TrimSpace(strings.Repeat("word ", take)))
		words -= take
		host = 3 - host
	}
	return b.String()
}

// PlanMarkdown returns a production plan with every required section and
// a chapter breakdown whose estimates sum to total.
func PlanMarkdown(chapters, total int) string {
	var b strings.Builder
	b.WriteString("# Production Plan\n\n## Overview\n\nA two-host episode built from the brief.\n\n## Chapter Breakdown\n\n")

	per := total
	if chapters > 0 {
		per = total / chapters
	}
	for i := 1; i <= chapters; i++ {
		words := per
		if i == chapters {
			words = total - per*(chapters-1)
		}
		fmt.Fprintf(&b, "### Chapter %d: Part %d\n\n", i, i)
		fmt.Fprintf(&b, "**Narrative Purpose:** advance the story\n\n")
		fmt.Fprintf(&b, "**Research Focus:** background for part %d\n\n", i)
		fmt.Fprintf(&b, "Aim for about %d words.\n\n", words)
	}

	b.WriteString("## Research Priorities\n\n- primary sources\n\n## Style Guidelines\n\nKeep the exchanges short.\n")
	return b.String()
}

// ResearchMarkdown returns research notes with every section the
// researcher checks for.
func ResearchMarkdown() string {
	return `# Research Notes

## Executive Summary

The topic rewards a chronological telling.

## Key Facts

- fact one
- fact two

## Themes

- scale
- standardization
`
}

// OutlineMarkdown returns an outline with an opening, chapters, and a
// closing whose word estimates sum exactly to total.
func OutlineMarkdown(chapters, total int) string {
	opening := total / 10
	closing := total / 20
	body := total - opening - closing
	per := body
	if chapters > 0 {
		per = body / chapters
	}

	var b strings.Builder
	b.WriteString("# Episode Outline\n\n## Episode Overview\n\nWhat the episode covers and why it matters.\n\n")
	fmt.Fprintf(&b, "## Opening Hook\n\nA cold open that sets the stakes. (~%d words)\n\n", opening)
	for i := 1; i <= chapters; i++ {
		words := per
		if i == chapters {
			words = body - per*(chapters-1)
		}
		fmt.Fprintf(&b, "### Chapter %d: Part %d\n\n", i, i)
		fmt.Fprintf(&b, "**Purpose:** advance the story\n\n- point one\n- point two\n\nTarget length: (~%d words)\n\n", words)
	}
	fmt.Fprintf(&b, "## Closing Segment\n\nRecap and a forward look. (~%d words)\n", closing)
	return b.String()
}

// ToneScriptMarkdown returns a tone-annotated script of the given shape:
// chapter headings with strict-tagged dialogue under each.
func ToneScriptMarkdown(chapters, wordsPerChapter int) string {
	var b strings.Builder
	b.WriteString("# Final Script\n\n")
	for i := 1; i <= chapters; i++ {
		fmt.Fprintf(&b, "## Chapter %d\n\n%s\n", i, TonedDialogue(wordsPerChapter))
	}
	return b.String()
}
