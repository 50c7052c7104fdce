// Package script parses the markdown documents the pipeline stages hand to
// each other (plan, outline, dialogue, tone script) and implements the word
// accounting the budget control loop depends on.
//
// Two measures exist and are not interchangeable: raw words (markdown
// stripped, used for planning artifacts) and spoken words (dialogue text
// only, the authoritative measure for budget conformance).
package script

import (
	"regexp"
	"strings"
)

// Speaker identifies one of the two hosts.
type Speaker string

const (
	SpeakerHost1 Speaker = "host1"
	SpeakerHost2 Speaker = "host2"
)

// wordsPerSecond is the speech rate the budget is built on: 150 words per
// minute, so 2.5 words per second.
const wordsPerSecond = 2.5

var (
	headerRe     = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	listMarkerRe = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRe   = regexp.MustCompile(`(\*{1,3}|_{1,3})`)
	inlineCodeRe = regexp.MustCompile("`+")
	bracketRe    = regexp.MustCompile(`\[[^\]]*\]`)
	hostLineRe   = regexp.MustCompile(`^\s*\*\*Host\s*([12])\s*:\*\*\s*(.*)$`)
)

// CountRawWords counts whitespace-separated tokens after stripping markdown
// emphasis, headers, list markers, and link syntax. Used for plan and
// outline artifacts only.
func CountRawWords(md string) int {
	text := headerRe.ReplaceAllString(md, "")
	text = listMarkerRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = emphasisRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "")
	return len(strings.Fields(text))
}

// CountSpokenWords counts only the text after `**Host N:**` on dialogue
// lines, with all bracketed content removed and punctuation dropped before
// the whitespace split. This is the authoritative measure for budget
// conformance.
func CountSpokenWords(md string) int {
	total := 0
	for _, line := range strings.Split(md, "\n") {
		m := hostLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		total += CountWords(m[2])
	}
	return total
}

// CountWords counts the speakable words in a bare dialogue text: bracketed
// content (tone tags, stage directions) is removed and punctuation dropped,
// keeping apostrophes and intra-word hyphens intact.
func CountWords(text string) int {
	return len(strings.Fields(dropPunctuation(bracketRe.ReplaceAllString(text, " "))))
}

func dropPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\'' || r == '-':
			b.WriteRune(r)
		case isWordRune(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		r > 127 // non-ASCII letters pass through
}

// EstimatedSeconds converts a spoken word count to airtime at 150 wpm.
func EstimatedSeconds(wordCount int) float64 {
	return float64(wordCount) / wordsPerSecond
}

// DeviationPercent returns the signed deviation of actual from target as a
// percentage. Positive means over target. A zero target counts any actual
// words as full deviation.
func DeviationPercent(target, actual int) float64 {
	if target == 0 {
		if actual == 0 {
			return 0
		}
		return 100
	}
	return float64(actual-target) / float64(target) * 100
}

// ParseHostLine splits a dialogue line into speaker and text. The second
// return is the text after the host label, tone tag included if present.
func ParseHostLine(line string) (Speaker, string, bool) {
	m := hostLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	sp := SpeakerHost1
	if m[1] == "2" {
		sp = SpeakerHost2
	}
	return sp, strings.TrimSpace(m[2]), true
}
