package script

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	metaHeaderRe = regexp.MustCompile(`(?i)^#{1,6}\s*(speaking notes|production notes|word count|notes|summary|metadata)\b`)
	anyHeaderRe  = regexp.MustCompile(`^#{1,6}\s+`)
	wordNoteRe   = regexp.MustCompile(`(?i)^\s*\(?\s*(word count|total words|approx\.?|approximately)[:\s]`)
)

// StripMetaBlocks removes non-dialogue sections a model sometimes appends
// to a script: speaking notes, production notes, word-count annotations.
// Chapter headers and host lines pass through untouched.
func StripMetaBlocks(md string) string {
	var out []string
	skipping := false
	for _, line := range strings.Split(md, "\n") {
		if metaHeaderRe.MatchString(strings.TrimSpace(line)) {
			skipping = true
			continue
		}
		if skipping {
			// A new non-meta header ends the skipped section.
			if anyHeaderRe.MatchString(strings.TrimSpace(line)) {
				skipping = false
			} else {
				continue
			}
		}
		if wordNoteRe.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

// JoinChapterScripts combines per-chapter scripts into one document with a
// `## Chapter N` heading before each, the shape the tone annotator expects.
// Scripts that already open with their own chapter heading keep it.
func JoinChapterScripts(scripts []string) string {
	var b strings.Builder
	for i, s := range scripts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if !chapterHeaderRe.MatchString(firstLine(s)) {
			fmt.Fprintf(&b, "## Chapter %d\n\n", i+1)
		}
		b.WriteString(s)
	}
	b.WriteString("\n")
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ChapterBlock is one chapter's slice of a joined script document.
type ChapterBlock struct {
	Number   int    `json:"number"`
	Markdown string `json:"markdown"`
}

// SplitChapterBlocks is the inverse of JoinChapterScripts: it cuts a
// document at chapter headers, in order of appearance. Text before the
// first header joins the first block, and a document without chapter
// headers becomes a single block numbered 1.
func SplitChapterBlocks(md string) []ChapterBlock {
	lines := strings.Split(md, "\n")

	var blocks []ChapterBlock
	var current []string
	flush := func(number int) {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		current = nil
		if len(blocks) == 0 && number == 0 {
			if text == "" {
				return
			}
			// Preamble: hold it for the first real block.
			current = append(current, text, "")
			return
		}
		blocks = append(blocks, ChapterBlock{Number: number, Markdown: text})
	}

	next := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := chapterHeaderRe.FindStringSubmatch(trimmed); m != nil && atoi(m[1]) > 0 {
			flush(next)
			next = atoi(m[1])
		}
		current = append(current, line)
	}
	flush(next)

	if len(blocks) == 0 {
		text := strings.TrimSpace(md)
		if text == "" {
			return nil
		}
		return []ChapterBlock{{Number: 1, Markdown: text}}
	}
	return blocks
}

// DialogueOnly keeps just the host lines of a script, dropping headers and
// stage directions. Useful when a downstream consumer wants pure dialogue.
func DialogueOnly(md string) []string {
	var lines []string
	for _, line := range strings.Split(md, "\n") {
		if _, _, ok := ParseHostLine(line); ok {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}

// HostBalance returns the share of spoken words carried by host 1, in
// [0,1]. Advisory; a healthy two-host script sits near 0.5.
func HostBalance(md string) float64 {
	var h1, total int
	for _, line := range strings.Split(md, "\n") {
		speaker, text, ok := ParseHostLine(line)
		if !ok {
			continue
		}
		wc := CountWords(text)
		total += wc
		if speaker == SpeakerHost1 {
			h1 += wc
		}
	}
	if total == 0 {
		return 0
	}
	return float64(h1) / float64(total)
}
