package script

import (
	"strconv"
	"strings"
)

// SectionKind tags an outline section.
type SectionKind string

const (
	SectionOpening SectionKind = "opening"
	SectionChapter SectionKind = "chapter"
	SectionClosing SectionKind = "closing"
)

// RequiredOutlineSections are checked leniently by the outliner.
var RequiredOutlineSections = []string{
	"Episode Overview",
	"Opening Hook",
	"Closing Segment",
}

// OutlineSection is one segment of the episode: an opening, a chapter, or
// the closing.
type OutlineSection struct {
	Kind         SectionKind `json:"kind"`
	Number       int         `json:"number,omitempty"` // chapter number, 1-based
	Title        string      `json:"title"`
	Points       []string    `json:"points,omitempty"`
	Purpose      string      `json:"purpose,omitempty"`
	WordEstimate int         `json:"wordEstimate,omitempty"`
}

// Outline is the parsed outliner output.
type Outline struct {
	Raw      string           `json:"raw"`
	Sections []OutlineSection `json:"sections"`
}

// ParseOutline extracts the ordered section sequence: one opening, the
// chapter outlines, one closing. A missing opening or closing simply
// yields fewer sections; the outliner decides whether that is acceptable.
func ParseOutline(md string) *Outline {
	o := &Outline{Raw: md}
	lines := strings.Split(md, "\n")

	type span struct {
		sec   OutlineSection
		start int
		end   int
	}
	var spans []span

	push := func(sec OutlineSection, lineIdx int) {
		if len(spans) > 0 {
			spans[len(spans)-1].end = lineIdx
		}
		spans = append(spans, span{sec: sec, start: lineIdx + 1, end: len(lines)})
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := chapterHeaderRe.FindStringSubmatch(trimmed); m != nil && atoi(m[1]) > 0 {
			push(OutlineSection{
				Kind:   SectionChapter,
				Number: atoi(m[1]),
				Title:  strings.TrimSpace(m[2]),
			}, i)
			continue
		}
		hm := mdHeaderRe.FindStringSubmatch(trimmed)
		if hm == nil {
			continue
		}
		lower := strings.ToLower(hm[2])
		switch {
		case strings.Contains(lower, "opening"):
			push(OutlineSection{Kind: SectionOpening, Title: strings.TrimSpace(hm[2])}, i)
		case strings.Contains(lower, "closing"):
			push(OutlineSection{Kind: SectionClosing, Title: strings.TrimSpace(hm[2])}, i)
		}
	}

	for _, s := range spans {
		block := strings.Join(lines[s.start:s.end], "\n")
		s.sec.Points = Bullets(block)
		s.sec.Purpose = LabeledValue(block, "Purpose")
		s.sec.WordEstimate = WordEstimate(block)
		o.Sections = append(o.Sections, s.sec)
	}

	return o
}

// ChapterCount returns the number of chapter sections.
func (o *Outline) ChapterCount() int {
	n := 0
	for _, s := range o.Sections {
		if s.Kind == SectionChapter {
			n++
		}
	}
	return n
}

// Chapters returns the chapter sections in order.
func (o *Outline) Chapters() []OutlineSection {
	var out []OutlineSection
	for _, s := range o.Sections {
		if s.Kind == SectionChapter {
			out = append(out, s)
		}
	}
	return out
}

// ChapterMarkdown re-renders a chapter section as the scripter's input.
func (s OutlineSection) ChapterMarkdown() string {
	var b strings.Builder
	b.WriteString("### Chapter ")
	b.WriteString(strconv.Itoa(s.Number))
	if s.Title != "" {
		b.WriteString(": ")
		b.WriteString(s.Title)
	}
	b.WriteString("\n")
	if s.Purpose != "" {
		b.WriteString("\n**Purpose:** " + s.Purpose + "\n")
	}
	if len(s.Points) > 0 {
		b.WriteString("\n")
		for _, p := range s.Points {
			b.WriteString("- " + p + "\n")
		}
	}
	return b.String()
}

// TotalWordEstimate sums the per-section estimates.
func (o *Outline) TotalWordEstimate() int {
	total := 0
	for _, s := range o.Sections {
		total += s.WordEstimate
	}
	return total
}

// Balance classifies how well the section estimates cover the target.
func (o *Outline) Balance(targetWords int) Accuracy {
	return ClassifyAccuracy(targetWords, o.TotalWordEstimate())
}
