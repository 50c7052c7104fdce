package script

import (
	"reflect"
	"strings"
	"testing"
)

const sampleOutline = `# Episode Outline

## Episode Overview

Two hosts walk through coffee history in three acts.

## Opening Hook

- Cold open on the espresso machine hiss

**Purpose:** Grab attention fast.

### Chapter 1: Origins

**Purpose:** Set the scene.

- Kaldi legend
- Monastery rumors

~480 words

### Chapter 2: Trade Winds

- Mocha port
- Smuggled beans

~520 words

## Closing Segment

- Recap and tease next episode

~120 words
`

func TestParseOutline(t *testing.T) {
	o := ParseOutline(sampleOutline)
	if len(o.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d: %#v", len(o.Sections), o.Sections)
	}

	if o.Sections[0].Kind != SectionOpening {
		t.Errorf("expected opening first, got %q", o.Sections[0].Kind)
	}
	if o.Sections[0].Purpose != "Grab attention fast." {
		t.Errorf("unexpected opening purpose: %q", o.Sections[0].Purpose)
	}
	if o.Sections[3].Kind != SectionClosing {
		t.Errorf("expected closing last, got %q", o.Sections[3].Kind)
	}
	if o.Sections[3].WordEstimate != 120 {
		t.Errorf("expected closing estimate 120, got %d", o.Sections[3].WordEstimate)
	}

	ch := o.Sections[1]
	if ch.Kind != SectionChapter || ch.Number != 1 || ch.Title != "Origins" {
		t.Errorf("unexpected chapter section: %+v", ch)
	}
	wantPoints := []string{"Kaldi legend", "Monastery rumors"}
	if !reflect.DeepEqual(ch.Points, wantPoints) {
		t.Errorf("expected points %v, got %v", wantPoints, ch.Points)
	}
	if ch.WordEstimate != 480 {
		t.Errorf("expected chapter 1 estimate 480, got %d", ch.WordEstimate)
	}
}

func TestOutline_Chapters(t *testing.T) {
	o := ParseOutline(sampleOutline)
	if got := o.ChapterCount(); got != 2 {
		t.Errorf("expected 2 chapters, got %d", got)
	}
	chapters := o.Chapters()
	if len(chapters) != 2 || chapters[0].Number != 1 || chapters[1].Number != 2 {
		t.Errorf("unexpected chapter sequence: %+v", chapters)
	}
}

func TestOutlineSection_ChapterMarkdown(t *testing.T) {
	o := ParseOutline(sampleOutline)
	md := o.Chapters()[0].ChapterMarkdown()
	if !strings.Contains(md, "### Chapter 1: Origins") {
		t.Errorf("expected chapter header, got %q", md)
	}
	if !strings.Contains(md, "**Purpose:** Set the scene.") {
		t.Errorf("expected purpose line, got %q", md)
	}
	if !strings.Contains(md, "- Kaldi legend") {
		t.Errorf("expected points, got %q", md)
	}

	// The re-rendered chapter parses back to the same section shape.
	again := ParseOutline(md)
	if again.ChapterCount() != 1 {
		t.Fatalf("expected re-rendered chapter to parse, got %d chapters", again.ChapterCount())
	}
	back := again.Chapters()[0]
	if back.Number != 1 || back.Title != "Origins" || !reflect.DeepEqual(back.Points, o.Chapters()[0].Points) {
		t.Errorf("round trip drifted: %+v", back)
	}
}

func TestOutline_Balance(t *testing.T) {
	o := ParseOutline(sampleOutline)
	if got := o.TotalWordEstimate(); got != 1120 {
		t.Fatalf("expected total estimate 1120, got %d", got)
	}
	if got := o.Balance(1120); got != AccuracyExcellent {
		t.Errorf("expected excellent at exact target, got %q", got)
	}
	if got := o.Balance(1000); got != AccuracyFair {
		t.Errorf("expected fair at 12%% over, got %q", got)
	}
}

func TestParseOutline_MissingSegments(t *testing.T) {
	md := `### Chapter 1: Only One

- A point
`
	o := ParseOutline(md)
	if len(o.Sections) != 1 || o.Sections[0].Kind != SectionChapter {
		t.Fatalf("expected a single chapter section, got %#v", o.Sections)
	}
	missing := MissingSections(md, RequiredOutlineSections)
	if len(missing) != 3 {
		t.Errorf("expected all required sections missing, got %v", missing)
	}
}
