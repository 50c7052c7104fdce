package script

import (
	"reflect"
	"testing"
)

const sectionedDoc = `# Title

## Overview

A short description.

## Chapter Breakdown

### Chapter 1: Beginnings

- First point
- Second point

**Duration:** ~250 words
**Narrative Purpose:** Set the stage.

## Style Guidelines

Keep it loose.
`

func TestHasSection(t *testing.T) {
	if !HasSection(sectionedDoc, "Overview") {
		t.Error("expected Overview to be present")
	}
	if !HasSection(sectionedDoc, "chapter breakdown") {
		t.Error("expected case-insensitive match")
	}
	if HasSection(sectionedDoc, "Research Priorities") {
		t.Error("expected Research Priorities to be absent")
	}
}

func TestMissingSections(t *testing.T) {
	missing := MissingSections(sectionedDoc, []string{"Overview", "Research Priorities", "Closing"})
	want := []string{"Research Priorities", "Closing"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("expected %v missing, got %v", want, missing)
	}
}

func TestSectionBody(t *testing.T) {
	body := SectionBody(sectionedDoc, "Overview")
	if body != "A short description." {
		t.Errorf("unexpected overview body: %q", body)
	}

	// The breakdown body runs through its subsection and stops at the next
	// same-level header.
	body = SectionBody(sectionedDoc, "Chapter Breakdown")
	if !HasSection(body, "Chapter 1") {
		t.Errorf("expected breakdown body to include the chapter, got %q", body)
	}
	if HasSection(body, "Style Guidelines") {
		t.Errorf("expected breakdown body to stop before style guidelines")
	}

	if got := SectionBody(sectionedDoc, "Nonexistent"); got != "" {
		t.Errorf("expected empty body for missing section, got %q", got)
	}
}

func TestBullets(t *testing.T) {
	block := `- Plain bullet
* Starred **bold** bullet
Not a bullet
- ` + "  " + `
`
	got := Bullets(block)
	want := []string{"Plain bullet", "Starred bold bullet"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLabeledValue(t *testing.T) {
	block := `**Duration:** ~250 words
- Narrative Purpose: Set the stage.
`
	if got := LabeledValue(block, "Duration"); got != "~250 words" {
		t.Errorf("expected duration value, got %q", got)
	}
	if got := LabeledValue(block, "narrative purpose"); got != "Set the stage." {
		t.Errorf("expected purpose value, got %q", got)
	}
	if got := LabeledValue(block, "Missing"); got != "" {
		t.Errorf("expected empty for missing label, got %q", got)
	}
}

func TestWordEstimate(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  int
	}{
		{"tilde form", "**Duration:** ~250 words", 250},
		{"bare form", "about 1200 words of dialogue", 1200},
		{"comma grouping", "target ~1,500 words", 1500},
		{"singular", "just 1 word", 1},
		{"absent", "no figures here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordEstimate(tt.block); got != tt.want {
				t.Errorf("WordEstimate(%q) = %d, expected %d", tt.block, got, tt.want)
			}
		})
	}
}
