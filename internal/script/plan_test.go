package script

import (
	"reflect"
	"testing"
)

const samplePlan = `# Episode Plan: The History of Coffee

## Overview

A two-host journey through coffee's path from Ethiopia to the espresso bar.

## Chapter Breakdown

### Chapter 1: Origins in Ethiopia

- The goatherd legend
- Early monastic use

**Duration:** ~250 words
**Narrative Purpose:** Hook listeners with the origin myth.
**Research Focus:** Primary sources on Kaldi.

### Chapter 2: The Ottoman Coffeehouse

**Key Points:** trade routes, social ritual
**Duration:** ~300 words
**Narrative Purpose:** Show coffee becoming culture.

## Research Priorities

- Verify the Kaldi legend dating

## Style Guidelines

Keep it conversational.
`

func TestParsePlan(t *testing.T) {
	plan := ParsePlan(samplePlan)
	if len(plan.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(plan.Chapters))
	}

	ch1 := plan.Chapters[0]
	if ch1.Number != 1 || ch1.Title != "Origins in Ethiopia" {
		t.Errorf("unexpected chapter 1 header: %d %q", ch1.Number, ch1.Title)
	}
	if ch1.WordEstimate != 250 {
		t.Errorf("expected chapter 1 estimate 250, got %d", ch1.WordEstimate)
	}
	if ch1.Purpose != "Hook listeners with the origin myth." {
		t.Errorf("unexpected purpose: %q", ch1.Purpose)
	}
	if ch1.ResearchFocus != "Primary sources on Kaldi." {
		t.Errorf("unexpected research focus: %q", ch1.ResearchFocus)
	}
	wantPoints := []string{"The goatherd legend", "Early monastic use"}
	if !reflect.DeepEqual(ch1.KeyPoints, wantPoints) {
		t.Errorf("expected key points %v, got %v", wantPoints, ch1.KeyPoints)
	}

	ch2 := plan.Chapters[1]
	if ch2.Number != 2 || ch2.WordEstimate != 300 {
		t.Errorf("unexpected chapter 2: %d estimate %d", ch2.Number, ch2.WordEstimate)
	}
	wantInline := []string{"trade routes", "social ritual"}
	if !reflect.DeepEqual(ch2.KeyPoints, wantInline) {
		t.Errorf("expected inline key points %v, got %v", wantInline, ch2.KeyPoints)
	}
}

func TestParsePlan_BoldHeaders(t *testing.T) {
	md := `## Chapter Breakdown

**Chapter 1: The Setup**

- One point

**Chapter 2 - The Payoff**

- Another point
`
	plan := ParsePlan(md)
	if len(plan.Chapters) != 2 {
		t.Fatalf("expected bold chapter headers to parse, got %d chapters", len(plan.Chapters))
	}
	if plan.Chapters[0].Title != "The Setup" {
		t.Errorf("expected title without bold markers, got %q", plan.Chapters[0].Title)
	}
	if plan.Chapters[1].Title != "The Payoff" {
		t.Errorf("expected dash separator handled, got %q", plan.Chapters[1].Title)
	}
}

func TestPlan_TotalWordEstimate(t *testing.T) {
	plan := ParsePlan(samplePlan)
	if got := plan.TotalWordEstimate(); got != 550 {
		t.Errorf("expected total 550, got %d", got)
	}
}

func TestParsePlan_RequiredSections(t *testing.T) {
	if missing := MissingSections(samplePlan, RequiredPlanSections); missing != nil {
		t.Errorf("expected no missing sections, got %v", missing)
	}
	if missing := MissingSections("## Overview\n\njust this", RequiredPlanSections); len(missing) != 3 {
		t.Errorf("expected 3 missing sections, got %v", missing)
	}
}

func TestParsePlan_Empty(t *testing.T) {
	plan := ParsePlan("no chapters anywhere")
	if len(plan.Chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(plan.Chapters))
	}
	if plan.TotalWordEstimate() != 0 {
		t.Errorf("expected zero estimate, got %d", plan.TotalWordEstimate())
	}
}
