package script

import (
	"math"
	"testing"
)

func TestCountRawWords(t *testing.T) {
	md := `## Overview

This episode covers the **history** of coffee from [Ethiopia](https://example.com) onward.

- First wave
- Second wave
`
	if got := CountRawWords(md); got != 15 {
		t.Errorf("expected 15 raw words, got %d", got)
	}
}

func TestCountSpokenWords(t *testing.T) {
	md := `## Chapter 1

**Host 1:** [excited] Welcome back, everyone!
Some narration that is ignored.
**Host 2:** I can't wait. [pause] This is big.
`
	if got := CountSpokenWords(md); got != 9 {
		t.Errorf("expected 9 spoken words, got %d", got)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain", "Hello there friends", 3},
		{"punctuation dropped", "Hello, there... friends!", 3},
		{"contractions and compounds", "it's a well-known trade-off", 4},
		{"brackets removed", "so [sigh] here we are [pause]", 4},
		{"only brackets", "[sigh]", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, expected %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimatedSeconds(t *testing.T) {
	if got := EstimatedSeconds(375); got != 150 {
		t.Errorf("expected 375 words to run 150s, got %v", got)
	}
	if got := EstimatedSeconds(0); got != 0 {
		t.Errorf("expected 0 words to run 0s, got %v", got)
	}
}

func TestDeviationPercent(t *testing.T) {
	tests := []struct {
		name   string
		target int
		actual int
		want   float64
	}{
		{"exact", 1000, 1000, 0},
		{"over", 1000, 1100, 10},
		{"under", 1000, 900, -10},
		{"zero target zero actual", 0, 0, 0},
		{"zero target some actual", 0, 42, 100},
		{"fractional", 200, 201, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviationPercent(tt.target, tt.actual)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DeviationPercent(%d, %d) = %v, expected %v", tt.target, tt.actual, got, tt.want)
			}
		})
	}
}

func TestParseHostLine(t *testing.T) {
	sp, text, ok := ParseHostLine("**Host 1:** hello there")
	if !ok || sp != SpeakerHost1 || text != "hello there" {
		t.Errorf("expected host1 %q, got %v %q %v", "hello there", sp, text, ok)
	}

	sp, text, ok = ParseHostLine("  **Host 2:** [calm] sure thing")
	if !ok || sp != SpeakerHost2 || text != "[calm] sure thing" {
		t.Errorf("expected host2 with tone tag intact, got %v %q %v", sp, text, ok)
	}

	if _, _, ok := ParseHostLine("Host 1: no bold markers"); ok {
		t.Error("expected unformatted line to be rejected")
	}
	if _, _, ok := ParseHostLine("**Host 3:** no such host"); ok {
		t.Error("expected host 3 to be rejected")
	}
}
