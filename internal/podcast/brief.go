// Package podcast defines the domain model: the brief that parameterizes a
// generation job, the word budget derived from it, the artifacts the pipeline
// produces, and the error taxonomy surfaced to callers.
// This package has no dependencies on other podforge packages to avoid import cycles.
package podcast

import "strings"

// Mood sets the overall emotional register of an episode.
type Mood string

const (
	MoodNeutral      Mood = "neutral"
	MoodExcited      Mood = "excited"
	MoodCalm         Mood = "calm"
	MoodReflective   Mood = "reflective"
	MoodEnthusiastic Mood = "enthusiastic"
)

// Style selects the conversational structure of the two hosts.
type Style string

const (
	StyleStorytelling   Style = "storytelling"
	StyleConversational Style = "conversational"
	StyleInterview      Style = "interview"
	StyleEducational    Style = "educational"
	// StyleNarrative is accepted as input and treated as storytelling by
	// the prompt layer.
	StyleNarrative Style = "narrative"
)

// Brief is the user's input record that parameterizes a generation job.
// Immutable once a job is accepted.
type Brief struct {
	Topic       string `json:"topic"`
	Focus       string `json:"focus,omitempty"`
	Mood        Mood   `json:"mood"`
	Style       Style  `json:"style"`
	Chapters    int    `json:"chapters"`
	DurationMin int    `json:"durationMin"`
	// Source optionally grounds research in a URL or local file path.
	Source string `json:"source,omitempty"`
}

// Constraints bounds acceptable briefs. Values come from configuration.
type Constraints struct {
	MinChapters    int
	MaxChapters    int
	MinDurationMin int
	MaxDurationMin int
	MaxTopicLength int
	MaxFocusLength int
	AllowedMoods   []string
	AllowedStyles  []string
}

// WordBudget is the spoken-word target derived once from the brief.
type WordBudget struct {
	// TotalWords = DurationMin × WordsPerMinute.
	TotalWords int `json:"totalWords"`
	// PerChapter = TotalWords / Chapters, integer division.
	PerChapter int `json:"perChapter"`
	// WordsPerMinute is the natural speech rate of the TTS voices (150).
	WordsPerMinute int `json:"wordsPerMinute"`
	// TolerancePercent is the lenient band on TotalWords.
	TolerancePercent float64 `json:"tolerancePercent"`
}

// NewWordBudget derives the budget for a brief.
func NewWordBudget(b Brief, wordsPerMinute int, tolerancePercent float64) WordBudget {
	total := b.DurationMin * wordsPerMinute
	per := total
	if b.Chapters > 0 {
		per = total / b.Chapters
	}
	return WordBudget{
		TotalWords:       total,
		PerChapter:       per,
		WordsPerMinute:   wordsPerMinute,
		TolerancePercent: tolerancePercent,
	}
}

// Normalize lowercases and trims the enumerated fields so validation and
// prompt construction see canonical values.
func (b Brief) Normalize() Brief {
	b.Topic = strings.TrimSpace(b.Topic)
	b.Focus = strings.TrimSpace(b.Focus)
	b.Mood = Mood(strings.ToLower(strings.TrimSpace(string(b.Mood))))
	b.Style = Style(strings.ToLower(strings.TrimSpace(string(b.Style))))
	b.Source = strings.TrimSpace(b.Source)
	return b
}
