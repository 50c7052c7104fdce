package podcast

import (
	"fmt"
	"slices"
)

// Validation is the result of checking a brief without submitting it.
type Validation struct {
	Valid           bool      `json:"valid"`
	Errors          []string  `json:"errors,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	Estimates       Estimates `json:"estimates"`
}

// Estimates previews what a brief would produce. Durations are seconds.
type Estimates struct {
	TargetWords       int `json:"targetWords"`
	WordsPerChapter   int `json:"wordsPerChapter"`
	EstimatedDuration int `json:"estimatedDuration"`
	// ProcessingTime is the soft wall-clock budget (12× duration), used
	// for user-facing ETA only, never enforced.
	ProcessingTime int `json:"processingTime"`
}

// ValidateBrief checks the hard constraints. A violation returns an Error
// of kind validation; the job is never created.
func ValidateBrief(b Brief, cons Constraints) error {
	b = b.Normalize()

	if b.Topic == "" {
		return NewError(ErrValidation, "", "topic is required")
	}
	if cons.MaxTopicLength > 0 && len(b.Topic) > cons.MaxTopicLength {
		return NewError(ErrValidation, "", "topic exceeds %d characters", cons.MaxTopicLength)
	}
	if cons.MaxFocusLength > 0 && len(b.Focus) > cons.MaxFocusLength {
		return NewError(ErrValidation, "", "focus exceeds %d characters", cons.MaxFocusLength)
	}
	if b.Chapters < cons.MinChapters || b.Chapters > cons.MaxChapters {
		return NewError(ErrValidation, "", "chapters must be between %d and %d, got %d",
			cons.MinChapters, cons.MaxChapters, b.Chapters)
	}
	if b.DurationMin < cons.MinDurationMin || b.DurationMin > cons.MaxDurationMin {
		return NewError(ErrValidation, "", "duration must be between %d and %d minutes, got %d",
			cons.MinDurationMin, cons.MaxDurationMin, b.DurationMin)
	}
	if len(cons.AllowedMoods) > 0 && !slices.Contains(cons.AllowedMoods, string(b.Mood)) {
		return NewError(ErrValidation, "", "mood %q is not one of %v", b.Mood, cons.AllowedMoods)
	}
	if len(cons.AllowedStyles) > 0 && !slices.Contains(cons.AllowedStyles, string(b.Style)) {
		return NewError(ErrValidation, "", "style %q is not one of %v", b.Style, cons.AllowedStyles)
	}
	return nil
}

// EvaluateBrief validates a brief and, when valid, adds advisory warnings,
// recommendations, and estimates. Warnings never block submission.
func EvaluateBrief(b Brief, cons Constraints, wordsPerMinute int) Validation {
	b = b.Normalize()
	v := Validation{Valid: true}

	if err := ValidateBrief(b, cons); err != nil {
		v.Valid = false
		v.Errors = append(v.Errors, err.(*Error).Message)
		return v
	}

	budget := NewWordBudget(b, wordsPerMinute, 0)
	v.Estimates = Estimates{
		TargetWords:       budget.TotalWords,
		WordsPerChapter:   budget.PerChapter,
		EstimatedDuration: b.DurationMin * 60,
		ProcessingTime:    12 * b.DurationMin,
	}

	// Accepted, but the chapters will be very short.
	if b.Chapters > b.DurationMin*2 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"%d chapters in %d minutes leaves under 30 seconds per chapter; consider fewer chapters",
			b.Chapters, b.DurationMin))
	}
	if budget.PerChapter < 100 {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"each chapter targets only %d words; dialogue may feel rushed", budget.PerChapter))
	}

	if b.Focus == "" {
		v.Recommendations = append(v.Recommendations,
			"add a focus to narrow the research and tighten the script")
	}
	if b.DurationMin >= 30 && b.Chapters <= 2 {
		v.Recommendations = append(v.Recommendations, fmt.Sprintf(
			"%d minutes across %d chapters makes long segments; more chapters improve pacing",
			b.DurationMin, b.Chapters))
	}
	if b.Style == StyleInterview && b.Source == "" {
		v.Recommendations = append(v.Recommendations,
			"interview style benefits from a source document to ground questions")
	}

	return v
}
