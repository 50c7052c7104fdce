package podcast

import "time"

// Artifacts holds every document the pipeline produced for a job, in
// stage order. Scripts is ordered by chapter index.
type Artifacts struct {
	Plan        string   `json:"plan"`
	Research    string   `json:"research"`
	Outline     string   `json:"outline"`
	Scripts     []string `json:"scripts"`
	ToneScript  string   `json:"toneScript"`
	FinalScript string   `json:"finalScript"`
}

// ArtifactsDocument is the persisted JSON shape written next to the final
// MP3: {outputDir}/{jobID}-artifacts.json.
type ArtifactsDocument struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Artifacts Artifacts `json:"artifacts"`
}

// Metadata describes a completed episode.
type Metadata struct {
	// DurationSec is the probed duration of the final MP3.
	DurationSec float64 `json:"durationSec"`
	// WordCount is the spoken-word count of the final script.
	WordCount int `json:"wordCount"`
	Chapters  int `json:"chapters"`
	// ActualWordsPerMinute = WordCount × 60 / DurationSec.
	ActualWordsPerMinute float64 `json:"actualWordsPerMinute"`
	// Accuracy buckets the word-budget deviation: excellent ≤5%,
	// good ≤10%, fair ≤20%, poor beyond.
	Accuracy string `json:"accuracy"`
	// Audio properties from the probe.
	Bitrate    int    `json:"bitrate,omitempty"`
	Codec      string `json:"codec,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`

	GenerationTimeMs int64 `json:"generationTimeMs"`
}
