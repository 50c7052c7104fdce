package script

import (
	"fmt"
	"regexp"
	"strings"
)

// Tone is the expressive delivery label bound to an utterance.
type Tone string

const (
	ToneUpbeat      Tone = "upbeat"
	ToneCalm        Tone = "calm"
	ToneExcited     Tone = "excited"
	ToneReflective  Tone = "reflective"
	ToneSuspenseful Tone = "suspenseful"
	ToneSkeptical   Tone = "skeptical"
	ToneHumorous    Tone = "humorous"
	ToneSerious     Tone = "serious"
	ToneCurious     Tone = "curious"
	ToneConfident   Tone = "confident"
)

// ClosedToneSet is the documented tone vocabulary.
var ClosedToneSet = map[Tone]struct{}{
	ToneUpbeat: {}, ToneCalm: {}, ToneExcited: {}, ToneReflective: {},
	ToneSuspenseful: {}, ToneSkeptical: {}, ToneHumorous: {}, ToneSerious: {},
	ToneCurious: {}, ToneConfident: {},
}

// legacyToneSynonyms are accepted by the parser and preserved verbatim;
// synthesis ignores tone either way, so they are never normalized.
var legacyToneSynonyms = map[Tone]struct{}{
	"sad": {}, "hopeful": {}, "empathetic": {}, "angry": {},
}

// KnownTone reports whether t is in the closed set or a legacy synonym.
func KnownTone(t Tone) bool {
	if _, ok := ClosedToneSet[t]; ok {
		return true
	}
	_, ok := legacyToneSynonyms[t]
	return ok
}

// Utterance is a single sentence bound to one speaker and one tone; the
// unit of speech synthesis.
type Utterance struct {
	Index            int     `json:"index"`
	Speaker          Speaker `json:"speaker"`
	Tone             Tone    `json:"tone"`
	Text             string  `json:"text"`
	WordCount        int     `json:"wordCount"`
	EstimatedSeconds float64 `json:"estimatedSeconds"`
}

// FormatUtterance re-serializes an utterance header in the strict shape.
// Parsing an emitted tone script and formatting its utterances reproduces
// the original speaker and tone positions.
func FormatUtterance(u Utterance) string {
	host := "1"
	if u.Speaker == SpeakerHost2 {
		host = "2"
	}
	return fmt.Sprintf("**Host %s:** [%s] %s", host, u.Tone, u.Text)
}

// toneBlock is a run of dialogue bound to a speaker and tone before
// sentence splitting.
type toneBlock struct {
	speaker Speaker
	tone    Tone
	text    string
}

var (
	// Strict shape: tone tag between the speaker colon and the text.
	strictToneRe = regexp.MustCompile(`^\s*\*\*Host\s*([12])\s*:\*\*\s*\[([A-Za-z]+)\]\s*(.+)$`)
	// Legacy shape: bold tone span, speakers alternate.
	legacyToneRe = regexp.MustCompile(`^\s*\*\*\[?([A-Za-z]+)\]?\*\*:?\s*(.+)$`)
	// Bracketed tone at the start of dialogue text.
	leadingToneRe = regexp.MustCompile(`^\[([A-Za-z]+)\]\s*`)
)

// ParseToneScript turns tone-annotated markdown into the ordered utterance
// sequence. Strategies run in order: the strict format, then the legacy
// bold-tone format, then line-oriented recovery with tones inferred from
// content. Recovery never drops a host line.
func ParseToneScript(md string) ([]Utterance, error) {
	blocks, ok := parseStrictTones(md)
	if !ok {
		blocks, ok = parseLegacyTones(md)
	}
	if !ok {
		blocks = parseInferredTones(md)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no dialogue lines found in tone script")
	}
	return expandBlocks(blocks), nil
}

// parseStrictTones accepts the document only when every host line carries a
// leading bracketed tone.
func parseStrictTones(md string) ([]toneBlock, bool) {
	var blocks []toneBlock
	for _, line := range strings.Split(md, "\n") {
		if m := strictToneRe.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, toneBlock{
				speaker: speakerFromDigit(m[1]),
				tone:    Tone(strings.ToLower(m[2])),
				text:    strings.TrimSpace(m[3]),
			})
			continue
		}
		if _, _, ok := ParseHostLine(line); ok {
			// A host line without a tone tag breaks the strict contract.
			return nil, false
		}
	}
	return blocks, len(blocks) > 0
}

// parseLegacyTones handles `**[tone]** text` spans with speakers
// alternating from host1. Only known tones match, so ordinary bold text
// does not masquerade as dialogue.
func parseLegacyTones(md string) ([]toneBlock, bool) {
	var blocks []toneBlock
	speaker := SpeakerHost1
	for _, line := range strings.Split(md, "\n") {
		m := legacyToneRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tone := Tone(strings.ToLower(m[1]))
		if !KnownTone(tone) {
			continue
		}
		blocks = append(blocks, toneBlock{
			speaker: speaker,
			tone:    tone,
			text:    strings.TrimSpace(m[2]),
		})
		speaker = otherSpeaker(speaker)
	}
	return blocks, len(blocks) > 0
}

// CountToneTags counts explicit tone tags in either accepted shape: the
// strict host-line placement and the legacy bold span. Inferred tones do
// not count; a script the model never tagged reports zero.
func CountToneTags(md string) int {
	n := 0
	for _, line := range strings.Split(md, "\n") {
		if strictToneRe.MatchString(line) {
			n++
			continue
		}
		if m := legacyToneRe.FindStringSubmatch(line); m != nil && KnownTone(Tone(strings.ToLower(m[1]))) {
			n++
		}
	}
	return n
}

// parseInferredTones binds every host line, taking a leading bracketed tone
// when present and inferring one from content otherwise.
func parseInferredTones(md string) []toneBlock {
	var blocks []toneBlock
	for _, line := range strings.Split(md, "\n") {
		speaker, text, ok := ParseHostLine(line)
		if !ok || text == "" {
			continue
		}
		tone := Tone("")
		if m := leadingToneRe.FindStringSubmatch(text); m != nil {
			candidate := Tone(strings.ToLower(m[1]))
			if KnownTone(candidate) {
				tone = candidate
				text = strings.TrimSpace(text[len(m[0]):])
			}
		}
		if tone == "" {
			tone = InferTone(text)
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, toneBlock{speaker: speaker, tone: tone, text: text})
	}
	return blocks
}

var (
	excitedWords    = []string{"amazing", "incredible", "fantastic", "wonderful", "best ever"}
	curiousWords    = []string{"wonder", "what if", "how does", "why does", "curious"}
	reflectiveWords = []string{"however", "consider", "reflect"}
	skepticalWords  = []string{"doubt", "really", "sure"}
	seriousWords    = []string{"serious", "critical", "important"}
)

// InferTone guesses a tone from dialogue content when the model omitted the
// tag. The rules mirror how the annotator describes each tone, with calm as
// the fallback.
func InferTone(text string) Tone {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "!") || containsAny(lower, excitedWords):
		return ToneExcited
	case strings.Contains(text, "?") || containsAny(lower, curiousWords):
		return ToneCurious
	case containsAny(lower, reflectiveWords):
		return ToneReflective
	case containsAny(lower, skepticalWords):
		return ToneSkeptical
	case containsAny(lower, seriousWords):
		return ToneSerious
	default:
		return ToneCalm
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// expandBlocks splits each bound block into sentences so every utterance is
// exactly one sentence sharing its block's speaker and tone.
func expandBlocks(blocks []toneBlock) []Utterance {
	var out []Utterance
	for _, b := range blocks {
		for _, sentence := range SplitSentences(b.text) {
			wc := CountWords(sentence)
			out = append(out, Utterance{
				Index:            len(out),
				Speaker:          b.speaker,
				Tone:             b.tone,
				Text:             sentence,
				WordCount:        wc,
				EstimatedSeconds: EstimatedSeconds(wc),
			})
		}
	}
	return out
}

func speakerFromDigit(d string) Speaker {
	if d == "2" {
		return SpeakerHost2
	}
	return SpeakerHost1
}

func otherSpeaker(s Speaker) Speaker {
	if s == SpeakerHost1 {
		return SpeakerHost2
	}
	return SpeakerHost1
}

// Arc is the advisory emotional trajectory of an episode.
type Arc struct {
	Thirds     [3]Tone `json:"thirds"`
	Descriptor string  `json:"descriptor"`
}

// AnalyzeArc computes the dominant tone of each third of the utterance
// sequence and a human-readable descriptor. Advisory only.
func AnalyzeArc(utterances []Utterance) Arc {
	var arc Arc
	if len(utterances) == 0 {
		arc.Descriptor = "empty"
		return arc
	}

	third := len(utterances) / 3
	bounds := [][2]int{
		{0, max(third, 1)},
		{max(third, 1), max(2*third, 1)},
		{max(2*third, 1), len(utterances)},
	}
	for i, b := range bounds {
		if b[0] >= b[1] || b[0] >= len(utterances) {
			arc.Thirds[i] = arc.Thirds[i-1]
			continue
		}
		arc.Thirds[i] = dominantTone(utterances[b[0]:b[1]])
	}

	if arc.Thirds[0] == arc.Thirds[1] && arc.Thirds[1] == arc.Thirds[2] {
		arc.Descriptor = fmt.Sprintf("steady %s throughout", arc.Thirds[0])
	} else {
		arc.Descriptor = fmt.Sprintf("opens %s, develops %s, closes %s",
			arc.Thirds[0], arc.Thirds[1], arc.Thirds[2])
	}
	return arc
}

func dominantTone(utterances []Utterance) Tone {
	if len(utterances) == 0 {
		return ToneCalm
	}
	counts := map[Tone]int{}
	best, bestCount := utterances[0].Tone, 0
	for _, u := range utterances {
		counts[u.Tone]++
		if counts[u.Tone] > bestCount {
			best, bestCount = u.Tone, counts[u.Tone]
		}
	}
	return best
}
