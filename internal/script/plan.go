package script

import (
	"regexp"
	"strconv"
	"strings"
)

// RequiredPlanSections are the named sections the planner must emit; the
// validation is lenient, allowing up to two to be missing.
var RequiredPlanSections = []string{
	"Overview",
	"Chapter Breakdown",
	"Research Priorities",
	"Style Guidelines",
}

// PlanChapter is one entry of the plan's chapter breakdown.
type PlanChapter struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	WordEstimate  int      `json:"wordEstimate"`
	KeyPoints     []string `json:"keyPoints,omitempty"`
	Purpose       string   `json:"purpose,omitempty"`
	ResearchFocus string   `json:"researchFocus,omitempty"`
}

// Plan is the parsed planner output.
type Plan struct {
	Raw      string        `json:"raw"`
	Chapters []PlanChapter `json:"chapters"`
}

var chapterHeaderRe = regexp.MustCompile(`(?i)^(?:#{2,4}\s*|\*\*)?\s*chapter\s+(\d+)\s*[:.\-–—]?\s*(.*?)(?:\*\*)?\s*$`)

// ParsePlan extracts the ordered chapter sequence from plan markdown.
// Parsing is tolerant: a chapter is any "Chapter N" header; the labeled
// fields inside its block are optional.
func ParsePlan(md string) *Plan {
	plan := &Plan{Raw: md}
	lines := strings.Split(md, "\n")

	type span struct {
		number int
		title  string
		start  int
		end    int
	}
	var spans []span
	for i, line := range lines {
		m := chapterHeaderRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		n := atoi(m[1])
		if n == 0 {
			continue
		}
		if len(spans) > 0 {
			spans[len(spans)-1].end = i
		}
		spans = append(spans, span{number: n, title: strings.TrimSpace(m[2]), start: i + 1, end: len(lines)})
	}

	for _, s := range spans {
		block := strings.Join(lines[s.start:s.end], "\n")
		ch := PlanChapter{
			Number:        s.number,
			Title:         s.title,
			WordEstimate:  WordEstimate(block),
			Purpose:       LabeledValue(block, "Narrative Purpose"),
			ResearchFocus: LabeledValue(block, "Research Focus"),
		}
		if body := SectionBody(block, "Key Points"); body != "" {
			ch.KeyPoints = Bullets(body)
		} else if v := LabeledValue(block, "Key Points"); v != "" {
			ch.KeyPoints = splitInline(v)
		} else {
			// Bare bullets directly under the chapter header.
			ch.KeyPoints = bulletsBeforeLabels(block)
		}
		plan.Chapters = append(plan.Chapters, ch)
	}

	return plan
}

// TotalWordEstimate sums the per-chapter estimates.
func (p *Plan) TotalWordEstimate() int {
	total := 0
	for _, ch := range p.Chapters {
		total += ch.WordEstimate
	}
	return total
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func splitInline(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		for _, p := range strings.Split(part, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// bulletsBeforeLabels collects bullets that are not labeled fields.
func bulletsBeforeLabels(block string) []string {
	var out []string
	for _, b := range Bullets(block) {
		lower := strings.ToLower(b)
		if strings.HasPrefix(lower, "duration") ||
			strings.HasPrefix(lower, "narrative purpose") ||
			strings.HasPrefix(lower, "research focus") ||
			strings.HasPrefix(lower, "key points") {
			continue
		}
		out = append(out, b)
	}
	return out
}
