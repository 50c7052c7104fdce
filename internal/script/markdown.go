package script

import (
	"regexp"
	"strings"
)

// Stage handoffs are markdown, so section checks have to be tolerant: a
// header "counts" when any ##/### line contains the wanted name,
// case-insensitively, regardless of numbering or decoration.

var mdHeaderRe = regexp.MustCompile(`(?m)^(#{2,6})\s*(.+?)\s*$`)

// HasSection reports whether md contains a header mentioning name.
func HasSection(md, name string) bool {
	needle := strings.ToLower(name)
	for _, m := range mdHeaderRe.FindAllStringSubmatch(md, -1) {
		if strings.Contains(strings.ToLower(m[2]), needle) {
			return true
		}
	}
	return false
}

// MissingSections returns the names absent from md, preserving order.
func MissingSections(md string, names []string) []string {
	var missing []string
	for _, n := range names {
		if !HasSection(md, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// SectionBody returns the text between the first header mentioning name and
// the next header of the same or higher level. Empty when absent.
func SectionBody(md, name string) string {
	needle := strings.ToLower(name)
	lines := strings.Split(md, "\n")

	start, level := -1, 0
	for i, line := range lines {
		m := mdHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if start < 0 {
			if strings.Contains(strings.ToLower(m[2]), needle) {
				start, level = i+1, len(m[1])
			}
			continue
		}
		if len(m[1]) <= level {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n"))
		}
	}
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

// Bullets returns the text of each top-level bullet in a block, with
// emphasis markers stripped.
func Bullets(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		var text string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			text = trimmed[2:]
		case strings.HasPrefix(trimmed, "* "):
			text = trimmed[2:]
		default:
			continue
		}
		text = strings.TrimSpace(emphasisRe.ReplaceAllString(text, ""))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// LabeledValue extracts "value" from a line shaped like
// "**Label:** value" or "- Label: value" anywhere in the block.
func LabeledValue(block, label string) string {
	needle := strings.ToLower(label)
	for _, line := range strings.Split(block, "\n") {
		plain := strings.TrimSpace(emphasisRe.ReplaceAllString(line, ""))
		plain = strings.TrimPrefix(plain, "- ")
		plain = strings.TrimPrefix(plain, "* ")
		idx := strings.Index(strings.ToLower(plain), needle)
		if idx < 0 {
			continue
		}
		rest := plain[idx+len(needle):]
		if colon := strings.Index(rest, ":"); colon >= 0 {
			return strings.TrimSpace(rest[colon+1:])
		}
	}
	return ""
}

var wordEstimateRe = regexp.MustCompile(`(?i)~?\s*(\d[\d,]*)\s*words?`)

// WordEstimate scans a block for a "~250 words" style figure.
func WordEstimate(block string) int {
	m := wordEstimateRe.FindStringSubmatch(block)
	if m == nil {
		return 0
	}
	n := 0
	for _, r := range m[1] {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
