package script

import (
	"strings"
	"testing"
)

func TestStripMetaBlocks(t *testing.T) {
	md := `## Chapter 1

**Host 1:** [calm] Hello.

## Speaking Notes

- Emphasize the dates
- Slow down here

## Chapter 2

**Host 2:** [calm] Hi again.

Word count: 12
`
	got := StripMetaBlocks(md)
	if strings.Contains(got, "Emphasize the dates") {
		t.Errorf("expected speaking notes removed, got %q", got)
	}
	if strings.Contains(got, "Word count") {
		t.Errorf("expected word count annotation removed, got %q", got)
	}
	if !strings.Contains(got, "**Host 1:** [calm] Hello.") {
		t.Errorf("expected host 1 dialogue kept, got %q", got)
	}
	if !strings.Contains(got, "## Chapter 2") || !strings.Contains(got, "**Host 2:** [calm] Hi again.") {
		t.Errorf("expected chapter 2 content kept, got %q", got)
	}
}

func TestJoinChapterScripts(t *testing.T) {
	scripts := []string{
		"**Host 1:** [calm] First chapter line.",
		"",
		"### Chapter 3: Custom Title\n\n**Host 2:** [calm] Third chapter line.",
	}
	got := JoinChapterScripts(scripts)

	if !strings.Contains(got, "## Chapter 1\n") {
		t.Errorf("expected generated heading for first script, got %q", got)
	}
	if strings.Contains(got, "## Chapter 2") {
		t.Errorf("expected empty script skipped without heading, got %q", got)
	}
	if !strings.Contains(got, "### Chapter 3: Custom Title") {
		t.Errorf("expected existing heading kept, got %q", got)
	}
	if strings.Count(got, "Chapter 3") != 1 {
		t.Errorf("expected no duplicate heading for chapter 3, got %q", got)
	}
}

func TestSplitChapterBlocks(t *testing.T) {
	md := `# Final Script

## Chapter 1

**Host 1:** [calm] First chapter line.

## Chapter 2

**Host 2:** [calm] Second chapter line.
`
	blocks := SplitChapterBlocks(md)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %#v", len(blocks), blocks)
	}
	if blocks[0].Number != 1 || blocks[1].Number != 2 {
		t.Errorf("unexpected numbering: %d, %d", blocks[0].Number, blocks[1].Number)
	}
	if !strings.Contains(blocks[0].Markdown, "First chapter line.") {
		t.Errorf("expected preamble and chapter 1 content in first block, got %q", blocks[0].Markdown)
	}
	if !strings.Contains(blocks[0].Markdown, "# Final Script") {
		t.Errorf("expected preamble attached to first block, got %q", blocks[0].Markdown)
	}
	if strings.Contains(blocks[1].Markdown, "First chapter line.") {
		t.Errorf("chapter 1 content leaked into block 2: %q", blocks[1].Markdown)
	}
}

func TestSplitChapterBlocks_NoHeaders(t *testing.T) {
	blocks := SplitChapterBlocks("**Host 1:** only dialogue here\n")
	if len(blocks) != 1 || blocks[0].Number != 1 {
		t.Fatalf("expected single block numbered 1, got %#v", blocks)
	}
	if blocks := SplitChapterBlocks("   \n"); blocks != nil {
		t.Errorf("expected nil for blank input, got %#v", blocks)
	}
}

func TestSplitChapterBlocks_RoundTrip(t *testing.T) {
	scripts := []string{
		"**Host 1:** [calm] First chapter line.",
		"**Host 2:** [calm] Second chapter line.",
	}
	blocks := SplitChapterBlocks(JoinChapterScripts(scripts))
	if len(blocks) != len(scripts) {
		t.Fatalf("round trip changed block count: %d", len(blocks))
	}
	for i, b := range blocks {
		if !strings.Contains(b.Markdown, scripts[i]) {
			t.Errorf("block %d lost its dialogue: %q", i, b.Markdown)
		}
	}
}

func TestDialogueOnly(t *testing.T) {
	md := `## Chapter 1

Narration to drop.
**Host 1:** keep this
**Host 2:** and this
`
	got := DialogueOnly(md)
	if len(got) != 2 {
		t.Fatalf("expected 2 dialogue lines, got %d: %#v", len(got), got)
	}
	if got[0] != "**Host 1:** keep this" {
		t.Errorf("unexpected first line: %q", got[0])
	}
}

func TestHostBalance(t *testing.T) {
	md := `**Host 1:** one two three
**Host 2:** four five six
`
	if got := HostBalance(md); got != 0.5 {
		t.Errorf("expected even balance 0.5, got %v", got)
	}
	if got := HostBalance("no dialogue at all"); got != 0 {
		t.Errorf("expected 0 for empty script, got %v", got)
	}
	if got := HostBalance("**Host 1:** solo voice here"); got != 1 {
		t.Errorf("expected 1.0 for single host, got %v", got)
	}
}
