// Package fetch loads optional source material referenced by a brief,
// either a URL or a local file path, and reduces it to plain text the
// researcher can wrap.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// MinUsefulWords is the threshold below which fetched source material is
// ignored and the researcher falls back to model research.
const MinUsefulWords = 50

// maxFetchBytes caps how much of a remote document is read.
const maxFetchBytes = 2 << 20

// Result is the reduced source material handed to the researcher.
type Result struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

// Useful reports whether the fetched content is substantial enough to
// ground research on.
func (r *Result) Useful() bool {
	return r != nil && r.WordCount >= MinUsefulWords
}

// Fetcher retrieves source material for briefs. Zero value is not usable;
// construct with New.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// New returns a Fetcher with a bounded HTTP client.
func New(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Fetch loads source by scheme: http(s) URLs are fetched over the network,
// anything else is treated as a local file path. Errors here never fail a
// job; the caller falls back to model research.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Result, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return f.fetchURL(ctx, source)
	}
	return f.fetchFile(source)
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "podforge/1.0 (+https://github.com/podforge/podforge)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || looksLikeHTML(body) {
		title, content, err := extractHTML(string(body))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		if title == "" {
			title = titleFromURL(rawURL)
		}
		return f.result(rawURL, title, content), nil
	}

	return f.result(rawURL, titleFromURL(rawURL), string(body)), nil
}

func (f *Fetcher) fetchFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" || looksLikeHTML(data) {
		title, content, err := extractHTML(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		if title == "" {
			title = titleFromPath(path)
		}
		return f.result(path, title, content), nil
	}

	content := string(data)
	title := firstMarkdownHeading(content)
	if title == "" {
		title = titleFromPath(path)
	}
	return f.result(path, title, content), nil
}

func (f *Fetcher) result(source, title, content string) *Result {
	content = strings.TrimSpace(content)
	r := &Result{
		Source:    source,
		Title:     strings.TrimSpace(title),
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}
	f.logger.Debug("fetched source", "source", source, "title", r.Title, "words", r.WordCount)
	return r
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

var (
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// extractHTML walks the parse tree collecting visible text, skipping
// chrome elements, and returns the document title separately.
func extractHTML(src string) (title, content string, err error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", "", err
	}

	var sb strings.Builder
	title = walkHTML(doc, &sb, 0)
	content = sb.String()
	content = multiNewlineRe.ReplaceAllString(content, "\n\n")
	content = multiSpaceRe.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return title, strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func walkHTML(n *html.Node, sb *strings.Builder, depth int) string {
	if depth > 50 {
		return ""
	}

	title := ""
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header":
			return ""
		case "title":
			return textContent(n)
		case "h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "section", "article", "tr":
			sb.WriteString("\n\n")
		case "br":
			sb.WriteString("\n")
		case "li":
			sb.WriteString("\n- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := walkHTML(c, sb, depth+1); t != "" && title == "" {
			title = t
		}
	}
	return title
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

var headingRe = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)

func firstMarkdownHeading(content string) string {
	if m := headingRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if p := strings.Trim(u.Path, "/"); p != "" {
		return titleFromPath(p)
	}
	return u.Host
}
