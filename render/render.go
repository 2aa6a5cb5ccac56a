// Package render turns webhook reply text into sanitized HTML for display.
package render

import (
	"bytes"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	pkgerrors "github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	once     sync.Once
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
)

func setup() {
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			// Single newlines in replies are line breaks
			html.WithHardWraps(),
		),
	)
	policy = bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
}

// HTML renders text (markdown: lists, bullets, bold, line breaks) to HTML
// with unsafe markup removed.
func HTML(text string) (string, error) {
	once.Do(setup)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(normalizeBullets(text)), &buf); err != nil {
		return "", pkgerrors.Wrap(err, "failed to render markdown")
	}
	return strings.TrimSpace(policy.Sanitize(buf.String())), nil
}

// MustHTML is HTML that falls back to escaped text on error
func MustHTML(text string) string {
	out, err := HTML(text)
	if err != nil {
		return policy.Sanitize(text)
	}
	return out
}

// normalizeBullets turns "•" bullets, which workflows often emit, into
// markdown list items.
func normalizeBullets(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if rest, ok := strings.CutPrefix(trimmed, "• "); ok {
			lines[i] = "- " + rest
		}
	}
	return strings.Join(lines, "\n")
}
