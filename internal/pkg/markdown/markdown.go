// Package markdown strips Markdown syntax down to plain text suitable for
// embedding. Intentionally lightweight: code fences, inline code, images,
// links, headings, HTML tags and emphasis markers are removed, everything
// else passes through.
package markdown

import (
	"regexp"
	"strings"
)

var (
	reCodeFence  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`([^`]*)`")
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeading    = regexp.MustCompile(`(?m)^#+\s*`)
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reBoldStar   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reEmphStar   = regexp.MustCompile(`\*(.*?)\*`)
	reBoldUnder  = regexp.MustCompile(`__(.*?)__`)
	reEmphUnder  = regexp.MustCompile(`_(.*?)_`)
	reBlankRuns  = regexp.MustCompile(`\n{2,}`)
)

// ToText converts Markdown to plain text.
func ToText(md string) string {
	text := reCodeFence.ReplaceAllString(md, "\n")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reImage.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	text = reHeading.ReplaceAllString(text, "")
	text = reHTMLTag.ReplaceAllString(text, "")
	text = reBoldStar.ReplaceAllString(text, "$1")
	text = reEmphStar.ReplaceAllString(text, "$1")
	text = reBoldUnder.ReplaceAllString(text, "$1")
	text = reEmphUnder.ReplaceAllString(text, "$1")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
