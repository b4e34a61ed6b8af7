package tui

import (
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

var (
	boldSpan   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicSpan = regexp.MustCompile(`(^|[^*])\*([^*\s][^*]*)\*`)
	linkSpan   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// renderMarkdown draws the small markdown subset agent replies use:
// headings, bullets, bold, italics and links. Everything else passes through.
func renderMarkdown(text string, width int) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			out = append(out, "")
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, markdownHeadStyle.Render(wordwrap.String(plainInline(heading), width)))
		case isBoldOnly(trimmed):
			out = append(out, markdownHeadStyle.Render(wordwrap.String(plainInline(trimmed), width)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			body := wordwrap.String(styleInline(trimmed[2:]), width-3)
			out = append(out, " • "+indentMultiline(body, "   ")[3:])
		default:
			out = append(out, wordwrap.String(styleInline(line), width))
		}
	}
	return strings.Join(out, "\n")
}

func isBoldOnly(line string) bool {
	loc := boldSpan.FindStringIndex(line)
	return loc != nil && loc[0] == 0 && loc[1] == len(line)
}

// plainInline removes inline markers without styling.
func plainInline(text string) string {
	text = linkSpan.ReplaceAllString(text, "$1 ($2)")
	text = boldSpan.ReplaceAllString(text, "$1")
	text = italicSpan.ReplaceAllString(text, "$1$2")
	return text
}

func styleInline(text string) string {
	text = linkSpan.ReplaceAllString(text, "$1 ($2)")
	text = boldSpan.ReplaceAllStringFunc(text, func(match string) string {
		return boldStyle.Render(strings.Trim(match, "*"))
	})
	return italicSpan.ReplaceAllString(text, "$1$2")
}
