package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/portfolio-console/internal/portfolio"
	"github.com/csheth/portfolio-console/internal/session"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	composerHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 12,
		composerHeight: 3,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.composerHeight = 3
	const chrome = 13
	const statusHeight = 1
	usable := height - chrome - l.composerHeight - statusHeight
	if usable < 6 {
		usable = 6
	}
	l.viewportHeight = usable
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

// buildConsoleContent renders the console log followed by the live response.
func (m *model) buildConsoleContent() string {
	cb := &contentBuilder{}
	wrap := m.wrapWidth(2)
	for _, entry := range m.snapshot.Log {
		style := consoleLineStyle
		if strings.Contains(entry, "⚠️") {
			style = consoleWarnStyle
		}
		cb.WriteString(style.Render(wordwrap.String(entry, wrap)))
		cb.WriteRune('\n')
	}
	if m.snapshot.ControllerState == session.StateProcessing {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("%s thinking…", m.spinner.View())))
		cb.WriteRune('\n')
	}
	if m.snapshot.HasResponse {
		cb.WriteRune('\n')
		cb.WriteString(responseHeaderStyle.Render("AGENT_RESPONSE"))
		cb.WriteRune('\n')
		body := renderMarkdown(previewText(m.snapshot.Response, responsePreviewLimit), wrap-4)
		cb.WriteString(responseBoxStyle.Width(wrap).Render(body))
		cb.WriteRune('\n')
	}
	return cb.String()
}

// buildCatalogueContent renders the filter chips and the matching projects.
func (m *model) buildCatalogueContent() (string, int) {
	cb := &contentBuilder{}
	cb.WriteString(sectionHeaderStyle.Render("[ PROJECT_DATABASE ]"))
	cb.WriteRune('\n')
	cb.WriteString(m.filterChips())
	cb.WriteRune('\n')
	if m.projectFilter != "" {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("FILTER: %q", m.projectFilter)))
		cb.WriteRune('\n')
	}
	cb.WriteRune('\n')

	projects := m.visibleProjects()
	if len(projects) == 0 {
		cb.WriteString(helperStyle.Render("NO_MATCHING_RECORDS. Press 0 to show all projects."))
		cb.WriteRune('\n')
		return cb.String(), 0
	}
	wrap := m.wrapWidth(4)
	cursorLine := 0
	for idx, p := range projects {
		heading := fmt.Sprintf("%s  (%s)", p.Title, p.Year)
		if idx == m.projectCursor {
			cursorLine = cb.Line()
			cb.WriteString(currentLineStyle.Render("▸ " + heading))
		} else {
			cb.WriteString("  " + boldStyle.Render(heading))
		}
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(helperStyle.Render(wordwrap.String(p.Category, wrap)), "    "))
		cb.WriteRune('\n')
		cb.WriteString("    " + stackTagStyle.Render(strings.Join(p.TechStack, " • ")))
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(wordwrap.String(plainInline(p.Summary), wrap), "    "))
		cb.WriteRune('\n')
		if idx < len(projects)-1 {
			cb.WriteRune('\n')
		}
	}
	return cb.String(), cursorLine
}

// buildProjectContent renders one case study.
func (m *model) buildProjectContent(p portfolio.Project) string {
	cb := &contentBuilder{}
	wrap := m.wrapWidth(4)
	cb.WriteString(heroTitleStyle.Render(p.Title))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render(fmt.Sprintf("%s  •  %s", p.Year, p.Category)))
	cb.WriteRune('\n')
	cb.WriteString(stackTagStyle.Render(strings.Join(p.TechStack, " • ")))
	cb.WriteRune('\n')
	sections := []struct {
		title string
		body  string
	}{
		{"SUMMARY", p.Summary},
		{"THE_CHALLENGE", p.Challenge},
		{"THE_SOLUTION", p.Solution},
		{"THE_IMPACT", p.Impact},
	}
	for _, section := range sections {
		if strings.TrimSpace(section.body) == "" {
			continue
		}
		cb.WriteRune('\n')
		cb.WriteString(sectionHeaderStyle.Render(section.title))
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(renderMarkdown(section.body, wrap), "  "))
		cb.WriteRune('\n')
	}
	return cb.String()
}

// buildProfileContent renders the experience log and the skills matrix.
func (m *model) buildProfileContent() string {
	cb := &contentBuilder{}
	wrap := m.wrapWidth(4)
	cb.WriteString(sectionHeaderStyle.Render("[ EXPERIENCE_LOG ]"))
	cb.WriteRune('\n')
	for _, e := range m.config.Catalogue.Experience {
		cb.WriteRune('\n')
		cb.WriteString(boldStyle.Render(e.Role) + "  " + helperStyle.Render(e.Period))
		cb.WriteRune('\n')
		cb.WriteString("  " + stackTagStyle.Render(e.Company))
		if e.Location != "" {
			cb.WriteString(helperStyle.Render("  •  " + e.Location))
		}
		cb.WriteRune('\n')
		cb.WriteString(indentMultiline(wordwrap.String(plainInline(e.Metric), wrap), "  "))
		cb.WriteRune('\n')
	}

	cb.WriteRune('\n')
	cb.WriteString(sectionHeaderStyle.Render("[ SKILLS_MATRIX ]"))
	cb.WriteRune('\n')
	for _, s := range m.config.Catalogue.Skills {
		cb.WriteRune('\n')
		cb.WriteString(boldStyle.Render(s.Category) + "  " + helperStyle.Render(s.Status))
		cb.WriteRune('\n')
		cb.WriteString("  " + scoreBar(s.Score, 20) + fmt.Sprintf(" %d%%", s.Score))
		cb.WriteRune('\n')
		if len(s.Tools) > 0 {
			cb.WriteString("  " + stackTagStyle.Render(strings.Join(s.Tools, " • ")))
			cb.WriteRune('\n')
		}
		if s.Details != "" {
			cb.WriteString(indentMultiline(helperStyle.Render(wordwrap.String(s.Details, wrap)), "  "))
			cb.WriteRune('\n')
		}
	}
	return cb.String()
}

// scoreBar draws score (0-100) as a bar of width cells.
func scoreBar(score, width int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score * width / 100
	return stackTagStyle.Render(strings.Repeat("█", filled)) + helperStyle.Render(strings.Repeat("░", width-filled))
}

func (m *model) filterChips() string {
	chips := []string{m.chip("ALL", m.projectFilter == "")}
	for _, category := range portfolio.Categories {
		chips = append(chips, m.chip(category, m.projectFilter == category))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{boldStyle.Render("PROTOCOLS: ")}, chips...)...)
}

func (m *model) chip(label string, active bool) string {
	if active {
		return chipActiveStyle.Render("[" + label + "]")
	}
	return chipStyle.Render("[" + label + "]")
}

func (m *model) visibleProjects() []portfolio.Project {
	return portfolio.Filter(m.config.Catalogue.Projects, m.projectFilter)
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
