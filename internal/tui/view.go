package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/portfolio-console/internal/session"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.statusBarView(), m.viewport.View()}
	if m.snapshot.Transcript != "" {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("HEARD: %q", m.snapshot.Transcript)))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.composerPanel(), m.keyLegendView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		heroTitleStyle.Render(heroTitle),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) statusBarView() string {
	dot := statusIdleDot
	if m.snapshot.State != session.StateIdle {
		dot = statusBusyDot
	}
	audio := audioMutedStyle.Render("AUDIO_MUTED")
	if m.snapshot.AudioEnabled {
		audio = audioOnStyle.Render("AUDIO_ON")
	}
	voice := "VOICE_OFFLINE"
	switch {
	case m.snapshot.Listening:
		voice = "MIC_LIVE"
	case m.snapshot.VoiceAvailable:
		voice = "MIC_READY"
	}
	stats := []string{
		fmt.Sprintf("%s SYSTEM_STATUS: %s", dot, m.snapshot.State),
		audio,
		voice,
		fmt.Sprintf("SESSION %s", m.config.Session.SessionID()),
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.activeJobs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(m.activeJobs))
	for id := range m.activeJobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	badges := make([]string, 0, len(ids))
	for _, id := range ids {
		badges = append(badges, fmt.Sprintf("%s %s…", m.spinner.View(), m.activeJobs[id].Kind))
	}
	return badges
}

func (m *model) composerPanel() string {
	title := "QUERY"
	if m.composerMode == composerModeUpload {
		title = "UPLOAD_JD"
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(title),
		m.composer.View(),
		helperStyle.Render(m.composerHelpText()),
	})
}

func (m *model) composerHelpText() string {
	switch {
	case m.composerMode == composerModeUpload:
		return "Enter: analyze PDF • Esc: cancel upload"
	case m.stage == stageCatalogue:
		return "↑/↓: select • ←/→ or 0-4: filter • Enter: open case study • Esc: console"
	case m.stage == stageProject:
		return "↑/↓: scroll • Enter/Esc: back to projects"
	case m.stage == stageProfile:
		return "↑/↓: scroll • Tab/Esc: console"
	default:
		return "Enter: send • Esc: clear • PgUp/PgDn: scroll"
	}
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Ctrl+V", "Voice"},
		{"Ctrl+A", "Audio on/off"},
		{"Ctrl+U", "Upload JD"},
		{"Ctrl+P", "Case studies"},
		{"Ctrl+T", "Tech stack"},
		{"Ctrl+L", "Clear"},
		{"Tab", "Projects/profile"},
		{"Ctrl+C", "Quit"},
	}
	const columns = 4
	var rows []string
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + " ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}

// renderLogo draws the block letters with a one-cell drop shadow.
func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	paint := func(dx, dy int, style lipgloss.Style) {
		for y, runes := range lineRunes {
			for x, r := range runes {
				if r == ' ' || y+dy >= height || x+dx >= width {
					continue
				}
				grid[y+dy][x+dx] = cell{r: r, style: style}
			}
		}
	}
	paint(1, 1, logoShadowStyle)
	paint(0, 0, logoFaceStyle)

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
