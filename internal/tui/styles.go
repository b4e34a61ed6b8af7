package tui

import "github.com/charmbracelet/lipgloss"

var (
	inkColor    = lipgloss.Color("#0a0a0a")
	paperColor  = lipgloss.Color("#f5f5f0")
	powerColor  = lipgloss.Color("#ff4f00")
	signalColor = lipgloss.Color("#39ff14")
	mutedColor  = lipgloss.Color("244")

	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(powerColor)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(mutedColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(mutedColor).Bold(true)
	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(paperColor)

	consoleLineStyle    = lipgloss.NewStyle().Foreground(signalColor)
	consoleWarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Bold(true)
	responseBoxStyle    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(powerColor).Padding(0, 1)
	responseHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Background(powerColor).Padding(0, 1)
	boldStyle           = lipgloss.NewStyle().Bold(true)
	markdownHeadStyle   = lipgloss.NewStyle().Bold(true).Foreground(powerColor)

	statusBarStyle  = lipgloss.NewStyle().Foreground(inkColor).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	statusIdleDot   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Render("●")
	statusBusyDot   = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")).Render("●")
	audioOnStyle    = lipgloss.NewStyle().Bold(true).Foreground(powerColor)
	audioMutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(inkColor).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)

	chipStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	chipActiveStyle  = chipStyle.Copy().Foreground(paperColor).Background(inkColor).Bold(true)
	currentLineStyle = lipgloss.NewStyle().Foreground(inkColor).Background(lipgloss.Color("#8ecae6"))
	stackTagStyle    = lipgloss.NewStyle().Foreground(powerColor)

	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(paperColor).Background(inkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(powerColor)
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		" █████╗    ██████╗   ███████╗  ███╗   ██╗  ████████╗  ",
		"██╔══██╗  ██╔════╝   ██╔════╝  ████╗  ██║  ╚══██╔══╝  ",
		"███████║  ██║  ███╗  █████╗    ██╔██╗ ██║     ██║     ",
		"██╔══██║  ██║   ██║  ██╔══╝    ██║╚██╗██║     ██║     ",
		"██║  ██║  ╚██████╔╝  ███████╗  ██║ ╚████║     ██║     ",
		"╚═╝  ╚═╝   ╚═════╝   ╚══════╝  ╚═╝  ╚═══╝     ╚═╝     ",
	}
)
