package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/portfolio-console/internal/portfolio"
	"github.com/csheth/portfolio-console/internal/session"
	"github.com/csheth/portfolio-console/internal/speech"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Session   Session
	Catalogue portfolio.Catalogue
	APIURL    string
	Logger    *zap.Logger
	// Context bounds the jobs the console starts. It defaults to
	// context.Background.
	Context context.Context
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	composer := textinput.New()
	composer.Placeholder = composerQueryPlaceholder
	composer.Focus()
	composer.CharLimit = 500
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true

	m := &model{
		config:        config,
		log:           config.Logger.Named("tui"),
		jobs:          newJobBus(config.Context, config.Logger),
		stage:         stageConsole,
		composer:      composer,
		composerMode:  composerModeQuery,
		spinner:       spin,
		viewport:      vp,
		layout:        newPageLayout(),
		activeJobs:    map[string]jobSnapshot{},
		viewportDirty: true,
	}
	m.snapshot = config.Session.Snapshot()
	m.lastNavSeq = m.snapshot.Navigation.Seq
	return m
}

type model struct {
	config Config
	log    *zap.Logger
	jobs   *jobBus

	stage        stage
	composer     textinput.Model
	composerMode composerMode
	spinner      spinner.Model
	viewport     viewport.Model
	layout       pageLayout

	snapshot   session.Snapshot
	lastNavSeq uint64
	activeJobs map[string]jobSnapshot

	projectFilter   string
	projectCursor   int
	selectedProject *portfolio.Project

	infoMessage   string
	errorMessage  string
	viewportDirty bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSessionUpdate(m.config.Session.Updates()))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.markViewportDirty()
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.composer.Width = m.layout.viewportWidth - 4
		m.markViewportDirty()
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case sessionUpdateMsg:
		cmd := m.syncSnapshot()
		return m, tea.Batch(cmd, waitForSessionUpdate(m.config.Session.Updates()))
	case jobSignalMsg:
		m.activeJobs[msg.Snapshot.ID] = msg.Snapshot
		return m, m.spinner.Tick
	case jobResultEnvelope:
		delete(m.activeJobs, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case queryResultMsg:
		m.syncSnapshot()
		switch {
		case msg.outcome.ignored, msg.outcome.stale:
		case msg.outcome.err != nil:
			m.errorMessage = fmt.Sprintf("agent error: %v", msg.outcome.err)
			m.infoMessage = fmt.Sprintf("Check that the agent at %s is reachable.", m.config.APIURL)
		default:
			m.errorMessage = ""
			m.infoMessage = ""
		}
		return m, nil
	case uploadResultMsg:
		m.syncSnapshot()
		switch {
		case msg.outcome.ignored, msg.outcome.stale:
		case msg.outcome.err != nil:
			m.errorMessage = fmt.Sprintf("upload error: %v", msg.outcome.err)
			m.infoMessage = "Press Ctrl+U to try another file."
		default:
			m.errorMessage = ""
			m.infoMessage = "Fit report ready."
		}
		return m, nil
	case audioResultMsg:
		m.syncSnapshot()
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("audio error: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		if m.snapshot.AudioEnabled {
			m.infoMessage = "Audio on."
		} else {
			m.infoMessage = "Audio muted."
		}
		return m, nil
	case techStackResultMsg:
		m.syncSnapshot()
		m.stage = stageConsole
		m.viewport.GotoTop()
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlV:
		m.toggleVoice()
		return m, nil
	case tea.KeyCtrlA:
		return m, m.jobs.Start(jobKindAudio, toggleAudioJob(m.config.Session))
	case tea.KeyCtrlL:
		// Clear first so aborted jobs come back as stale turns.
		m.config.Session.Clear()
		if n := m.jobs.Cancel(jobKindQuery, jobKindUpload); n > 0 {
			m.log.Debug("canceled in-flight jobs", zap.Int("count", n))
		}
		m.errorMessage = ""
		m.infoMessage = "Console cleared."
		m.syncSnapshot()
		return m, nil
	case tea.KeyCtrlU:
		m.setComposerMode(composerModeUpload)
		m.infoMessage = "Enter the path to a job description PDF."
		return m, nil
	case tea.KeyCtrlP:
		m.config.Session.ShowCaseStudies()
		m.syncSnapshot()
		return m, nil
	case tea.KeyCtrlT:
		return m, m.jobs.Start(jobKindTechStack, techStackJob(m.config.Session))
	case tea.KeyTab:
		switch m.stage {
		case stageConsole:
			m.openCatalogue(m.projectFilter)
		case stageCatalogue, stageProject:
			m.stage = stageProfile
			m.selectedProject = nil
			m.markViewportDirty()
			m.viewport.GotoTop()
		default:
			m.stage = stageConsole
			m.markViewportDirty()
		}
		return m, nil
	case tea.KeyPgUp:
		m.viewport.HalfViewUp()
		return m, nil
	case tea.KeyPgDown:
		m.viewport.HalfViewDown()
		return m, nil
	case tea.KeyEsc:
		switch {
		case m.composerMode == composerModeUpload:
			m.setComposerMode(composerModeQuery)
			m.infoMessage = "Upload canceled."
		case m.stage == stageProject:
			m.stage = stageCatalogue
			m.selectedProject = nil
			m.markViewportDirty()
		case m.stage == stageCatalogue, m.stage == stageProfile:
			m.stage = stageConsole
			m.markViewportDirty()
		default:
			m.composer.SetValue("")
		}
		return m, nil
	}

	if m.stage != stageConsole && strings.TrimSpace(m.composer.Value()) == "" {
		if handled, cmd := m.handleCatalogueKey(key); handled {
			return m, cmd
		}
	}
	cmd, _ := m.processComposerKey(key)
	return m, cmd
}

// processComposerKey feeds a key to the composer and reports whether the key
// submitted its value.
func (m *model) processComposerKey(key tea.KeyMsg) (tea.Cmd, bool) {
	if key.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(key)
		return cmd, false
	}
	value := strings.TrimSpace(m.composer.Value())
	switch {
	case m.commandAvailable(actionSubmit):
		m.composer.SetValue("")
		m.stage = stageConsole
		m.errorMessage = ""
		m.infoMessage = ""
		m.viewport.GotoTop()
		return m.jobs.Start(jobKindQuery, submitQueryJob(m.config.Session, value)), true
	case m.commandAvailable(actionUpload):
		m.composer.SetValue("")
		m.setComposerMode(composerModeQuery)
		m.stage = stageConsole
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Uploading %s…", value)
		return m.jobs.Start(jobKindUpload, uploadDocumentJob(m.config.Session, value)), true
	}
	return nil, false
}

func (m *model) handleCatalogueKey(key tea.KeyMsg) (bool, tea.Cmd) {
	if m.stage == stageProfile {
		switch key.String() {
		case "up":
			m.viewport.LineUp(1)
			return true, nil
		case "down":
			m.viewport.LineDown(1)
			return true, nil
		}
		return false, nil
	}
	if m.stage == stageProject {
		switch key.String() {
		case "up":
			m.viewport.LineUp(1)
			return true, nil
		case "down":
			m.viewport.LineDown(1)
			return true, nil
		case "enter", "backspace":
			m.stage = stageCatalogue
			m.selectedProject = nil
			m.markViewportDirty()
			return true, nil
		}
		return false, nil
	}
	switch key.String() {
	case "up":
		m.moveProjectCursor(-1)
		return true, nil
	case "down":
		m.moveProjectCursor(1)
		return true, nil
	case "left":
		m.cycleFilter(-1)
		return true, nil
	case "right":
		m.cycleFilter(1)
		return true, nil
	case "0":
		m.applyFilter("")
		return true, nil
	case "1", "2", "3", "4":
		idx := int(key.Runes[0] - '1')
		m.applyFilter(portfolio.ToggleCategory(m.projectFilter, portfolio.Categories[idx]))
		return true, nil
	case "enter":
		projects := m.visibleProjects()
		if m.projectCursor < 0 || m.projectCursor >= len(projects) {
			return true, nil
		}
		selected := projects[m.projectCursor]
		m.selectedProject = &selected
		m.stage = stageProject
		m.markViewportDirty()
		m.refreshViewport()
		m.viewport.GotoTop()
		return true, nil
	}
	return false, nil
}

func (m *model) toggleVoice() {
	err := m.config.Session.ToggleMic()
	m.syncSnapshot()
	switch {
	case err == nil:
		m.errorMessage = ""
		if m.snapshot.Listening {
			m.infoMessage = "Listening… press Ctrl+V to stop."
		} else {
			m.infoMessage = ""
		}
	case errors.Is(err, speech.ErrUnavailable):
		m.errorMessage = "Voice input is not available. Set --speech-cmd to a recognizer."
	case errors.Is(err, session.ErrBusy):
		m.infoMessage = "Wait for the current query to finish."
	default:
		m.errorMessage = fmt.Sprintf("voice error: %v", err)
	}
}

// syncSnapshot pulls the controller state and reacts to navigation requests.
func (m *model) syncSnapshot() tea.Cmd {
	wasProcessing := m.snapshot.ControllerState == session.StateProcessing
	m.snapshot = m.config.Session.Snapshot()
	if nav := m.snapshot.Navigation; nav.Seq != m.lastNavSeq {
		m.lastNavSeq = nav.Seq
		m.log.Debug("opening catalogue", zap.Uint64("seq", nav.Seq), zap.String("filter", nav.Filter))
		m.openCatalogue(nav.Filter)
	}
	switch {
	case m.composerMode == composerModeUpload:
		m.composer.Placeholder = composerUploadPlaceholder
	case m.snapshot.Listening:
		m.composer.Placeholder = composerListeningPlaceholder
	default:
		m.composer.Placeholder = composerQueryPlaceholder
	}
	m.markViewportDirty()
	if !wasProcessing && m.snapshot.ControllerState == session.StateProcessing {
		return m.spinner.Tick
	}
	return nil
}

func (m *model) openCatalogue(filter string) {
	m.stage = stageCatalogue
	m.selectedProject = nil
	m.applyFilter(filter)
}

func (m *model) applyFilter(filter string) {
	m.projectFilter = filter
	m.projectCursor = 0
	m.markViewportDirty()
	m.viewport.GotoTop()
}

func (m *model) cycleFilter(delta int) {
	presets := append([]string{""}, portfolio.Categories...)
	idx := 0
	for i, preset := range presets {
		if preset == m.projectFilter {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(presets)) % len(presets)
	m.applyFilter(presets[idx])
}

func (m *model) moveProjectCursor(delta int) {
	count := len(m.visibleProjects())
	if count == 0 {
		return
	}
	target := m.projectCursor + delta
	if target < 0 {
		target = 0
	}
	if target >= count {
		target = count - 1
	}
	if target == m.projectCursor {
		return
	}
	m.projectCursor = target
	m.markViewportDirty()
	m.refreshViewport()
}

func (m *model) setComposerMode(mode composerMode) {
	m.composerMode = mode
	m.composer.SetValue("")
	if mode == composerModeUpload {
		m.composer.Placeholder = composerUploadPlaceholder
	} else {
		m.composer.Placeholder = composerQueryPlaceholder
	}
}

func (m *model) busy() bool {
	return m.snapshot.ControllerState == session.StateProcessing || len(m.activeJobs) > 0
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	switch m.stage {
	case stageCatalogue:
		content, cursorLine := m.buildCatalogueContent()
		m.viewport.SetContent(content)
		m.ensureLineVisible(cursorLine)
	case stageProject:
		if m.selectedProject == nil {
			m.stage = stageCatalogue
			m.refreshViewport()
			return
		}
		m.viewport.SetContent(m.buildProjectContent(*m.selectedProject))
	case stageProfile:
		m.viewport.SetContent(m.buildProfileContent())
	default:
		m.viewport.SetContent(m.buildConsoleContent())
	}
}

func (m *model) ensureLineVisible(line int) {
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
		return
	}
	lowerBound := m.viewport.YOffset + m.viewport.Height - 4
	if line > lowerBound {
		target := line - m.viewport.Height + 4
		if target < 0 {
			target = 0
		}
		m.viewport.SetYOffset(target)
	}
}
