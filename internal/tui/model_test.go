package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/portfolio-console/internal/intent"
	"github.com/csheth/portfolio-console/internal/session"
	"github.com/csheth/portfolio-console/internal/speech"
)

func TestInitialViewShowsReadyConsole(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"SYSTEM_STATUS: IDLE", "> SYSTEM_READY...", "AUDIO_MUTED", "VOICE_OFFLINE", "guest_test", heroTitle} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestComposerEnterSubmitsQuery(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("  what did you build at fintech?  ")

	cmd, handled := m.processComposerKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !handled {
		t.Fatal("enter should submit query entries")
	}
	if cmd == nil {
		t.Fatal("submit should return a command to start the query job")
	}
	if got := m.composer.Value(); got != "" {
		t.Fatalf("composer should clear after submission, got %q", got)
	}
	if m.stage != stageConsole {
		t.Fatalf("stage not reset, got %v", m.stage)
	}
}

func TestComposerEnterIgnoresBlankInput(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("   ")

	cmd, handled := m.processComposerKey(tea.KeyMsg{Type: tea.KeyEnter})
	if handled || cmd != nil {
		t.Fatalf("blank input should not submit (handled=%v cmd=%v)", handled, cmd)
	}
}

func TestUploadModeRoundTrip(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.composerMode != composerModeUpload {
		t.Fatalf("ctrl+u should enter upload mode, got %v", m.composerMode)
	}
	if m.composer.Placeholder != composerUploadPlaceholder {
		t.Fatalf("placeholder not switched: %q", m.composer.Placeholder)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.composerMode != composerModeQuery {
		t.Fatalf("esc should return to query mode, got %v", m.composerMode)
	}
	if m.composer.Placeholder != composerQueryPlaceholder {
		t.Fatalf("placeholder not restored: %q", m.composer.Placeholder)
	}
}

func TestUploadSubmitsPathAndLeavesUploadMode(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	m.composer.SetValue("/tmp/jd.pdf")

	cmd, handled := m.processComposerKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !handled || cmd == nil {
		t.Fatal("enter should start the upload job")
	}
	if m.composerMode != composerModeQuery {
		t.Fatalf("composer should return to query mode, got %v", m.composerMode)
	}
}

func TestTabTogglesCatalogue(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.stage != stageCatalogue {
		t.Fatalf("tab should open the catalogue, got %v", m.stage)
	}
	if !strings.Contains(m.View(), "PROJECT_DATABASE") {
		t.Fatal("catalogue view should render the project database")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.stage != stageProfile {
		t.Fatalf("tab should move on to the profile, got %v", m.stage)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.stage != stageConsole {
		t.Fatalf("tab should return to the console, got %v", m.stage)
	}
}

func TestProfileRendersExperienceAndSkills(t *testing.T) {
	m := newTestModel(t)
	catalogue := m.config.Catalogue
	if len(catalogue.Experience) == 0 || len(catalogue.Skills) == 0 {
		t.Fatal("embedded catalogue should carry experience and skills")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	view := m.View()
	for _, want := range []string{"EXPERIENCE_LOG", catalogue.Experience[0].Company, catalogue.Experience[0].Role} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in profile view:\n%s", want, view)
		}
	}
	content := m.buildProfileContent()
	for _, want := range []string{"SKILLS_MATRIX", catalogue.Skills[0].Category, catalogue.Skills[0].Status} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in profile content", want)
		}
	}
	if !strings.Contains(view, "Tab/Esc: console") {
		t.Fatalf("profile help text missing:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageConsole {
		t.Fatalf("esc should leave the profile, got %v", m.stage)
	}
}

func TestProfileKeepsTypingInComposer(t *testing.T) {
	m := newTestModel(t)
	m.stage = stageProfile
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if m.composer.Value() != "1" {
		t.Fatalf("digits should reach the composer outside the catalogue, got %q", m.composer.Value())
	}
	if m.projectFilter != "" {
		t.Fatalf("profile keys should not touch the project filter, got %q", m.projectFilter)
	}
}

func TestNavigationQueryOpensFilteredCatalogue(t *testing.T) {
	backend := &fakeAgent{reply: "unused"}
	ctrl := newTestSession(t, backend)
	m := newTestModelWith(t, ctrl)

	ctrl.Submit(context.Background(), "show me the rag projects")
	m.Update(sessionUpdateMsg{})

	if m.stage != stageCatalogue {
		t.Fatalf("navigation should open the catalogue, got %v", m.stage)
	}
	if m.projectFilter != intent.FilterRAG {
		t.Fatalf("filter mismatch: got %q want %q", m.projectFilter, intent.FilterRAG)
	}
	if len(backend.queries) != 0 {
		t.Fatalf("navigation should not reach the backend, got %v", backend.queries)
	}
	projects := m.visibleProjects()
	if len(projects) == 0 {
		t.Fatal("rag filter should match at least one project")
	}
	view := m.View()
	if !strings.Contains(view, projects[0].Title) {
		t.Fatalf("expected %q in catalogue view", projects[0].Title)
	}
}

func TestCatalogueFilterKeys(t *testing.T) {
	m := newTestModel(t)
	m.openCatalogue("")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if m.projectFilter != "RAG" {
		t.Fatalf("1 should select RAG, got %q", m.projectFilter)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if m.projectFilter != "" {
		t.Fatalf("selecting the active filter should clear it, got %q", m.projectFilter)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.projectFilter != "RAG" {
		t.Fatalf("right should advance to RAG, got %q", m.projectFilter)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.projectFilter != "ML Ops" {
		t.Fatalf("left should wrap to the last preset, got %q", m.projectFilter)
	}
	if m.composer.Value() != "" {
		t.Fatalf("filter keys should not reach the composer, got %q", m.composer.Value())
	}
}

func TestCatalogueEnterOpensCaseStudy(t *testing.T) {
	m := newTestModel(t)
	m.openCatalogue("")
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.projectCursor != 1 {
		t.Fatalf("cursor should advance, got %d", m.projectCursor)
	}
	want := m.visibleProjects()[1]

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageProject || m.selectedProject == nil {
		t.Fatalf("enter should open the case study (stage=%v)", m.stage)
	}
	if m.selectedProject.ID != want.ID {
		t.Fatalf("opened %q, want %q", m.selectedProject.ID, want.ID)
	}
	if !strings.Contains(m.View(), "THE_CHALLENGE") {
		t.Fatal("case study view should render the challenge section")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageCatalogue {
		t.Fatalf("esc should return to the list, got %v", m.stage)
	}
}

func TestVoiceUnavailableShowsAlert(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	if m.errorMessage == "" {
		t.Fatal("voice without a recognizer should surface an alert")
	}
	if !strings.Contains(strings.Join(m.snapshot.Log, "\n"), "VOICE_INPUT_UNAVAILABLE") {
		t.Fatalf("console should log the missing voice input: %v", m.snapshot.Log)
	}
}

func TestQueryResultUpdatesConsole(t *testing.T) {
	backend := &fakeAgent{reply: "I build **retrieval** systems."}
	ctrl := newTestSession(t, backend)
	m := newTestModelWith(t, ctrl)

	msg, _ := submitQueryJob(ctrl, "what do you build?")(context.Background())
	m.Update(jobResultEnvelope{Snapshot: jobSnapshot{ID: "query-1", Kind: jobKindQuery}, Payload: msg})

	if !m.snapshot.HasResponse {
		t.Fatal("snapshot should carry the response")
	}
	view := m.View()
	if !strings.Contains(view, "AGENT_RESPONSE") || !strings.Contains(view, "retrieval") {
		t.Fatalf("response not rendered:\n%s", view)
	}
	if !strings.Contains(view, "> RESPONSE_GENERATED_SUCCESSFULLY") {
		t.Fatal("console trace missing success line")
	}
}

func TestQueryErrorIsSurfaced(t *testing.T) {
	m := newTestModel(t)
	m.Update(queryResultMsg{query: "hi", outcome: outcome{turn: 1, err: errors.New("backend down")}})
	if !strings.Contains(m.errorMessage, "backend down") {
		t.Fatalf("error not surfaced: %q", m.errorMessage)
	}

	m.errorMessage = ""
	m.Update(queryResultMsg{query: "hi", outcome: outcome{turn: 1, stale: true, err: errors.New("late")}})
	if m.errorMessage != "" {
		t.Fatalf("stale outcomes should be silent, got %q", m.errorMessage)
	}
}

func TestClearResetsConsole(t *testing.T) {
	backend := &fakeAgent{reply: "answer"}
	ctrl := newTestSession(t, backend)
	m := newTestModelWith(t, ctrl)
	ctrl.Submit(context.Background(), "tell me something")
	m.Update(sessionUpdateMsg{})
	if !m.commandAvailable(actionClear) {
		t.Fatal("clear should be available after a response")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.snapshot.HasResponse {
		t.Fatal("clear should drop the response")
	}
	if got := strings.Join(m.snapshot.Log, "\n"); got != strings.Join(session.InitialLog(), "\n") {
		t.Fatalf("log not reset: %q", got)
	}
}

// blockingAgent holds Converse open until its context ends.
type blockingAgent struct {
	entered chan struct{}
}

func (b *blockingAgent) Converse(ctx context.Context, message, sessionID string) (string, error) {
	close(b.entered)
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingAgent) AnalyzeDocument(ctx context.Context, path string) (string, error) {
	return "", errors.New("unused")
}

func TestClearDiscardsInFlightQueryQuietly(t *testing.T) {
	backend := &blockingAgent{entered: make(chan struct{})}
	ctrl := session.New(session.Config{Agent: backend, SessionID: "guest_test"})
	m := newTestModelWith(t, ctrl)

	m.jobs.Start(jobKindQuery, submitQueryJob(ctrl, "tell me about your last role"))
	var id string
	m.jobs.mu.Lock()
	for key := range m.jobs.running {
		id = key
	}
	m.jobs.mu.Unlock()

	done := make(chan tea.Msg, 1)
	go func() {
		done <- m.jobs.run(id, jobKindQuery, time.Now(), submitQueryJob(ctrl, "tell me about your last role"))()
	}()
	<-backend.entered

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("query did not stop after clear")
	}
	envelope := msg.(jobResultEnvelope)
	result, ok := envelope.Payload.(queryResultMsg)
	if !ok {
		t.Fatalf("expected queryResultMsg, got %T", envelope.Payload)
	}
	if !result.outcome.stale {
		t.Fatalf("aborted query should be stale, got %+v", result.outcome)
	}

	m.Update(envelope)
	if m.errorMessage != "" {
		t.Fatalf("clear should not surface an error, got %q", m.errorMessage)
	}
	if m.infoMessage != "Console cleared." {
		t.Fatalf("clear message replaced: %q", m.infoMessage)
	}
	if m.snapshot.HasResponse {
		t.Fatal("stale query should not store a response")
	}
}

func TestSessionUpdateRearmsWait(t *testing.T) {
	m := newTestModel(t)
	if _, cmd := m.Update(sessionUpdateMsg{}); cmd == nil {
		t.Fatal("session updates should re-arm the wait command")
	}
}

func TestVoiceErrorsMapToMessages(t *testing.T) {
	m := newTestModel(t)
	m.config.Session = failingMic{Session: m.config.Session, err: session.ErrBusy}
	m.toggleVoice()
	if m.errorMessage != "" || m.infoMessage == "" {
		t.Fatalf("busy should be informational (info=%q err=%q)", m.infoMessage, m.errorMessage)
	}

	m.config.Session = failingMic{Session: m.config.Session, err: speech.ErrUnavailable}
	m.infoMessage = ""
	m.toggleVoice()
	if !strings.Contains(m.errorMessage, "--speech-cmd") {
		t.Fatalf("unavailable should point at the flag, got %q", m.errorMessage)
	}
}

type failingMic struct {
	Session
	err error
}

func (f failingMic) ToggleMic() error { return f.err }
