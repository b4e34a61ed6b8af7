// Package session drives one conversation: it routes queries to local
// navigation or the remote agent, owns the console log and the live response,
// and coordinates audio output with voice capture.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/portfolio-console/internal/agent"
	"github.com/csheth/portfolio-console/internal/intent"
	"github.com/csheth/portfolio-console/internal/portfolio"
	"github.com/csheth/portfolio-console/internal/speech"
)

// User-facing fixed texts.
const (
	ChatErrorResponse   = "⚠️ ERROR: Neural Link Offline. Please check backend connection."
	UploadErrorResponse = "⚠️ Error reading file."
	NavigationAck       = "Command Acknowledged. Navigating to Filtered Projects Database..."

	logChatFailed   = "⚠️ CRITICAL_ERROR: BACKEND_UNREACHABLE"
	logUploadFailed = "⚠️ UPLOAD_ERROR: PARSING_FAILED"
	logVoiceMissing = "⚠️ VOICE_INPUT_UNAVAILABLE"
	logAudioMissing = "⚠️ AUDIO_OUTPUT_UNAVAILABLE"
)

// inputPreviewRunes is how much of a query is echoed into the console.
const inputPreviewRunes = 20

// DefaultSessionID is the conversation id used when none is configured.
const DefaultSessionID = "guest_browser"

// ErrBusy is returned when voice capture is requested while a query is in
// flight.
var ErrBusy = errors.New("a query is already being processed")

var errNoSpeaker = errors.New("no audio output configured")

// Agent is the remote conversational backend.
type Agent interface {
	Converse(ctx context.Context, message, sessionID string) (string, error)
	AnalyzeDocument(ctx context.Context, path string) (string, error)
}

// Speaker is the audio playback capability.
type Speaker interface {
	Enabled() bool
	Speaking() bool
	Toggle(ctx context.Context, currentText string) error
	Play(ctx context.Context, text string) error
	Stop()
}

// Listener is the voice capture capability.
type Listener interface {
	Available() bool
	Listening() bool
	Start() error
	Stop()
}

// Navigation is the latest request to show the project catalogue. Seq grows
// with every request so observers can tell repeats apart.
type Navigation struct {
	Seq    uint64
	Filter string
}

// Snapshot is a consistent copy of everything the presentation layer renders.
type Snapshot struct {
	State           State
	ControllerState State
	Log             []string
	Response        string
	HasResponse     bool
	Transcript      string
	AudioEnabled    bool
	Listening       bool
	Speaking        bool
	VoiceAvailable  bool
	Navigation      Navigation
	Turn            uint64
}

// Outcome reports what happened to one submitted query or upload.
type Outcome struct {
	Turn    uint64
	Intent  intent.Intent
	Ignored bool
	Stale   bool
	Err     error
}

// Config wires a Controller. Speaker and Listener may be nil; the controller
// then runs text-only.
type Config struct {
	Agent     Agent
	Speaker   Speaker
	Listener  Listener
	SessionID string
	Logger    *zap.Logger
	// Context bounds work the controller starts on its own, such as voice
	// queries. It defaults to context.Background.
	Context context.Context
	// Inspect validates a document before upload. It defaults to
	// agent.InspectDocument.
	Inspect func(path string) (agent.Document, error)
	Now     func() time.Time
	// OnChange fires after every observable change, outside internal locks.
	OnChange func()
}

// Controller is the conversation state machine.
type Controller struct {
	agent     Agent
	speaker   Speaker
	listener  Listener
	sessionID string
	log       *zap.Logger
	ctx       context.Context
	inspect   func(path string) (agent.Document, error)
	onChange  func()
	updates   chan struct{}

	mu          sync.Mutex
	state       State
	console     *consoleLog
	response    string
	hasResponse bool
	transcript  string
	turn        uint64
	navigation  Navigation
}

// New builds a controller in the IDLE state with the initial console log.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	inspect := cfg.Inspect
	if inspect == nil {
		inspect = agent.InspectDocument
	}
	sessionID := strings.TrimSpace(cfg.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	return &Controller{
		agent:     cfg.Agent,
		speaker:   cfg.Speaker,
		listener:  cfg.Listener,
		sessionID: sessionID,
		log:       logger.Named("session"),
		ctx:       ctx,
		inspect:   inspect,
		onChange:  cfg.OnChange,
		updates:   make(chan struct{}, 1),
		state:     StateIdle,
		console:   newConsoleLog(now),
	}
}

// SessionID returns the conversation id sent with every chat turn.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Updates delivers a coalesced signal after every change.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Submit runs one conversation turn. Blank queries are ignored without any
// log entry or state change. Navigation queries are answered locally; the
// rest go to the remote agent. A response arriving after a newer turn (or a
// clear) has started is discarded.
func (c *Controller) Submit(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{Ignored: true}
	}

	classified := intent.Classify(query)
	tool := intent.SelectTool(query)

	c.mu.Lock()
	c.turn++
	turn := c.turn
	c.response, c.hasResponse = "", false
	c.state = StateProcessing
	c.console.beginQuery()
	c.console.add(fmt.Sprintf("> INPUT_RECEIVED: \"%s\"", previewInput(query)))
	c.mu.Unlock()

	c.stopAudio()
	c.changed()

	if classified.Navigate() {
		return c.navigate(ctx, turn, classified)
	}

	c.mu.Lock()
	c.console.add(fmt.Sprintf("> TOOL_SELECTED: %s_PROTOCOL", tool))
	if tool == intent.ToolJDMatcher {
		c.console.add("> PARSING_CONTEXT_WINDOW...")
	}
	c.mu.Unlock()
	c.changed()

	out := Outcome{Turn: turn, Intent: classified}
	reply, err := c.converse(ctx, query)

	c.mu.Lock()
	if turn != c.turn {
		c.mu.Unlock()
		c.log.Debug("discarding stale reply", zap.Uint64("turn", turn), zap.Error(err))
		out.Stale = true
		out.Err = err
		return out
	}
	if err != nil {
		c.console.add(logChatFailed)
		c.response, c.hasResponse = ChatErrorResponse, true
	} else {
		c.console.add("> RESPONSE_GENERATED_SUCCESSFULLY")
		c.response, c.hasResponse = reply, true
	}
	c.state = StateIdle
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.log.Warn("chat turn failed", zap.Uint64("turn", turn), zap.Error(err))
		out.Err = err
		return out
	}
	c.log.Info("chat turn complete", zap.Uint64("turn", turn), zap.Int("chars", len(reply)))
	c.speak(ctx, turn, reply)
	return out
}

func (c *Controller) converse(ctx context.Context, query string) (string, error) {
	if c.agent == nil {
		return "", errors.New("no agent backend configured")
	}
	return c.agent.Converse(ctx, query, c.sessionID)
}

func (c *Controller) navigate(ctx context.Context, turn uint64, classified intent.Intent) Outcome {
	label := classified.Filter
	if label == intent.FilterAll {
		label = "ALL"
	}

	c.mu.Lock()
	c.console.add("> TOOL_SELECTED: NAVIGATION_PROTOCOL")
	c.console.add(fmt.Sprintf("> APPLYING_FILTER: %s", label))
	c.response, c.hasResponse = NavigationAck, true
	c.navigation = Navigation{Seq: c.navigation.Seq + 1, Filter: classified.Filter}
	c.state = StateIdle
	c.mu.Unlock()
	c.changed()

	c.log.Info("navigating to projects", zap.Uint64("turn", turn), zap.String("filter", classified.Filter))
	c.speak(ctx, turn, NavigationAck)
	return Outcome{Turn: turn, Intent: classified}
}

// UploadDocument sends a job description PDF for fit analysis. The console is
// reset to the upload trace first.
func (c *Controller) UploadDocument(ctx context.Context, path string) Outcome {
	path = strings.TrimSpace(path)
	if path == "" {
		return Outcome{Ignored: true}
	}

	c.mu.Lock()
	c.turn++
	turn := c.turn
	c.response, c.hasResponse = "", false
	c.state = StateProcessing
	c.console.reset(uploadLog)
	c.mu.Unlock()
	c.stopAudio()
	c.changed()

	out := Outcome{Turn: turn}
	report, err := c.analyze(ctx, turn, path)

	c.mu.Lock()
	if turn != c.turn {
		c.mu.Unlock()
		c.log.Debug("discarding stale analysis", zap.Uint64("turn", turn))
		out.Stale = true
		out.Err = err
		return out
	}
	if err != nil {
		c.console.add(logUploadFailed)
		c.response, c.hasResponse = UploadErrorResponse, true
	} else {
		c.console.add("> ANALYSIS_COMPLETE: GENERATING_REPORT...")
		c.response, c.hasResponse = report, true
	}
	c.state = StateIdle
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.log.Warn("document analysis failed", zap.String("path", path), zap.Error(err))
		out.Err = err
		return out
	}
	c.speak(ctx, turn, report)
	return out
}

func (c *Controller) analyze(ctx context.Context, turn uint64, path string) (string, error) {
	doc, err := c.inspect(path)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", filepath.Base(path), err)
	}

	c.mu.Lock()
	if turn == c.turn {
		c.console.add(fmt.Sprintf("> READING_FILE: %s (%s)", doc.Name, pageLabel(doc.Pages)))
		c.console.add("> EXTRACTING_ENTITIES: SKILLS, EXPERIENCE, ROLES...")
	}
	c.mu.Unlock()
	c.changed()

	if c.agent == nil {
		return "", errors.New("no agent backend configured")
	}
	return c.agent.AnalyzeDocument(ctx, path)
}

// ShowCaseStudies opens the full project catalogue.
func (c *Controller) ShowCaseStudies() {
	c.mu.Lock()
	c.navigation = Navigation{Seq: c.navigation.Seq + 1, Filter: intent.FilterAll}
	c.mu.Unlock()
	c.changed()
}

// ShowTechStack replaces the response with the technical inventory and reads
// a shorter summary aloud when audio is on.
func (c *Controller) ShowTechStack(ctx context.Context) {
	c.mu.Lock()
	c.turn++
	turn := c.turn
	c.response, c.hasResponse = portfolio.TechStackReport, true
	c.state = StateIdle
	c.mu.Unlock()
	c.stopAudio()
	c.changed()

	c.speak(ctx, turn, portfolio.TechStackSpoken)
}

// ToggleAudio flips spoken output. Turning it on replays the live response.
func (c *Controller) ToggleAudio(ctx context.Context) error {
	if c.speaker == nil {
		c.AddLog(logAudioMissing)
		return errNoSpeaker
	}
	c.mu.Lock()
	current := ""
	if c.hasResponse {
		current = c.response
	}
	c.mu.Unlock()

	err := c.speaker.Toggle(ctx, current)
	c.changed()
	return err
}

// ToggleMic starts voice capture when idle and stops it when listening.
// Starting capture silences any audio so the two never overlap.
func (c *Controller) ToggleMic() error {
	if c.listener == nil {
		c.AddLog(logVoiceMissing)
		return speech.ErrUnavailable
	}
	if c.listener.Listening() {
		c.listener.Stop()
		c.changed()
		return nil
	}

	c.mu.Lock()
	busy := c.state == StateProcessing
	c.mu.Unlock()
	if busy {
		return ErrBusy
	}

	c.stopAudio()
	if err := c.listener.Start(); err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			c.AddLog(logVoiceMissing)
		}
		c.changed()
		return err
	}
	c.changed()
	return nil
}

// HandleSpeechStart is the capture-started callback. It clears the live
// response and the previous transcript.
func (c *Controller) HandleSpeechStart() {
	c.mu.Lock()
	c.response, c.hasResponse = "", false
	c.transcript = ""
	c.mu.Unlock()
	c.changed()
}

// HandleTranscript is the capture-result callback: the transcript becomes the
// next query.
func (c *Controller) HandleTranscript(text string) {
	c.mu.Lock()
	c.transcript = text
	c.mu.Unlock()
	c.changed()
	c.Submit(c.ctx, text)
}

// HandleSpeechEnd is the capture-ended callback.
func (c *Controller) HandleSpeechEnd() {
	c.changed()
}

// Clear resets the response and console, stops audio, and invalidates any
// turn still in flight.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.turn++
	c.response, c.hasResponse = "", false
	c.transcript = ""
	c.console.reset(initialLog)
	c.state = StateIdle
	c.mu.Unlock()
	c.stopAudio()
	c.changed()
}

// AddLog appends a timestamped console line.
func (c *Controller) AddLog(msg string) {
	c.mu.Lock()
	c.console.add(msg)
	c.mu.Unlock()
	c.changed()
}

// DisplayState merges capture, playback and controller state.
func (c *Controller) DisplayState() State {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	return Merge(c.listening(), c.speaking(), state)
}

// Snapshot returns a consistent copy of the session for rendering.
func (c *Controller) Snapshot() Snapshot {
	listening, speaking := c.listening(), c.speaking()
	audioOn := c.speaker != nil && c.speaker.Enabled()
	voice := c.listener != nil && c.listener.Available()

	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:           Merge(listening, speaking, c.state),
		ControllerState: c.state,
		Log:             c.console.snapshot(),
		Response:        c.response,
		HasResponse:     c.hasResponse,
		Transcript:      c.transcript,
		AudioEnabled:    audioOn,
		Listening:       listening,
		Speaking:        speaking,
		VoiceAvailable:  voice,
		Navigation:      c.navigation,
		Turn:            c.turn,
	}
}

// Notify publishes an external change, such as audio finishing.
func (c *Controller) Notify() {
	c.changed()
}

// speak plays text unless a newer turn has already started.
func (c *Controller) speak(ctx context.Context, turn uint64, text string) {
	if c.speaker == nil || !c.speaker.Enabled() {
		return
	}
	c.mu.Lock()
	current := turn == c.turn
	c.mu.Unlock()
	if !current {
		return
	}
	if err := c.speaker.Play(ctx, text); err != nil {
		c.log.Debug("playback skipped", zap.Uint64("turn", turn), zap.Error(err))
	}
	c.changed()
}

func (c *Controller) stopAudio() {
	if c.speaker != nil {
		c.speaker.Stop()
	}
}

func (c *Controller) listening() bool {
	return c.listener != nil && c.listener.Listening()
}

func (c *Controller) speaking() bool {
	return c.speaker != nil && c.speaker.Speaking()
}

func (c *Controller) changed() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
	if c.onChange != nil {
		c.onChange()
	}
}

func previewInput(query string) string {
	runes := []rune(query)
	if len(runes) > inputPreviewRunes {
		runes = runes[:inputPreviewRunes]
	}
	return string(runes) + "..."
}

func pageLabel(pages int) string {
	if pages == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", pages)
}
