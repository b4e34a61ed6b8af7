package tui

type stage int

const (
	stageConsole stage = iota
	stageCatalogue
	stageProject
	stageProfile
)

const (
	heroTitle   = "I AM SATISH'S AI AGENT."
	heroTagline = "Upload a JD to check fit, or ask me anything about his professional experience."
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	responsePreviewLimit      = 2000
)

type composerMode int

const (
	composerModeQuery composerMode = iota
	composerModeUpload
)

const (
	composerQueryPlaceholder     = "Ask me about my experience..."
	composerListeningPlaceholder = "Listening..."
	composerUploadPlaceholder    = "Path to a job description PDF…"
)

// sessionUpdateMsg arrives whenever the session controller changes.
type sessionUpdateMsg struct{}

type queryResultMsg struct {
	query   string
	outcome outcome
}

type uploadResultMsg struct {
	path    string
	outcome outcome
}

type audioResultMsg struct {
	err error
}

type techStackResultMsg struct{}

// outcome mirrors session.Outcome without leaking it into every message.
type outcome struct {
	turn    uint64
	ignored bool
	stale   bool
	err     error
}
