package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/portfolio-console/internal/session"
)

// Session is the controller surface the console drives.
type Session interface {
	Submit(ctx context.Context, query string) session.Outcome
	UploadDocument(ctx context.Context, path string) session.Outcome
	ToggleMic() error
	ToggleAudio(ctx context.Context) error
	Clear()
	ShowCaseStudies()
	ShowTechStack(ctx context.Context)
	Snapshot() session.Snapshot
	Updates() <-chan struct{}
	SessionID() string
}

type action int

const (
	actionSubmit action = iota
	actionUpload
	actionVoice
	actionAudio
	actionClear
	actionCaseStudies
	actionTechStack
)

func submitQueryJob(s Session, query string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		out := s.Submit(ctx, query)
		msg := queryResultMsg{query: query, outcome: fromSession(out)}
		if out.Stale {
			return msg, nil
		}
		return msg, out.Err
	}
}

func uploadDocumentJob(s Session, path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		out := s.UploadDocument(ctx, path)
		msg := uploadResultMsg{path: path, outcome: fromSession(out)}
		if out.Stale {
			return msg, nil
		}
		return msg, out.Err
	}
}

func toggleAudioJob(s Session) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := s.ToggleAudio(ctx)
		return audioResultMsg{err: err}, err
	}
}

func techStackJob(s Session) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		s.ShowTechStack(ctx)
		return techStackResultMsg{}, nil
	}
}

// waitForSessionUpdate blocks until the controller signals a change.
func waitForSessionUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return sessionUpdateMsg{}
	}
}

func fromSession(out session.Outcome) outcome {
	return outcome{turn: out.Turn, ignored: out.Ignored, stale: out.Stale, err: out.Err}
}

// commandAvailable reports whether an action makes sense right now.
func (m *model) commandAvailable(a action) bool {
	switch a {
	case actionSubmit:
		return strings.TrimSpace(m.composer.Value()) != "" && m.composerMode == composerModeQuery
	case actionUpload:
		return strings.TrimSpace(m.composer.Value()) != "" && m.composerMode == composerModeUpload
	case actionVoice:
		return m.snapshot.Listening || m.snapshot.ControllerState != session.StateProcessing
	case actionClear:
		return m.snapshot.HasResponse || len(m.snapshot.Log) > len(session.InitialLog()) || m.snapshot.Speaking
	case actionAudio, actionCaseStudies, actionTechStack:
		return true
	default:
		return false
	}
}
