package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSilenceTimeout ends a continuous capture after this much quiet.
const DefaultSilenceTimeout = 2500 * time.Millisecond

// ErrUnavailable is returned by Start when no recognizer is configured.
var ErrUnavailable = errors.New("voice input is not supported here; configure a speech command")

// Transcript is one recognition update. Partial updates replace each other;
// final updates are committed.
type Transcript struct {
	Text  string
	Final bool
}

// Recognizer is the platform speech-to-text capability. Both channels are
// closed when recognition ends; cancelling ctx must end it promptly.
type Recognizer interface {
	Listen(ctx context.Context) (<-chan Transcript, <-chan error)
}

// Mode selects the capture policy.
type Mode int

const (
	// ModeSingle delivers the first final utterance and stops.
	ModeSingle Mode = iota
	// ModeContinuous accumulates speech until SilenceTimeout passes without
	// new text, then delivers everything heard.
	ModeContinuous
)

// Config wires a Manager.
type Config struct {
	Recognizer     Recognizer
	Mode           Mode
	SilenceTimeout time.Duration
	Logger         *zap.Logger

	OnStart  func()
	OnResult func(transcript string)
	OnEnd    func()
	OnLog    func(string)
}

// Manager turns a Recognizer into a start/stop/result contract with a single
// authoritative listening flag.
type Manager struct {
	cfg Config
	log *zap.Logger

	mu        sync.Mutex
	listening bool
	session   uint64
	cancel    context.CancelFunc
}

// NewManager builds a capture manager. A nil recognizer is allowed; Start
// then fails with ErrUnavailable.
func NewManager(cfg Config) *Manager {
	if cfg.SilenceTimeout <= 0 {
		cfg.SilenceTimeout = DefaultSilenceTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, log: logger.Named("speech")}
}

// Available reports whether a recognizer is configured.
func (m *Manager) Available() bool {
	return m.cfg.Recognizer != nil
}

// Listening reports whether capture is active.
func (m *Manager) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

// Start begins a capture session. Starting while already listening is a no-op.
func (m *Manager) Start() error {
	if m.cfg.Recognizer == nil {
		return ErrUnavailable
	}
	m.mu.Lock()
	if m.listening {
		m.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.session++
	id := m.session
	m.listening = true
	m.cancel = cancel
	m.mu.Unlock()

	if m.cfg.OnStart != nil {
		m.cfg.OnStart()
	}
	results, errs := m.cfg.Recognizer.Listen(ctx)
	go m.run(ctx, id, results, errs)
	return nil
}

// Stop ends capture. It is always safe to call.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.listening {
		m.mu.Unlock()
		return
	}
	m.listening = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	m.ended()
}

// Toggle starts capture when idle and stops it when listening.
func (m *Manager) Toggle() error {
	if m.Listening() {
		m.Stop()
		return nil
	}
	return m.Start()
}

func (m *Manager) run(ctx context.Context, id uint64, results <-chan Transcript, errs <-chan error) {
	var (
		committed []string
		pending   string
		silence   *time.Timer
		silenceC  <-chan time.Time
	)
	defer func() {
		if silence != nil {
			silence.Stop()
		}
	}()
	heard := func() string {
		parts := append(append([]string(nil), committed...), pending)
		return strings.TrimSpace(strings.Join(parts, " "))
	}

	for {
		select {
		case <-ctx.Done():
			m.finish(id, "")
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				m.log.Warn("recognizer error", zap.Error(err))
				m.emit(fmt.Sprintf("⚠️ VOICE_ERROR: %v", err))
				m.finish(id, "")
				return
			}
		case update, ok := <-results:
			if !ok {
				text := ""
				if m.cfg.Mode == ModeContinuous {
					text = heard()
				}
				m.finish(id, text)
				return
			}
			text := strings.TrimSpace(update.Text)
			if text == "" {
				continue
			}
			if m.cfg.Mode == ModeSingle {
				if update.Final {
					m.finish(id, text)
					return
				}
				continue
			}
			if update.Final {
				committed = append(committed, text)
				pending = ""
			} else {
				pending = text
			}
			if silence == nil {
				silence = time.NewTimer(m.cfg.SilenceTimeout)
				silenceC = silence.C
			} else {
				if !silence.Stop() {
					select {
					case <-silence.C:
					default:
					}
				}
				silence.Reset(m.cfg.SilenceTimeout)
			}
		case <-silenceC:
			m.finish(id, heard())
			return
		}
	}
}

// finish closes session id if it is still the active one, then delivers text.
func (m *Manager) finish(id uint64, text string) {
	m.mu.Lock()
	if id != m.session || !m.listening {
		m.mu.Unlock()
		return
	}
	m.listening = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()
	m.ended()

	if text == "" {
		return
	}
	m.emit(fmt.Sprintf("> SPEECH_DETECTED: %q", text))
	if m.cfg.OnResult != nil {
		m.cfg.OnResult(text)
	}
}

func (m *Manager) ended() {
	if m.cfg.OnEnd != nil {
		m.cfg.OnEnd()
	}
}

func (m *Manager) emit(line string) {
	if m.cfg.OnLog != nil {
		m.cfg.OnLog(line)
	}
}
