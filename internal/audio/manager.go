package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/csheth/portfolio-console/internal/agent"
)

// Console lines emitted by the manager.
const (
	LogEnabled        = "> AUDIO_OUTPUT_ENABLED"
	LogMuted          = "> AUDIO_OUTPUT_MUTED"
	LogCached         = "> USING_CACHED_AUDIO"
	LogGenerating     = "> GENERATING_AUDIO... (this may take up to 20 seconds)"
	LogTTSError       = "⚠️ TTS_ERROR: AUDIO_GENERATION_FAILED"
	LogDeviceMissing  = "⚠️ AUDIO_DEVICE_UNAVAILABLE: TEXT_ONLY_MODE"
	LogPlaybackFailed = "⚠️ PLAYBACK_ERROR: AUDIO_DEVICE_REJECTED_CLIP"
)

// ErrNoDevice is returned by Play when no output device is configured.
var ErrNoDevice = errors.New("no audio output device")

// Synthesizer turns text into a playable clip.
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// Device is the platform audio output.
type Device interface {
	Start(clip []byte) (Stream, error)
}

// Stream is one clip being played. Done closes when playback ends for any
// reason; Stop halts playback immediately and is safe to call repeatedly.
type Stream interface {
	Done() <-chan struct{}
	Stop()
}

// Config wires the manager's collaborators.
type Config struct {
	Synthesizer Synthesizer
	Device      Device
	Enabled     bool
	Logger      *zap.Logger
	// OnLog receives console lines. It is never called with internal locks held.
	OnLog func(string)
	// OnChange fires after every state change.
	OnChange func()
}

// Manager owns the single active audio stream and a single-slot clip cache
// keyed by the exact source text.
type Manager struct {
	synth    Synthesizer
	device   Device
	log      *zap.Logger
	onLog    func(string)
	onChange func()

	mu         sync.Mutex
	enabled    bool
	playing    bool
	speaking   bool
	stream     Stream
	generation uint64
	clips      *cache.Cache
}

// NewManager builds a playback manager.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		synth:    cfg.Synthesizer,
		device:   cfg.Device,
		log:      logger.Named("audio"),
		onLog:    cfg.OnLog,
		onChange: cfg.OnChange,
		enabled:  cfg.Enabled,
		clips:    cache.New(cache.NoExpiration, 0),
	}
}

// Enabled reports the user's audio preference.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Playing reports whether a clip is currently audible.
func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Speaking reports whether the manager is generating or playing speech.
func (m *Manager) Speaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// CachedText returns the key of the cached clip, if any.
func (m *Manager) CachedText() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.clips.Items() {
		return key, true
	}
	return "", false
}

// Toggle flips the audio preference. Turning audio off halts playback at once;
// turning it on with a current response replays that response.
func (m *Manager) Toggle(ctx context.Context, currentText string) error {
	m.mu.Lock()
	m.enabled = !m.enabled
	enabled := m.enabled
	if !enabled {
		m.stopLocked()
	}
	m.mu.Unlock()

	if enabled {
		m.emit(LogEnabled)
	} else {
		m.emit(LogMuted)
	}
	m.changed()

	if enabled && currentText != "" {
		return m.Play(ctx, currentText)
	}
	return nil
}

// Play speaks text when audio is enabled. Any clip already playing is stopped
// first. A cached clip for the same text is replayed without synthesis.
// Synthesis failures are logged and returned; they never leave the manager
// in the speaking state.
func (m *Manager) Play(ctx context.Context, text string) error {
	m.mu.Lock()
	if !m.enabled || text == "" {
		m.mu.Unlock()
		return nil
	}
	if m.device == nil {
		m.mu.Unlock()
		m.emit(LogDeviceMissing)
		return ErrNoDevice
	}
	m.stopLocked()
	gen := m.generation

	if cached, ok := m.clips.Get(text); ok {
		err := m.startLocked(gen, cached.([]byte))
		m.mu.Unlock()
		if err != nil {
			m.emit(LogPlaybackFailed)
		} else {
			m.emit(LogCached)
		}
		m.changed()
		return err
	}

	m.speaking = true
	m.mu.Unlock()
	m.changed()
	m.emit(LogGenerating)

	clip, err := m.synthesize(ctx, text)

	m.mu.Lock()
	current := gen == m.generation && m.enabled
	if err != nil {
		if current {
			m.speaking = false
		}
		m.mu.Unlock()
		m.log.Warn("speech synthesis failed", zap.Error(err))
		m.emit(LogTTSError)
		m.changed()
		return err
	}
	if !current {
		m.mu.Unlock()
		m.log.Debug("discarding superseded clip", zap.Int("bytes", len(clip)))
		return nil
	}
	m.clips.Flush()
	m.clips.Set(text, clip, cache.NoExpiration)
	err = m.startLocked(gen, clip)
	m.mu.Unlock()
	if err != nil {
		m.emit(LogPlaybackFailed)
	}
	m.changed()
	return err
}

// Stop halts playback and returns to idle. It is a no-op when nothing plays.
func (m *Manager) Stop() {
	m.mu.Lock()
	wasActive := m.speaking || m.playing
	m.stopLocked()
	m.mu.Unlock()
	if wasActive {
		m.changed()
	}
}

func (m *Manager) synthesize(ctx context.Context, text string) ([]byte, error) {
	if m.synth == nil {
		return nil, errors.New("no speech synthesizer configured")
	}
	clip, err := m.synth.SynthesizeSpeech(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(clip) < agent.MinAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes", agent.ErrAudioPayloadTooSmall, len(clip))
	}
	return clip, nil
}

// stopLocked also bumps the generation so in-flight synthesis is discarded.
func (m *Manager) stopLocked() {
	if m.stream != nil {
		m.stream.Stop()
		m.stream = nil
	}
	m.playing = false
	m.speaking = false
	m.generation++
}

func (m *Manager) startLocked(gen uint64, clip []byte) error {
	stream, err := m.device.Start(clip)
	if err != nil {
		m.playing = false
		m.speaking = false
		m.log.Warn("audio device rejected clip", zap.Error(err))
		return err
	}
	m.stream = stream
	m.playing = true
	m.speaking = true
	go m.watch(gen, stream)
	return nil
}

func (m *Manager) watch(gen uint64, stream Stream) {
	<-stream.Done()
	m.mu.Lock()
	if gen != m.generation || m.stream != stream {
		m.mu.Unlock()
		return
	}
	m.stream = nil
	m.playing = false
	m.speaking = false
	m.mu.Unlock()
	m.changed()
}

func (m *Manager) emit(line string) {
	if m.onLog != nil {
		m.onLog(line)
	}
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
