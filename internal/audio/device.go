package audio

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Players tried by DetectDevice, in order. The clip path is appended.
var knownPlayers = [][]string{
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
}

// CommandDevice plays clips through an external player process.
type CommandDevice struct {
	Command []string
	TempDir string
}

// DetectDevice returns a device for the override command line, or for the
// first known player found on PATH. It returns nil when no player exists.
func DetectDevice(override string) *CommandDevice {
	if fields := strings.Fields(override); len(fields) > 0 {
		if _, err := exec.LookPath(fields[0]); err != nil {
			return nil
		}
		return &CommandDevice{Command: fields}
	}
	for _, candidate := range knownPlayers {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return &CommandDevice{Command: append([]string(nil), candidate...)}
		}
	}
	return nil
}

// Name returns the player binary.
func (d *CommandDevice) Name() string {
	if d == nil || len(d.Command) == 0 {
		return ""
	}
	return d.Command[0]
}

// Start writes the clip to a temp file and launches the player on it.
func (d *CommandDevice) Start(clip []byte) (Stream, error) {
	if len(d.Command) == 0 {
		return nil, errors.New("audio player command is empty")
	}
	file, err := os.CreateTemp(d.TempDir, "portfolio-tts-*.wav")
	if err != nil {
		return nil, err
	}
	path := file.Name()
	if _, err := file.Write(clip); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	args := append(append([]string(nil), d.Command[1:]...), path)
	cmd := exec.Command(d.Command[0], args...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return nil, err
	}

	stream := &commandStream{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		os.Remove(path)
		close(stream.done)
	}()
	return stream, nil
}

type commandStream struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (s *commandStream) Done() <-chan struct{} {
	return s.done
}

func (s *commandStream) Stop() {
	s.once.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}
