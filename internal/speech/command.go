package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// partialPrefix marks a progressive (non-final) line from a speech command.
const partialPrefix = "~"

// CommandRecognizer runs an external speech-to-text program and reads one
// transcript per stdout line. Lines starting with "~" are partial results.
type CommandRecognizer struct {
	Command []string
}

// NewCommandRecognizer parses a command line. It returns nil for an empty one.
func NewCommandRecognizer(commandLine string) *CommandRecognizer {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &CommandRecognizer{Command: fields}
}

// Listen starts the program and streams its transcripts until it exits or
// ctx is cancelled.
func (r *CommandRecognizer) Listen(ctx context.Context) (<-chan Transcript, <-chan error) {
	results := make(chan Transcript, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			errs <- err
			return
		}
		if err := cmd.Start(); err != nil {
			errs <- fmt.Errorf("start speech command: %w", err)
			return
		}

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			update := Transcript{Text: line, Final: true}
			if strings.HasPrefix(line, partialPrefix) {
				update = Transcript{Text: strings.TrimSpace(strings.TrimPrefix(line, partialPrefix))}
			}
			select {
			case results <- update:
			case <-ctx.Done():
				_ = cmd.Wait()
				return
			}
		}

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				errs <- fmt.Errorf("speech command exited with code %d", exitErr.ExitCode())
				return
			}
			errs <- err
		}
	}()

	return results, errs
}
