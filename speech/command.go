package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ByLCY/quill/binding"
)

// Command runs an external recognizer once per Listen. The helper records
// one utterance and prints the transcript on stdout. Exit status 1 means
// the audio could not be understood; empty output means silence.
// ${timeout} in Args expands to the listen timeout in seconds.
type Command struct {
	Args    []string
	Timeout time.Duration
}

// Listen runs the helper with the listen timeout plus a grace period for
// transcription.
func (c *Command) Listen(ctx context.Context) (string, error) {
	if len(c.Args) == 0 {
		return "", errors.New("speech: recognizer command not configured")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	args := binding.Expand(c.Args, binding.Vars{"timeout": timeout.Seconds()})

	runCtx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()
	var stdout bytes.Buffer
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	err := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if runCtx.Err() != nil {
		return "", ErrSilence
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrUnintelligible
		}
		return "", fmt.Errorf("recognizer %s: %w", args[0], err)
	}
	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", ErrSilence
	}
	return text, nil
}
