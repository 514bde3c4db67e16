// Package shell is an interactive transcription console. Typed lines stand
// in for recognized speech.
package shell

import (
	"context"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/ByLCY/quill/speech"
)

// ShellCtxt is shared by the commands.
type ShellCtxt struct {
	sink   speech.Sink
	status func() string
}

// Shell wraps an ishell instance.
type Shell struct {
	sh        *ishell.Shell
	ctx       *ShellCtxt
	closeOnce sync.Once
}

// New builds the console. status may be nil.
func New(sink speech.Sink, status func() string) *Shell {
	ctx := &ShellCtxt{sink: sink, status: status}
	sh := ishell.New()
	sh.SetPrompt("quill> ")
	sh.AddCmd(sayCmd(ctx))
	sh.AddCmd(silenceCmd(ctx))
	sh.AddCmd(statusCmd(ctx))
	sh.NotFound(func(c *ishell.Context) {
		ctx.say(c.RawArgs)
	})
	return &Shell{sh: sh, ctx: ctx}
}

// Run blocks until the user exits or ctx is done. Closing the input on
// cancellation unblocks a pending read.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-done:
		}
	}()
	s.sh.Println("type text to plot, 'silence' to close the batch, 'exit' to quit")
	s.sh.Run()
	s.close()
	return nil
}

func (s *Shell) close() {
	s.closeOnce.Do(s.sh.Close)
}

func (ctx *ShellCtxt) say(words []string) bool {
	text := strings.TrimSpace(strings.Join(words, " "))
	if text == "" {
		return false
	}
	ctx.sink.Text(text)
	return true
}

func (ctx *ShellCtxt) statusLine() string {
	if ctx.status == nil {
		return "no status available"
	}
	return ctx.status()
}
