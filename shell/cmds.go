package shell

import (
	"errors"

	"github.com/abiosoft/ishell"
)

func sayCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:     "say",
		Help:     "add words to the current batch",
		LongHelp: "say <words...>\nwords that collide with a command name can be sent this way",
		Func: func(c *ishell.Context) {
			if !ctx.say(c.Args) {
				c.Err(errors.New("missing words"))
			}
		},
	}
}

func silenceCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "silence",
		Help: "close the current batch",
		Func: func(c *ishell.Context) {
			ctx.sink.Silence()
		},
	}
}

func statusCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "status",
		Help: "show scheduler state",
		Func: func(c *ishell.Context) {
			c.Println(ctx.statusLine())
		},
	}
}
