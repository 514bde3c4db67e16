package shell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quill/batch"
	"github.com/ByLCY/quill/queue"
)

func TestSayFeedsBatcher(t *testing.T) {
	q := queue.New[batch.TextBatch]()
	b := batch.New(batch.DefaultThreshold, q)
	ctx := &ShellCtxt{sink: b}

	require.True(t, ctx.say([]string{"hello", "world"}))
	require.False(t, ctx.say(nil))
	require.False(t, ctx.say([]string{" ", ""}))

	silenceCmd(ctx).Func(nil)
	got, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, batch.TextBatch("hello world"), got)
}

func TestStatusLine(t *testing.T) {
	require.Equal(t, "no status available", (&ShellCtxt{}).statusLine())
	ctx := &ShellCtxt{status: func() string { return "idle, 0 pending" }}
	require.Equal(t, "idle, 0 pending", ctx.statusLine())
}

func TestCommandsRegistered(t *testing.T) {
	ctx := &ShellCtxt{}
	for name, cmd := range map[string]string{
		"say":     sayCmd(ctx).Name,
		"silence": silenceCmd(ctx).Name,
		"status":  statusCmd(ctx).Name,
	} {
		require.Equal(t, name, cmd)
	}
}
