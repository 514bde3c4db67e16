package device

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "b.jar")
	third := filepath.Join(dir, "c.jar")
	touch(t, second)
	touch(t, third)

	got, err := Discover([]string{"", filepath.Join(dir, "a.jar"), dir, second, third})
	require.NoError(t, err)
	require.Equal(t, second, got, "first existing regular file wins")

	_, err = Discover([]string{filepath.Join(dir, "missing")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLauncherArgs(t *testing.T) {
	jar := &Launcher{Path: "/opt/UGS/UniversalGcodeSender.JAR"}
	require.Equal(t,
		[]string{"java", "-jar", "/opt/UGS/UniversalGcodeSender.JAR", "--open", "/tmp/out.gcode"},
		jar.Args("/tmp/out.gcode"))

	native := &Launcher{Path: "/usr/bin/ugs"}
	require.Equal(t,
		[]string{"/usr/bin/ugs", "--open", "/tmp/out.gcode", "--console", "new"},
		native.Args("/tmp/out.gcode"))

	custom := &Launcher{Path: "/usr/bin/ugs", Command: []string{"open", "-a", "${path}", "${file}"}}
	require.Equal(t, []string{"open", "-a", "/usr/bin/ugs", "/tmp/x"}, custom.Args("/tmp/x"))
}

func TestLauncherSend(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("helper scripts need a POSIX shell")
	}
	dir := t.TempDir()
	program := filepath.Join(dir, "output.gcode")
	marker := filepath.Join(dir, "opened")
	touch(t, program)

	l := &Launcher{Path: "sh", Command: []string{"sh", "-c", `echo "$0" > "$1"`, "${file}", marker}}
	require.NoError(t, l.Send(context.Background(), program))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && string(data) == program+"\n"
	}, 5*time.Second, 10*time.Millisecond)

	require.Error(t, l.Send(context.Background(), filepath.Join(dir, "missing.gcode")))
	require.ErrorIs(t, (&Launcher{}).Send(context.Background(), program), ErrNotFound)
}

func TestLogSender(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "p.gcode")
	touch(t, program)
	require.NoError(t, LogSender{}.Send(context.Background(), program))
	require.Error(t, LogSender{}.Send(context.Background(), filepath.Join(dir, "nope")))
}
