package launcher

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the command a Launcher would start
type recorder struct {
	args []string
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.args = cmd.Args
	return nil
}

func newTestLauncher(command string, args []string, goos string, onPath ...string) (*Launcher, *recorder) {
	rec := &recorder{}
	l := New(command, args, nil)
	l.goos = goos
	l.start = rec.start
	l.lookPath = func(file string) (string, error) {
		for _, p := range onPath {
			if p == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
	return l, rec
}

const link = "https://www.imdb.com/search/title/?genres=drama"

func TestOpen_ConfiguredCommand(t *testing.T) {
	l, rec := newTestLauncher("firefox", []string{"--new-tab"}, "linux")
	require.NoError(t, l.Open(link))
	assert.Equal(t, []string{"firefox", "--new-tab", link}, rec.args)
}

func TestOpen_FirstAvailableOpener(t *testing.T) {
	l, rec := newTestLauncher("", nil, "linux", "sensible-browser", "x-www-browser")
	require.NoError(t, l.Open(link))
	assert.Equal(t, []string{"/usr/bin/sensible-browser", link}, rec.args)
}

func TestOpen_Darwin(t *testing.T) {
	l, rec := newTestLauncher("", nil, "darwin", "open")
	require.NoError(t, l.Open(link))
	assert.Equal(t, []string{"/usr/bin/open", link}, rec.args)
}

func TestOpen_Windows(t *testing.T) {
	l, rec := newTestLauncher("", nil, "windows")
	require.NoError(t, l.Open(link))
	assert.Equal(t, []string{"cmd", "/c", "start", "", link}, rec.args)
}

func TestOpen_NoOpener(t *testing.T) {
	l, rec := newTestLauncher("", nil, "linux")
	err := l.Open(link)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser.command")
	assert.Nil(t, rec.args)
}

func TestOpen_RejectsNonWebLinks(t *testing.T) {
	l, rec := newTestLauncher("", nil, "linux", "xdg-open")
	assert.Error(t, l.Open("file:///etc/passwd"))
	assert.Nil(t, rec.args)
}
