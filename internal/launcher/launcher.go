// Package launcher opens links in an external program.
package launcher

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens URLs in the configured program or the system default
type Launcher struct {
	command string   // configured command, empty for system default
	args    []string // additional arguments before the URL
	logger  *slog.Logger

	goos     string
	lookPath func(file string) (string, error)
	start    func(cmd *exec.Cmd) error
}

// candidateOpeners lists URL handlers to try, in order, per platform
var candidateOpeners = map[string][]string{
	"darwin": {"open"},
	"linux":  {"xdg-open", "sensible-browser", "x-www-browser"},
}

// New creates a Launcher. An empty command uses the system default handler.
func New(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  strings.TrimSpace(command),
		args:     args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open launches url without waiting for the program to exit
func (l *Launcher) Open(url string) error {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return fmt.Errorf("refusing to open non-web link %q", url)
	}

	// Tier 1: user configured a specific program
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("opening link", "command", l.command, "url", url)
		return l.start(exec.Command(l.command, args...))
	}

	// Tier 2: first handler on PATH
	if l.goos == "windows" {
		l.logger.Info("opening link with system default", "os", l.goos, "url", url)
		return l.start(exec.Command("cmd", "/c", "start", "", url))
	}

	candidates, ok := candidateOpeners[l.goos]
	if !ok {
		candidates = candidateOpeners["linux"]
	}
	for _, name := range candidates {
		path, err := l.lookPath(name)
		if err != nil {
			l.logger.Debug("opener not available", "opener", name, "error", err)
			continue
		}
		l.logger.Info("opening link with system default", "opener", name, "url", url)
		return l.start(exec.Command(path, url))
	}

	return fmt.Errorf("no program found to open %s; set browser.command in config", url)
}
