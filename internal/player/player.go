// Package player starts the external stream player for a chosen channel.
package player

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	// DefaultPath is the player binary used when nothing else is configured.
	DefaultPath = "/usr/local/bin/livestreamer"

	// DefaultQuality is the stream quality list handed to the player.
	DefaultQuality = "best,720p60"

	watchBase = "https://www.twitch.tv/"
)

// Launcher starts playback of url at the requested quality.
type Launcher interface {
	Launch(url, quality string) error
}

// Ensure Exec implements Launcher at compile time.
var _ Launcher = (*Exec)(nil)

// LaunchError is returned when the player process cannot be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Exec runs the player binary at Path with the url and quality as its only
// arguments. The player's stdout is discarded and stderr goes to Stderr.
type Exec struct {
	Path   string
	Stderr io.Writer // nil uses os.Stderr
}

// Launch starts the player and returns once the process exists. The process
// is released, not waited on, so it outlives the caller.
func (e *Exec) Launch(url, quality string) error {
	path := strings.TrimSpace(e.Path)
	if path == "" {
		path = DefaultPath
	}
	if strings.TrimSpace(quality) == "" {
		quality = DefaultQuality
	}

	cmd := exec.Command(path, url, quality)
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return &LaunchError{Path: path, Err: err}
	}
	if err := cmd.Process.Release(); err != nil {
		return &LaunchError{Path: path, Err: fmt.Errorf("release process: %w", err)}
	}
	return nil
}

// WatchURL returns the public watch page for channel.
func WatchURL(channel string) string {
	return watchBase + channel
}
