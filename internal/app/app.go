package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/five82/twitchwatch/internal/config"
	"github.com/five82/twitchwatch/internal/logging"
	"github.com/five82/twitchwatch/internal/player"
	"github.com/five82/twitchwatch/internal/selector"
	"github.com/five82/twitchwatch/internal/twitch"
)

// Options configure a twitchwatch run.
type Options struct {
	Request

	ConfigPath string // empty uses ~/.config/twitchwatch/config.toml
	PlayerPath string // overrides TWITCHWATCH_PLAYER and the config file
	Limit      int    // zero uses the config value
	Verbose    bool

	Stdin  io.Reader // nil uses os.Stdin
	Stdout io.Writer // nil uses os.Stdout
	Stderr io.Writer // nil uses os.Stderr

	Player player.Launcher // nil starts the resolved player binary
}

// Run loads configuration, builds the API client and runs the requested flow.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	stdin, stdout, stderr := opts.Stdin, opts.Stdout, opts.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: opts.Verbose,
		File:    cfg.LogFile,
		Stderr:  stderr,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := twitch.NewClient(twitch.Options{
		BaseURL:  cfg.APIBase,
		Token:    creds.Token,
		ClientID: creds.ClientID,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("init twitch client: %w", err)
	}

	launcher := opts.Player
	if launcher == nil {
		path, err := cfg.ResolvePlayer(opts.PlayerPath)
		if err != nil {
			return fmt.Errorf("resolve player: %w", err)
		}
		launcher = &player.Exec{Path: path, Stderr: stderr}
	}

	limit := cfg.Limit
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	w := &Watcher{
		API:      client,
		Prompter: selector.New(stdin, stdout),
		Player:   launcher,
		Limit:    limit,
		Quality:  cfg.PlayerQuality,
		Log:      logger,
	}
	return w.Watch(ctx, opts.Request)
}
