package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/twitchwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	game := flag.String("game", "", "list live streams of the game with this exact name")
	channel := flag.String("channel", "", "watch this channel directly")
	follow := flag.Bool("follow", false, "list live streams of followed channels")
	info := flag.Bool("info", false, "print the list and exit without launching")
	configPath := flag.String("config", "", "override config path (optional)")
	playerPath := flag.String("player", "", "player binary (optional, overrides TWITCHWATCH_PLAYER)")
	limit := flag.Int("limit", 0, "maximum entries per list (optional, defaults to 10)")
	verbose := flag.Bool("v", false, "log requests to stderr")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		Request: app.Request{
			Game:    *game,
			Channel: *channel,
			Follow:  *follow,
			Info:    *info,
		},
		ConfigPath: *configPath,
		PlayerPath: *playerPath,
		Verbose:    *verbose,
	}
	if n := *limit; n > 0 {
		opts.Limit = n
	}

	if err := app.Run(ctx, opts); err != nil {
		if app.IsUserIntent(err) {
			return 0
		}
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "twitchwatch: %v\n", err)
		return 1
	}
	return 0
}
