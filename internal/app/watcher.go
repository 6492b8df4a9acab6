package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/twitchwatch/internal/player"
	"github.com/five82/twitchwatch/internal/selector"
	"github.com/five82/twitchwatch/internal/twitch"
)

// NotFoundError is returned when a game name matches nothing.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s", e.Name)
}

// IsUserIntent reports whether err ended the run on the user's request
// rather than through a failure.
func IsUserIntent(err error) bool {
	return errors.Is(err, selector.ErrInfoOnly) || errors.Is(err, selector.ErrDeclined)
}

// Watcher runs the four watch flows: by game, by channel, followed
// channels and top games.
type Watcher struct {
	API      twitch.Fetcher
	Prompter *selector.Prompter
	Player   player.Launcher
	Limit    int
	Quality  string
	Log      *slog.Logger
}

// Request selects a flow. Game wins over Channel, Channel over Follow, and
// with none set the top games are listed.
type Request struct {
	Game    string
	Channel string
	Follow  bool
	Info    bool
}

// Watch dispatches req to its flow.
func (w *Watcher) Watch(ctx context.Context, req Request) error {
	switch {
	case req.Game != "":
		return w.WatchGame(ctx, req.Game, req.Info)
	case req.Channel != "":
		return w.WatchChannel(ctx, req.Channel, req.Info)
	case req.Follow:
		return w.WatchFollowed(ctx, req.Info)
	default:
		return w.WatchTopGames(ctx, req.Info)
	}
}

// WatchGame looks up the game called name and lets the user pick one of its
// live streams. The first search hit is used.
func (w *Watcher) WatchGame(ctx context.Context, name string, info bool) error {
	doc, err := w.API.FetchGameByName(ctx, name)
	if err != nil {
		return fmt.Errorf("find game: %w", err)
	}
	games, err := twitch.NormalizeGames(doc)
	if errors.Is(err, twitch.ErrNoResults) {
		return &NotFoundError{Name: name}
	}
	if err != nil {
		return fmt.Errorf("find game: %w", err)
	}
	return w.watchGameStreams(ctx, games[0], info)
}

// WatchChannel launches name directly. Nothing is looked up unless info is
// set, in which case the live stream is printed instead.
func (w *Watcher) WatchChannel(ctx context.Context, name string, info bool) error {
	if !info {
		return w.launch(ctx, twitch.PlaceholderStream(name))
	}

	doc, err := w.API.FetchChannel(ctx, name)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	stream, err := twitch.NormalizeSingleStream(doc)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	_, err = selector.Choose(ctx, w.Prompter, []twitch.Stream{stream}, true)
	return err
}

// WatchFollowed lists live streams of channels the token's user follows.
func (w *Watcher) WatchFollowed(ctx context.Context, info bool) error {
	doc, err := w.API.FetchCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	userID, err := twitch.NormalizeUserID(doc)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	w.logger().Debug("resolved current user", "user_id", userID)

	doc, err = w.API.FetchStreamsFollowed(ctx, userID, w.Limit)
	if err != nil {
		return fmt.Errorf("fetch followed streams: %w", err)
	}
	streams, err := twitch.NormalizeStreams(doc)
	if err != nil {
		return fmt.Errorf("fetch followed streams: %w", err)
	}
	return w.chooseAndLaunch(ctx, streams, info)
}

// WatchTopGames lists the most watched games. Info only applies to that
// list; once a game is picked its streams are always offered for selection.
func (w *Watcher) WatchTopGames(ctx context.Context, info bool) error {
	doc, err := w.API.FetchTopGames(ctx, w.Limit)
	if err != nil {
		return fmt.Errorf("fetch top games: %w", err)
	}
	games, err := twitch.NormalizeGames(doc)
	if err != nil {
		return fmt.Errorf("fetch top games: %w", err)
	}
	game, err := selector.Choose(ctx, w.Prompter, games, info)
	if err != nil {
		return err
	}
	return w.watchGameStreams(ctx, game, false)
}

func (w *Watcher) watchGameStreams(ctx context.Context, game twitch.Game, info bool) error {
	w.logger().Debug("listing streams", "game", game.Name, "game_id", game.ID)
	doc, err := w.API.FetchStreamsForGame(ctx, game.ID, w.Limit)
	if err != nil {
		return fmt.Errorf("fetch streams for %s: %w", game.Name, err)
	}
	streams, err := twitch.NormalizeStreams(doc)
	if err != nil {
		return fmt.Errorf("fetch streams for %s: %w", game.Name, err)
	}
	return w.chooseAndLaunch(ctx, streams, info)
}

func (w *Watcher) chooseAndLaunch(ctx context.Context, streams []twitch.Stream, info bool) error {
	stream, err := selector.Choose(ctx, w.Prompter, streams, info)
	if err != nil {
		return err
	}
	return w.launch(ctx, stream)
}

func (w *Watcher) launch(ctx context.Context, stream twitch.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(w.out(), "Watching %s\n", stream.DisplayName())
	url := player.WatchURL(stream.Target())
	w.logger().Info("launching player", "url", url, "quality", w.Quality)
	return w.Player.Launch(url, w.Quality)
}

func (w *Watcher) out() io.Writer {
	if w.Prompter == nil {
		return io.Discard
	}
	return w.Prompter.Out()
}

func (w *Watcher) logger() *slog.Logger {
	if w.Log == nil {
		return slog.Default()
	}
	return w.Log
}
