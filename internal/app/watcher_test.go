package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/twitchwatch/internal/player"
	"github.com/five82/twitchwatch/internal/selector"
	"github.com/five82/twitchwatch/internal/twitch"
)

// fakeAPI serves canned bodies keyed by path and records every request.
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	hits   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path+"?"+r.URL.RawQuery)
	body, ok := f.bodies[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Not Found","status":404,"message":"no route"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.hits))
	for i, hit := range f.hits {
		out[i], _, _ = strings.Cut(hit, "?")
	}
	return out
}

func (f *fakeAPI) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hits...)
}

type launch struct {
	URL     string
	Quality string
}

type fakeLauncher struct {
	calls []launch
	err   error
}

func (l *fakeLauncher) Launch(url, quality string) error {
	l.calls = append(l.calls, launch{URL: url, Quality: quality})
	return l.err
}

type fixture struct {
	api      *fakeAPI
	launcher *fakeLauncher
	out      *bytes.Buffer
	watcher  *Watcher
}

func newFixture(t *testing.T, input string, bodies map[string]string) *fixture {
	t.Helper()
	api := &fakeAPI{bodies: bodies}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := twitch.NewClient(twitch.Options{
		BaseURL:  server.URL,
		Token:    "tok",
		ClientID: "cid",
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	out := &bytes.Buffer{}
	launcher := &fakeLauncher{}
	return &fixture{
		api:      api,
		launcher: launcher,
		out:      out,
		watcher: &Watcher{
			API:      client,
			Prompter: selector.New(strings.NewReader(input), out),
			Player:   launcher,
			Limit:    10,
			Quality:  player.DefaultQuality,
			Log:      logger,
		},
	}
}

const (
	twoGames = `{"data":[{"id":"1","name":"Chess"},{"id":"2","name":"Go"}]}`
	oneGame  = `{"data":[{"id":"1","name":"Chess"}]}`

	oneStream = `{"data":[{"user_name":"Gotham","user_login":"gotham","game_name":"Chess","viewer_count":1200,"title":"blitz"}]}`
	twoStream = `{"data":[
		{"user_name":"Gotham","user_login":"gotham","game_name":"Go","viewer_count":1200,"title":"blitz"},
		{"user_name":"Hikaru","user_login":"hikaru","game_name":"Go","viewer_count":900,"title":"bullet"}
	]}`
)

func TestWatchTopGames_InfoPrintsGamesOnly(t *testing.T) {
	f := newFixture(t, "", map[string]string{
		"/games/top": oneGame,
		"/streams":   oneStream,
	})

	err := f.watcher.WatchTopGames(context.Background(), true)
	if !errors.Is(err, selector.ErrInfoOnly) {
		t.Fatalf("error = %v, want ErrInfoOnly", err)
	}
	if !IsUserIntent(err) {
		t.Fatalf("IsUserIntent(%v) = false, want true", err)
	}

	want := "   Name\n1) Chess\n"
	if f.out.String() != want {
		t.Fatalf("output = %q, want %q", f.out.String(), want)
	}
	if diff := cmp.Diff([]string{"/games/top"}, f.api.paths()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if len(f.launcher.calls) != 0 {
		t.Fatalf("launcher called %d times, want 0", len(f.launcher.calls))
	}
}

func TestWatchTopGames_SelectsGameThenStream(t *testing.T) {
	f := newFixture(t, "2\n2\n", map[string]string{
		"/games/top": twoGames,
		"/streams":   twoStream,
	})

	if err := f.watcher.WatchTopGames(context.Background(), false); err != nil {
		t.Fatalf("WatchTopGames returned error: %v", err)
	}

	want := []string{"/games/top?limit=10", "/streams?game_id=2&limit=10"}
	if diff := cmp.Diff(want, f.api.queries()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	wantLaunch := []launch{{URL: "https://www.twitch.tv/hikaru", Quality: player.DefaultQuality}}
	if diff := cmp.Diff(wantLaunch, f.launcher.calls); diff != "" {
		t.Fatalf("launches mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(f.out.String(), "Watching Hikaru\n") {
		t.Fatalf("output should end with the watching line, got:\n%s", f.out.String())
	}
}

func TestWatchTopGames_StreamStageIgnoresInfo(t *testing.T) {
	// A single game is confirmed, after which the streams are offered for
	// selection rather than printed and abandoned.
	f := newFixture(t, "y\n1\n", map[string]string{
		"/games/top": oneGame,
		"/streams":   twoStream,
	})

	if err := f.watcher.WatchTopGames(context.Background(), false); err != nil {
		t.Fatalf("WatchTopGames returned error: %v", err)
	}
	if !strings.Contains(f.out.String(), "Choose by typing the number next to the option [1 - 2]") {
		t.Fatalf("streams were not offered for selection:\n%s", f.out.String())
	}
	if len(f.launcher.calls) != 1 || f.launcher.calls[0].URL != "https://www.twitch.tv/gotham" {
		t.Fatalf("launches = %+v, want gotham", f.launcher.calls)
	}
}

func TestWatchGame_UsesFirstMatch(t *testing.T) {
	f := newFixture(t, "y\n", map[string]string{
		"/games":   twoGames,
		"/streams": oneStream,
	})

	if err := f.watcher.WatchGame(context.Background(), "Chess", false); err != nil {
		t.Fatalf("WatchGame returned error: %v", err)
	}
	want := []string{"/games?name=Chess", "/streams?game_id=1&limit=10"}
	if diff := cmp.Diff(want, f.api.queries()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(f.out.String(), "Watch Gotham? [y/N]") {
		t.Fatalf("missing confirmation prompt:\n%s", f.out.String())
	}
	if len(f.launcher.calls) != 1 {
		t.Fatalf("launcher called %d times, want 1", len(f.launcher.calls))
	}
}

func TestWatchGame_UnknownNameIsNotFound(t *testing.T) {
	f := newFixture(t, "", map[string]string{"/games": `{"data":[]}`})

	err := f.watcher.WatchGame(context.Background(), "Nonexistent", false)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Name != "Nonexistent" {
		t.Fatalf("error = %v, want NotFoundError(Nonexistent)", err)
	}
	if IsUserIntent(err) {
		t.Fatalf("NotFoundError must not count as user intent")
	}
}

func TestWatchGame_NoLiveStreams(t *testing.T) {
	f := newFixture(t, "", map[string]string{
		"/games":   oneGame,
		"/streams": `{"data":[]}`,
	})

	err := f.watcher.WatchGame(context.Background(), "Chess", false)
	if !errors.Is(err, twitch.ErrNoResults) {
		t.Fatalf("error = %v, want ErrNoResults", err)
	}
}

func TestWatchChannel_LaunchesWithoutLookup(t *testing.T) {
	f := newFixture(t, "", nil)

	if err := f.watcher.WatchChannel(context.Background(), "gotham", false); err != nil {
		t.Fatalf("WatchChannel returned error: %v", err)
	}
	if hits := f.api.paths(); len(hits) != 0 {
		t.Fatalf("requests = %v, want none", hits)
	}
	if f.out.String() != "Watching gotham\n" {
		t.Fatalf("output = %q, want %q", f.out.String(), "Watching gotham\n")
	}
	want := []launch{{URL: "https://www.twitch.tv/gotham", Quality: player.DefaultQuality}}
	if diff := cmp.Diff(want, f.launcher.calls); diff != "" {
		t.Fatalf("launches mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchChannel_InfoShowsLiveStream(t *testing.T) {
	f := newFixture(t, "", map[string]string{"/streams": oneStream})

	err := f.watcher.WatchChannel(context.Background(), "gotham", true)
	if !errors.Is(err, selector.ErrInfoOnly) {
		t.Fatalf("error = %v, want ErrInfoOnly", err)
	}
	if diff := cmp.Diff([]string{"/streams?user_login=gotham"}, f.api.queries()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(f.out.String(), "1) Gotham") || !strings.Contains(f.out.String(), "blitz") {
		t.Fatalf("stream row missing:\n%s", f.out.String())
	}
	if len(f.launcher.calls) != 0 {
		t.Fatalf("launcher called in info mode")
	}
}

func TestWatchChannel_InfoOffline(t *testing.T) {
	f := newFixture(t, "", map[string]string{"/streams": `{"data":[]}`})

	err := f.watcher.WatchChannel(context.Background(), "gotham", true)
	if !errors.Is(err, twitch.ErrNoResults) {
		t.Fatalf("error = %v, want ErrNoResults", err)
	}
}

func TestWatchFollowed_DeclineIsUserIntent(t *testing.T) {
	f := newFixture(t, "N\n", map[string]string{
		"/users":            `{"data":[{"id":"99","login":"viewer"}]}`,
		"/streams/followed": oneStream,
	})

	err := f.watcher.WatchFollowed(context.Background(), false)
	if !errors.Is(err, selector.ErrDeclined) {
		t.Fatalf("error = %v, want ErrDeclined", err)
	}
	if !IsUserIntent(err) {
		t.Fatalf("IsUserIntent(%v) = false, want true", err)
	}
	want := []string{"/users?", "/streams/followed?limit=10&user_id=99"}
	if diff := cmp.Diff(want, f.api.queries()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if len(f.launcher.calls) != 0 {
		t.Fatalf("launcher called after decline")
	}
}

func TestWatch_LaunchFailurePropagates(t *testing.T) {
	f := newFixture(t, "", nil)
	cause := &player.LaunchError{Path: "/nope", Err: errors.New("exec format error")}
	f.launcher.err = cause

	err := f.watcher.WatchChannel(context.Background(), "gotham", false)
	var launchErr *player.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("error = %v, want LaunchError", err)
	}
}

func TestWatch_Precedence(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want string
	}{
		{"game wins", Request{Game: "Chess", Channel: "gotham", Follow: true, Info: true}, "/games"},
		{"channel over follow", Request{Channel: "gotham", Follow: true, Info: true}, "/streams"},
		{"follow", Request{Follow: true, Info: true}, "/users"},
		{"top games", Request{Info: true}, "/games/top"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "", map[string]string{
				"/games":            oneGame,
				"/games/top":        oneGame,
				"/streams":          oneStream,
				"/users":            `{"data":[{"id":"99"}]}`,
				"/streams/followed": oneStream,
			})
			err := f.watcher.Watch(context.Background(), tc.req)
			if !errors.Is(err, selector.ErrInfoOnly) {
				t.Fatalf("error = %v, want ErrInfoOnly", err)
			}
			if paths := f.api.paths(); len(paths) == 0 || paths[0] != tc.want {
				t.Fatalf("first request = %v, want %s", paths, tc.want)
			}
		})
	}
}

func TestWatch_UnauthorizedSurfaces(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Unauthorized","status":401,"message":"invalid oauth token"}`)
	})
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := twitch.NewClient(twitch.Options{BaseURL: server.URL, Token: "tok", ClientID: "cid"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	w := &Watcher{API: client, Prompter: selector.New(strings.NewReader(""), io.Discard), Player: &fakeLauncher{}, Limit: 10}

	err = w.WatchTopGames(context.Background(), false)
	if !errors.Is(err, twitch.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestWatchTopGames_InterruptAtPromptSkipsLaunch(t *testing.T) {
	f := newFixture(t, "", map[string]string{
		"/games/top": twoGames,
		"/streams":   twoStream,
	})
	in, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })
	f.watcher.Prompter = selector.New(in, f.out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.watcher.WatchTopGames(ctx, false) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if IsUserIntent(err) {
			t.Fatalf("an interrupt must not count as user intent")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WatchTopGames kept waiting for input after cancel")
	}
	if len(f.launcher.calls) != 0 {
		t.Fatalf("launcher called %d times after interrupt", len(f.launcher.calls))
	}
}

func TestWatchChannel_CancelledContextSkipsLaunch(t *testing.T) {
	f := newFixture(t, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.watcher.WatchChannel(ctx, "gotham", false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(f.launcher.calls) != 0 || f.out.Len() != 0 {
		t.Fatalf("launch happened after cancel: calls=%v output=%q", f.launcher.calls, f.out.String())
	}
}
