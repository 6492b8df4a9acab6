package twitch

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Top-level keys probed in order. The first is the current Helix shape, the
// rest are the legacy kraken shapes for the same operation.
var (
	gameKeys   = []string{"data", "top", "games"}
	streamKeys = []string{"data", "streams"}
	userKeys   = []string{"data", "users"}
)

// NormalizeGames converts a top-games or game-search document into games,
// preserving order.
func NormalizeGames(doc any) ([]Game, error) {
	items, err := entries(doc, gameKeys)
	if err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(items))
	withViewers := true
	for _, item := range items {
		game, err := parseGame(item)
		if err != nil {
			return nil, err
		}
		withViewers = withViewers && game.HasViewers
		games = append(games, game)
	}
	if !withViewers {
		for i := range games {
			games[i].HasViewers = false
		}
	}
	return games, nil
}

// NormalizeStreams converts a streams or followed-streams document into
// streams, preserving order.
func NormalizeStreams(doc any) ([]Stream, error) {
	items, err := entries(doc, streamKeys)
	if err != nil {
		return nil, err
	}
	streams := make([]Stream, 0, len(items))
	withStatus := true
	for _, item := range items {
		stream, err := parseStream(item)
		if err != nil {
			return nil, err
		}
		withStatus = withStatus && stream.HasStatus
		streams = append(streams, stream)
	}
	if !withStatus {
		for i := range streams {
			streams[i].HasStatus = false
		}
	}
	return streams, nil
}

// NormalizeSingleStream converts a channel lookup into one stream. The
// legacy shape wraps it in "stream", which is null while the channel is
// offline.
func NormalizeSingleStream(doc any) (Stream, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "data", Fragment: doc}
	}
	if _, current := obj["data"]; !current {
		if raw, legacy := obj["stream"]; legacy {
			if raw == nil {
				return Stream{}, ErrNoResults
			}
			return parseStream(raw)
		}
	}
	streams, err := NormalizeStreams(doc)
	if err != nil {
		return Stream{}, err
	}
	return streams[0], nil
}

// NormalizeUserID extracts the authenticated user's id from a /users
// document.
func NormalizeUserID(doc any) (string, error) {
	if obj, ok := doc.(map[string]any); ok {
		if id, ok := idValue(obj["_id"]); ok && !hasAny(obj, userKeys) {
			return id, nil
		}
	}
	items, err := entries(doc, userKeys)
	if err != nil {
		return "", err
	}
	user, ok := items[0].(map[string]any)
	if !ok {
		return "", &MalformedEntityError{Field: "id", Fragment: items[0]}
	}
	id, ok := idValue(user["id"])
	if !ok {
		return "", &MalformedEntityError{Field: "id", Fragment: user}
	}
	return id, nil
}

func entries(doc any, keys []string) ([]any, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &MalformedEntityError{Field: strings.Join(keys, "|"), Fragment: doc}
	}
	for _, key := range keys {
		raw, present := obj[key]
		if !present {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, &MalformedEntityError{Field: key, Fragment: raw}
		}
		if len(items) == 0 {
			return nil, ErrNoResults
		}
		return items, nil
	}
	return nil, &MalformedEntityError{Field: strings.Join(keys, "|"), Fragment: doc}
}

func parseGame(item any) (Game, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Game{}, &MalformedEntityError{Field: "game", Fragment: item}
	}

	if nested, legacy := obj["game"].(map[string]any); legacy {
		name, ok := nested["name"].(string)
		if !ok {
			return Game{}, &MalformedEntityError{Field: "game.name", Fragment: item}
		}
		id, ok := idValue(nested["_id"])
		if !ok {
			return Game{}, &MalformedEntityError{Field: "game._id", Fragment: item}
		}
		game := Game{ID: id, Name: name}
		if viewers, ok := countValue(obj["viewers"]); ok {
			game.Viewers = viewers
			game.HasViewers = true
		}
		return game, nil
	}

	// Helix uses "id"; the legacy search endpoint returns flat games keyed
	// by "_id".
	id, ok := idValue(obj["id"])
	if !ok {
		id, ok = idValue(obj["_id"])
	}
	if !ok {
		return Game{}, &MalformedEntityError{Field: "id", Fragment: item}
	}
	name, ok := obj["name"].(string)
	if !ok {
		return Game{}, &MalformedEntityError{Field: "name", Fragment: item}
	}
	return Game{ID: id, Name: name}, nil
}

func parseStream(item any) (Stream, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "stream", Fragment: item}
	}
	if channel, legacy := obj["channel"].(map[string]any); legacy {
		return parseLegacyStream(obj, channel)
	}

	name, ok := obj["user_name"].(string)
	if !ok || name == "" {
		return Stream{}, &MalformedEntityError{Field: "user_name", Fragment: item}
	}
	game, ok := nullableString(obj, "game_name")
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "game_name", Fragment: item}
	}
	viewers, ok := countValue(obj["viewer_count"])
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "viewer_count", Fragment: item}
	}

	stream := Stream{Channel: name, Game: game, Viewers: viewers}
	stream.Login, _ = obj["user_login"].(string)
	if title, ok := obj["title"].(string); ok {
		stream.Status = title
		stream.HasStatus = true
	}
	return stream, nil
}

func parseLegacyStream(obj, channel map[string]any) (Stream, error) {
	login, _ := channel["name"].(string)
	name, _ := channel["display_name"].(string)
	if name == "" {
		name = login
	}
	if name == "" {
		return Stream{}, &MalformedEntityError{Field: "channel.name", Fragment: obj}
	}
	game, ok := nullableString(obj, "game")
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "game", Fragment: obj}
	}
	viewers, ok := countValue(obj["viewers"])
	if !ok {
		return Stream{}, &MalformedEntityError{Field: "viewers", Fragment: obj}
	}

	stream := Stream{Channel: name, Login: login, Game: game, Viewers: viewers}
	if status, ok := channel["status"].(string); ok {
		stream.Status = status
		stream.HasStatus = true
	}
	return stream, nil
}

// nullableString reads a required key whose value may be a string or null.
func nullableString(obj map[string]any, key string) (string, bool) {
	raw, present := obj[key]
	if !present {
		return "", false
	}
	if raw == nil {
		return "", true
	}
	s, ok := raw.(string)
	return s, ok
}

// idValue accepts string ids (Helix) and numeric ids (kraken).
func idValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, v != ""
	case json.Number:
		if _, err := strconv.ParseUint(v.String(), 10, 64); err != nil {
			return "", false
		}
		return v.String(), true
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', 0, 64), true
	default:
		return "", false
	}
}

func countValue(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		return n, err == nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func hasAny(obj map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}
