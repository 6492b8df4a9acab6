// Package twitch provides the Twitch API client and the entity model built
// from its responses.
//
// # Overview
//
// The package is split into four files:
//
//   - types.go: Game and Stream entities and the Listable contract
//   - normalize.go: decoded JSON documents to entities
//   - client.go: authenticated GET requests, one per logical query
//   - errors.go: the failure taxonomy shared by both layers
//
// # Client Usage
//
//	client, err := twitch.NewClient(twitch.Options{
//		Token:    os.Getenv("TWITCH_ACCESS_TOKEN"),
//		ClientID: os.Getenv("TWITCH_CLIENT_ID"),
//	})
//	if err != nil {
//		return err
//	}
//	doc, err := client.FetchTopGames(ctx, 10)
//	if err != nil {
//		return err
//	}
//	games, err := twitch.NormalizeGames(doc)
//
// # API Endpoints
//
// Paths are resolved against the base URL (https://api.twitch.tv/helix):
//
//   - GET games/top?limit=N
//   - GET games?name=NAME
//   - GET streams?game_id=ID&limit=N
//   - GET streams?user_login=NAME
//   - GET streams/followed?user_id=ID&limit=N
//   - GET users
//
// Every request carries Accept, Authorization (Bearer) and Client-ID
// headers. The client does not retry, paginate, or cache.
//
// # Payload Shapes
//
// The normalizer probes an ordered list of top-level keys: "data" first,
// then the legacy kraken key for the operation ("top", "games", "streams",
// "users"). Legacy elements nest channel details under "channel" and game
// details under "game"; both shapes produce the same entities.
//
// Optional cosmetic fields (stream title/status, per-game viewers) add a
// column only when every element of the batch carries them, so one batch
// always renders with a single table shape.
//
// # Error Handling
//
//   - *TransportError: dial, TLS, timeout, or body read failure
//   - ErrUnauthorized: 401
//   - *UnknownChannelError: 404 whose message names a channel
//   - *RequestRejectedError: any other non-2xx status
//   - *DecodeError: 2xx body that is not JSON
//   - *MalformedEntityError: required field absent or mistyped
//   - ErrNoResults: empty result list
package twitch
