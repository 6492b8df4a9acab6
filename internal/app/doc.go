// Package app wires configuration, the Twitch client, the selector and the
// player into the four twitchwatch flows.
//
// # Flows
//
// Run picks exactly one flow. A game name wins over a channel name, a
// channel name over -follow, and with none of them the top games are
// listed:
//
//	WatchGame      games?name=X  -> first match -> streams?game_id= -> choose -> launch
//	WatchChannel   launch directly (with -info: streams?user_login= -> print)
//	WatchFollowed  users -> streams/followed?user_id= -> choose -> launch
//	WatchTopGames  games/top -> choose -> streams?game_id= -> choose -> launch
//
// With info set the first list is printed and the flow stops with
// selector.ErrInfoOnly. In WatchTopGames the flag only affects the games
// list; the streams of a picked game are always offered for selection.
//
// # Errors
//
// Errors from the client and the selector are returned wrapped with the step
// that failed. IsUserIntent separates the two outcomes that are not
// failures, an info listing and a declined confirmation, so the command can
// exit quietly for them.
package app
