// Package config loads twitchwatch settings.
//
// Settings come from a TOML file, by default
// ~/.config/twitchwatch/config.toml. A missing file is not an error and
// every blank or absent field keeps its default:
//
//	api_base = "https://api.twitch.tv/helix"
//	limit = 10
//
//	[player]
//	path = "/usr/local/bin/livestreamer"
//	quality = "best,720p60"
//
//	[log]
//	level = "warn"   # debug, info, warn, error
//	file = ""        # rotating JSON log, off when empty
//
// Credentials are never read from the file. LoadCredentials takes them from
// TWITCH_ACCESS_TOKEN and TWITCH_CLIENT_ID and fails with
// twitch.ErrMissingCredentials when either is blank.
//
// The player binary is chosen by ResolvePlayer: the -player flag, then
// TWITCHWATCH_PLAYER, then the file, then the built-in default. A leading
// tilde is expanded; bare names are left for PATH lookup. A tilde that
// cannot be expanded is an error rather than a relative path.
package config
