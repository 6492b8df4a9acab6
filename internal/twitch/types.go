package twitch

import "strconv"

// Field is one labelled cell of a rendered row.
type Field struct {
	Value string
	Label string
}

// Listable is implemented by every entity that can be rendered in a choice
// table. Fields must return the same labels in the same order for every
// entity of one batch.
type Listable interface {
	DisplayName() string
	Fields() []Field
}

var (
	_ Listable = Game{}
	_ Listable = Stream{}
)

// Game is a category returned by /games/top or /games.
type Game struct {
	ID   string
	Name string

	// Viewers is the per-category aggregate exposed by the legacy top-games
	// payload. It is only rendered when HasViewers is set.
	Viewers    uint64
	HasViewers bool
}

// DisplayName returns the category name.
func (g Game) DisplayName() string {
	return g.Name
}

// Fields returns the game's table row.
func (g Game) Fields() []Field {
	fields := []Field{{Value: g.Name, Label: "Name"}}
	if g.HasViewers {
		fields = append(fields, Field{Value: strconv.FormatUint(g.Viewers, 10), Label: "Viewers"})
	}
	return fields
}

// Stream is a live broadcast.
type Stream struct {
	Channel string // display name
	Login   string // lowercase login, empty when the payload omits it
	Game    string
	Viewers uint64

	Status    string
	HasStatus bool
}

// PlaceholderStream builds a Stream for a channel requested by name. Game
// and viewers are cosmetic on that path and left empty.
func PlaceholderStream(channel string) Stream {
	return Stream{Channel: channel}
}

// DisplayName returns the channel display name.
func (s Stream) DisplayName() string {
	return s.Channel
}

// Fields returns the stream's table row.
func (s Stream) Fields() []Field {
	fields := []Field{
		{Value: s.Channel, Label: "Name"},
		{Value: s.Game, Label: "Game"},
		{Value: strconv.FormatUint(s.Viewers, 10), Label: "Viewers"},
	}
	if s.HasStatus {
		fields = append(fields, Field{Value: s.Status, Label: "Status"})
	}
	return fields
}

// Target returns the identifier used to build the watch URL, preferring the
// login over the display name.
func (s Stream) Target() string {
	if s.Login != "" {
		return s.Login
	}
	return s.Channel
}
