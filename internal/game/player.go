package game

import "tagarena/internal/dao"

// Position is a point in world units. Coordinates are not snapped to a grid.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Avatar struct {
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// EmojiMessage is the most recent chat emoji of a player. Timestamp is unix
// milliseconds; clients decide when it is too old to show.
type EmojiMessage struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Player is the authoritative state of one connected identity and doubles as
// its wire representation.
type Player struct {
	ID          string        `json:"id"`
	Position    Position      `json:"position"`
	Avatar      Avatar        `json:"avatar"`
	LastMessage *EmojiMessage `json:"lastMessage,omitempty"`
	Score       int           `json:"score"`
	IsIt        bool          `json:"isIt"`
	Coins       int           `json:"coins"`
	Inventory   []string      `json:"inventory"`

	// ProfileKey names the durable progression record; usually equal to ID.
	ProfileKey string `json:"-"`
}

// Progression returns the durable fields handed to the persistence gateway.
func (p Player) Progression() dao.Progression {
	inv := make([]string, len(p.Inventory))
	copy(inv, p.Inventory)
	return dao.Progression{Coins: p.Coins, Inventory: inv}
}

func (p *Player) clone() Player {
	out := *p
	if p.LastMessage != nil {
		msg := *p.LastMessage
		out.LastMessage = &msg
	}
	out.Inventory = make([]string, len(p.Inventory))
	copy(out.Inventory, p.Inventory)
	return out
}
