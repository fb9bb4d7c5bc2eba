// Package protocol defines the named events exchanged over a client channel
// and turns inbound frames into validated intents.
package protocol

import "tagarena/internal/game"

// Client -> server.
const (
	EventMove = "move"
	EventChat = "chat"
)

// Server -> client.
const (
	EventInit         = "init"
	EventPlayerJoined = "playerJoined"
	EventPlayerMoved  = "playerMoved"
	EventPlayerChat   = "playerChat"
	EventTagTransfer  = "tagTransfer"
	EventPlayerLeft   = "playerLeft"
)

const DefaultChatMaxLen = 10

type Init struct {
	ID      string        `json:"id"`
	Players []game.Player `json:"players"`
}

type PlayerMoved struct {
	ID       string        `json:"id"`
	Position game.Position `json:"position"`
}

type PlayerChat struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
}

type TagTransfer struct {
	From string `json:"from"`
	To   string `json:"to"`
}
