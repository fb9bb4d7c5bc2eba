package game

import "math"

// MoveResult describes what ApplyMove did. Tag is TagNoop unless the move
// made the "it" player touch someone.
type MoveResult struct {
	Applied  bool
	Position Position
	Tag      TagResult
}

// ApplyMove overwrites the player's position. Only type/finite checks are
// made; speed and world bounds are not enforced. When the mover is "it", the
// first other player (admission order) strictly inside the tag radius of the
// new position receives the role.
func (s *Store) ApplyMove(id string, x, y float64) MoveResult {
	if !finite(x) || !finite(y) {
		return MoveResult{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return MoveResult{}
	}
	p.Position = Position{X: x, Y: y}
	res := MoveResult{Applied: true, Position: p.Position}

	if !p.IsIt {
		return res
	}
	for _, otherID := range s.order {
		if otherID == id {
			continue
		}
		other := s.players[otherID]
		if math.Hypot(other.Position.X-x, other.Position.Y-y) < s.radius {
			res.Tag = s.transferTagLocked(id, otherID)
			break
		}
	}
	return res
}

// HandleChat records text as the player's latest message. Length limits are
// enforced where the intent is parsed, not here.
func (s *Store) HandleChat(id, text string) (EmojiMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return EmojiMessage{}, false
	}
	msg := EmojiMessage{Text: text, Timestamp: s.now().UnixMilli()}
	p.LastMessage = &msg
	return msg, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
