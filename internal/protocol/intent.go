package protocol

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrMalformed    = errors.New("malformed payload")
)

// Intent is a validated client request. Only Move and Chat exist.
type Intent interface {
	intent()
}

type Move struct {
	X, Y float64
}

type Chat struct {
	Emoji string
}

func (Move) intent() {}
func (Chat) intent() {}

type movePayload struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// ParseIntent decodes and validates one inbound frame. Any error means the
// frame must be dropped without touching state.
func ParseIntent(frame []byte, chatMaxLen int) (Intent, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Event {
	case EventMove:
		p, err := DecodePayload[movePayload](env)
		if err != nil {
			return nil, fmt.Errorf("%w: move: %v", ErrMalformed, err)
		}
		if p.X == nil || p.Y == nil || !finite(*p.X) || !finite(*p.Y) {
			return nil, fmt.Errorf("%w: move needs numeric x and y", ErrMalformed)
		}
		return Move{X: *p.X, Y: *p.Y}, nil

	case EventChat:
		s, err := DecodePayload[*string](env)
		if err != nil || s == nil {
			return nil, fmt.Errorf("%w: chat needs a string", ErrMalformed)
		}
		if TextLen(*s) >= chatMaxLen {
			return nil, fmt.Errorf("%w: chat too long", ErrMalformed)
		}
		return Chat{Emoji: *s}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// TextLen counts s in UTF-16 code units, the unit browser clients use for
// string length.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
