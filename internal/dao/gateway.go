package dao

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Progression is the durable per-identity state that outlives a connection.
type Progression struct {
	Coins     int      `json:"coins"`
	Inventory []string `json:"inventory"`
}

func DefaultProgression() Progression {
	return Progression{Coins: 0, Inventory: []string{}}
}

// Gateway loads and saves progression by a stable key. GetUser returns
// DefaultProgression with a nil error for keys it has never seen.
type Gateway interface {
	GetUser(ctx context.Context, key string) (Progression, error)
	SaveUser(ctx context.Context, key string, p Progression) error
	Close() error
}

func encodeInventory(inv []string) (string, error) {
	if inv == nil {
		inv = []string{}
	}
	b, err := json.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("encode inventory: %w", err)
	}
	return string(b), nil
}

func decodeInventory(s string) ([]string, error) {
	inv := []string{}
	if s == "" {
		return inv, nil
	}
	if err := json.Unmarshal([]byte(s), &inv); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if inv == nil {
		inv = []string{}
	}
	return inv, nil
}
