package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"tagarena/internal/dao"
)

const (
	DefaultWorldWidth  = 800.0
	DefaultWorldHeight = 600.0
	DefaultTagRadius   = 40.0

	DefaultAvatarEmoji = "😀"
)

type Options struct {
	WorldWidth  float64
	WorldHeight float64
	TagRadius   float64

	// Rand drives spawn positions and avatar colours. Nil seeds from the clock.
	Rand *rand.Rand
	// Now stamps chat messages. Nil means time.Now.
	Now func() time.Time
}

// Store owns every PlayerState. Mutations are serialized by the caller's
// single owner goroutine; the lock additionally lets read-only surfaces take
// consistent snapshots.
type Store struct {
	mu      sync.RWMutex
	players map[string]*Player
	// admission order; collision scans and snapshots iterate it
	order []string

	width, height float64
	radius        float64
	rng           *rand.Rand
	now           func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.WorldWidth <= 0 {
		opts.WorldWidth = DefaultWorldWidth
	}
	if opts.WorldHeight <= 0 {
		opts.WorldHeight = DefaultWorldHeight
	}
	if opts.TagRadius <= 0 {
		opts.TagRadius = DefaultTagRadius
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		players: make(map[string]*Player),
		width:   opts.WorldWidth,
		height:  opts.WorldHeight,
		radius:  opts.TagRadius,
		rng:     opts.Rand,
		now:     opts.Now,
	}
}

// Admit creates the player for a newly connected identity and returns a copy
// of it. The first player admitted into an empty store becomes "it".
// Admitting an id that is already present returns the existing player.
func (s *Store) Admit(id string, prog dao.Progression) Player {
	return s.AdmitAs(id, id, prog)
}

// AdmitAs is Admit with a progression key that differs from the connection id.
func (s *Store) AdmitAs(id, profileKey string, prog dao.Progression) Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		return p.clone()
	}

	inv := prog.Inventory
	if inv == nil {
		inv = []string{}
	}
	p := &Player{
		ID: id,
		Position: Position{
			X: s.rng.Float64() * s.width,
			Y: s.rng.Float64() * s.height,
		},
		Avatar: Avatar{
			Emoji: DefaultAvatarEmoji,
			Color: fmt.Sprintf("#%06x", s.rng.IntN(0x1000000)),
		},
		IsIt:       len(s.players) == 0,
		Coins:      prog.Coins,
		Inventory:  slices.Clone(inv),
		ProfileKey: profileKey,
	}
	s.players[id] = p
	s.order = append(s.order, id)
	return p.clone()
}

// Remove deletes the player and returns what it looked like. Removing an
// unknown id is a no-op. The "it" role is not handed to anyone else.
func (s *Store) Remove(id string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	delete(s.players, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return p.clone(), true
}

func (s *Store) Get(id string) (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return p.clone(), true
}

// All returns a snapshot of every player in admission order.
func (s *Store) All() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id].clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}
