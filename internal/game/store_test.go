package game

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"tagarena/internal/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(Options{
		Rand: rand.New(rand.NewPCG(1, 2)),
		Now:  func() time.Time { return time.UnixMilli(1700000000000) },
	})
}

// place puts a player at an exact spot without going through the tag rule.
func place(s *Store, id string, x, y float64) {
	s.mu.Lock()
	s.players[id].Position = Position{X: x, Y: y}
	s.mu.Unlock()
}

func itCount(s *Store) int {
	n := 0
	for _, p := range s.All() {
		if p.IsIt {
			n++
		}
	}
	return n
}

func TestAdmitFirstPlayerIsIt(t *testing.T) {
	s := newTestStore()

	p1 := s.Admit("p1", dao.DefaultProgression())
	assert.True(t, p1.IsIt)
	assert.Equal(t, "p1", s.CurrentIt())

	p2 := s.Admit("p2", dao.DefaultProgression())
	assert.False(t, p2.IsIt)
	assert.Equal(t, "p1", s.CurrentIt())
	assert.Equal(t, 1, itCount(s))
}

func TestAdmitDefaults(t *testing.T) {
	s := newTestStore()
	colour := regexp.MustCompile(`^#[0-9a-f]{6}$`)

	for i := 0; i < 50; i++ {
		id := string(rune('a' + i%26)) + string(rune('0'+i/26))
		p := s.Admit(id, dao.Progression{Coins: 7, Inventory: []string{"hat"}})

		assert.GreaterOrEqual(t, p.Position.X, 0.0)
		assert.Less(t, p.Position.X, DefaultWorldWidth)
		assert.GreaterOrEqual(t, p.Position.Y, 0.0)
		assert.Less(t, p.Position.Y, DefaultWorldHeight)
		assert.Equal(t, DefaultAvatarEmoji, p.Avatar.Emoji)
		assert.Regexp(t, colour, p.Avatar.Color)
		assert.Equal(t, 0, p.Score)
		assert.Nil(t, p.LastMessage)
		assert.Equal(t, 7, p.Coins)
		assert.Equal(t, []string{"hat"}, p.Inventory)
		assert.Equal(t, id, p.ProfileKey)
	}
}

func TestAdmitNilInventoryBecomesEmpty(t *testing.T) {
	s := newTestStore()
	p := s.Admit("p1", dao.Progression{})
	assert.NotNil(t, p.Inventory)
	assert.Empty(t, p.Inventory)
}

func TestAdmitAsKeepsProfileKey(t *testing.T) {
	s := newTestStore()
	p := s.AdmitAs("conn-1", "user-42", dao.DefaultProgression())
	assert.Equal(t, "conn-1", p.ID)
	assert.Equal(t, "user-42", p.ProfileKey)
	assert.Equal(t, dao.DefaultProgression(), p.Progression())
}

func TestAdmitExistingIDReturnsExisting(t *testing.T) {
	s := newTestStore()
	first := s.Admit("p1", dao.DefaultProgression())
	again := s.Admit("p1", dao.Progression{Coins: 99})

	assert.Equal(t, first, again)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())

	removed, ok := s.Remove("p2")
	require.True(t, ok)
	assert.Equal(t, "p2", removed.ID)
	after := s.All()

	_, ok = s.Remove("p2")
	assert.False(t, ok)
	assert.Equal(t, after, s.All())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Remove("never")
	assert.False(t, ok)
}

func TestRemoveItPlayerDoesNotReassign(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())

	s.Remove("p1")

	assert.Equal(t, "", s.CurrentIt())
	assert.Equal(t, 0, itCount(s))
	p2, _ := s.Get("p2")
	assert.False(t, p2.IsIt)

	// a later join into a non-empty store is still not "it"
	p3 := s.Admit("p3", dao.DefaultProgression())
	assert.False(t, p3.IsIt)
	assert.Equal(t, "", s.CurrentIt())
}

func TestEmptiedStoreRestartsTag(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Remove("p1")
	assert.Equal(t, "", s.CurrentIt())

	p2 := s.Admit("p2", dao.DefaultProgression())
	assert.True(t, p2.IsIt)
	assert.Equal(t, "p2", s.CurrentIt())
}

func TestAllIsAdmissionOrderedSnapshot(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"c", "a", "b"} {
		s.Admit(id, dao.Progression{Inventory: []string{"x"}})
	}
	s.Remove("a")
	s.Admit("d", dao.DefaultProgression())

	all := s.All()
	ids := make([]string, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c", "b", "d"}, ids)

	// mutating the snapshot does not leak into the store
	all[0].Inventory[0] = "mutated"
	all[0].Position.X = -1
	c, _ := s.Get("c")
	assert.Equal(t, []string{"x"}, c.Inventory)
	assert.NotEqual(t, -1.0, c.Position.X)
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore()
	_, ok := s.Get("ghost")
	assert.False(t, ok)
}
