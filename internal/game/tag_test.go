package game

import (
	"testing"

	"tagarena/internal/dao"

	"github.com/stretchr/testify/assert"
)

func TestTransferTag(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())

	res := s.TransferTag("p1", "p2")
	assert.Equal(t, TagResult{Kind: TagTransferred, From: "p1", To: "p2"}, res)
	assert.True(t, res.Transferred())
	assert.Equal(t, "p2", s.CurrentIt())
	assert.Equal(t, 1, itCount(s))
}

func TestTransferTagGuards(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())
	s.Admit("p3", dao.DefaultProgression())

	cases := []struct {
		name     string
		from, to string
	}{
		{"from not it", "p2", "p3"},
		{"unknown from", "ghost", "p2"},
		{"unknown to", "p1", "ghost"},
		{"self", "p1", "p1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.TransferTag(tc.from, tc.to)
			assert.Equal(t, TagNoop, res.Kind)
			assert.False(t, res.Transferred())
			assert.Equal(t, "p1", s.CurrentIt())
			assert.Equal(t, 1, itCount(s))
		})
	}
}

func TestTransferTagStaleDuplicate(t *testing.T) {
	s := newTestStore()
	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())

	assert.True(t, s.TransferTag("p1", "p2").Transferred())
	assert.False(t, s.TransferTag("p1", "p2").Transferred())
	assert.Equal(t, "p2", s.CurrentIt())
}

func TestTagKindString(t *testing.T) {
	assert.Equal(t, "tagTransferred", TagTransferred.String())
	assert.Equal(t, "noop", TagNoop.String())
}

func TestSnapshotAgreesWithFlags(t *testing.T) {
	s := newTestStore()
	players, it := s.Snapshot()
	assert.Empty(t, players)
	assert.Equal(t, "", it)

	s.Admit("p1", dao.DefaultProgression())
	s.Admit("p2", dao.DefaultProgression())
	s.TransferTag("p1", "p2")

	players, it = s.Snapshot()
	assert.Equal(t, "p2", it)
	assert.Len(t, players, 2)
	for _, p := range players {
		assert.Equal(t, p.ID == it, p.IsIt, p.ID)
	}
}
