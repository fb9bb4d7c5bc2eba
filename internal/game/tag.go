package game

type TagKind int

const (
	TagNoop TagKind = iota
	TagTransferred
)

func (k TagKind) String() string {
	switch k {
	case TagTransferred:
		return "tagTransferred"
	default:
		return "noop"
	}
}

// TagResult reports the outcome of a tag transfer attempt. From and To are
// only set when Kind is TagTransferred.
type TagResult struct {
	Kind TagKind
	From string
	To   string
}

func (r TagResult) Transferred() bool {
	return r.Kind == TagTransferred
}

// TransferTag moves the "it" role from one player to another. It is a no-op
// unless fromID exists and currently holds the role and toID exists.
func (s *Store) TransferTag(fromID, toID string) TagResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transferTagLocked(fromID, toID)
}

func (s *Store) transferTagLocked(fromID, toID string) TagResult {
	from, ok := s.players[fromID]
	if !ok || !from.IsIt {
		return TagResult{Kind: TagNoop}
	}
	to, ok := s.players[toID]
	if !ok || fromID == toID {
		return TagResult{Kind: TagNoop}
	}

	from.IsIt = false
	to.IsIt = true
	return TagResult{Kind: TagTransferred, From: fromID, To: toID}
}

// CurrentIt returns the id of the player holding the "it" role, or "" when
// nobody does.
func (s *Store) CurrentIt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if s.players[id].IsIt {
			return id
		}
	}
	return ""
}

// Snapshot returns All and CurrentIt read under one lock, so the "it" id
// always agrees with the returned flags.
func (s *Store) Snapshot() ([]Player, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Player, 0, len(s.order))
	it := ""
	for _, id := range s.order {
		p := s.players[id]
		if p.IsIt && it == "" {
			it = id
		}
		out = append(out, p.clone())
	}
	return out, it
}
