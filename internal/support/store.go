package support

import "sync"

// Store is the ordered notification list shared by the chat side and the
// employee console. Reads return deep copies.
type Store struct {
	mu    sync.RWMutex
	items []Notification
	index map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Upsert appends a new notification or replaces an existing one in place,
// and returns the resulting snapshot.
func (s *Store) Upsert(n Notification) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n = n.clone()
	if i, ok := s.index[n.ID]; ok {
		s.items[i] = n
	} else {
		s.index[n.ID] = len(s.items)
		s.items = append(s.items, n)
	}
	return s.snapshotLocked()
}

func (s *Store) Get(id string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Notification{}, false
	}
	return s.items[i].clone(), true
}

func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countNotifications(s.items)
}

func (s *Store) snapshotLocked() []Notification {
	out := make([]Notification, len(s.items))
	for i, n := range s.items {
		out[i] = n.clone()
	}
	return out
}

func countNotifications(items []Notification) Counts {
	var c Counts
	for _, n := range items {
		switch n.Status {
		case StatusPending:
			c.Pending++
		case StatusActive:
			c.Active++
		case StatusResolved:
			c.Resolved++
		}
	}
	c.Total = c.Pending + c.Active
	return c
}
