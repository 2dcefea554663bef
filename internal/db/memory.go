package db

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory EventStore used by tests and local runs
// without a database. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	nextID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Insert(ev *Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ev
	stored.ID = s.nextID
	s.nextID++
	s.events = append(s.events, stored)
	return stored.EventID, nil
}

func (s *MemoryStore) FindByID(eventID string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].EventID == eventID {
			ev := s.events[i]
			return &ev, nil
		}
	}
	return nil, ErrEventNotFound
}

func (s *MemoryStore) Find(f Filter, skip, limit int) ([]Event, error) {
	s.mu.RLock()
	matched := s.filtered(f)
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TimeStamp > matched[j].TimeStamp
	})

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(f Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filtered(f))), nil
}

func (s *MemoryStore) DeleteByID(eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	found := false
	for _, ev := range s.events {
		if ev.EventID == eventID {
			found = true
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	if !found {
		return ErrEventNotFound
	}
	return nil
}

func (s *MemoryStore) DeleteAll() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.events))
	s.events = nil
	return n, nil
}

func (s *MemoryStore) DeleteOlderThan(cutoff string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, ev := range s.events {
		if ev.TimeStamp < cutoff {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	return removed, nil
}

// filtered returns matching events as a copy; callers must hold the lock.
func (s *MemoryStore) filtered(f Filter) []Event {
	keyword := strings.ToLower(f.Keyword)
	matched := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if f.Topic != "" && ev.Topic != f.Topic {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(string(ev.Payload)), keyword) {
			continue
		}
		matched = append(matched, ev)
	}
	return matched
}
