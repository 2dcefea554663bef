package db

import "errors"

// ErrEventNotFound is returned by lookups and single-record deletes when
// no event matches the given id.
var ErrEventNotFound = errors.New("event not found")

// Filter narrows Find and Count. Zero-value fields are ignored.
type Filter struct {
	// Topic requires an exact topic match.
	Topic string

	// Keyword requires a case-insensitive substring match against the
	// stored payload text.
	Keyword string
}

// EventStore is the persistence surface for event records. Results from
// Find are always ordered by time_stamp descending. A limit <= 0 means
// no limit.
type EventStore interface {
	Insert(ev *Event) (string, error)
	FindByID(eventID string) (*Event, error)
	Find(f Filter, skip, limit int) ([]Event, error)
	Count(f Filter) (int64, error)
	DeleteByID(eventID string) error
	DeleteAll() (int64, error)
	DeleteOlderThan(cutoff string) (int64, error)
}
