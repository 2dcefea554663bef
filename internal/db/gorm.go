package db

import (
	"gorm.io/gorm"
)

// GormStore implements EventStore on top of a GORM PostgreSQL connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ev *Event) (string, error) {
	if err := s.db.Create(ev).Error; err != nil {
		return "", err
	}
	return ev.EventID, nil
}

func (s *GormStore) FindByID(eventID string) (*Event, error) {
	var ev Event
	if err := s.db.Where("event_id = ?", eventID).First(&ev).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

func (s *GormStore) Find(f Filter, skip, limit int) ([]Event, error) {
	q := applyFilter(s.db.Model(&Event{}), f).Order("time_stamp DESC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var events []Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *GormStore) Count(f Filter) (int64, error) {
	var count int64
	if err := applyFilter(s.db.Model(&Event{}), f).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormStore) DeleteByID(eventID string) error {
	res := s.db.Where("event_id = ?", eventID).Delete(&Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *GormStore) DeleteAll() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&Event{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) DeleteOlderThan(cutoff string) (int64, error) {
	res := s.db.Where("time_stamp < ?", cutoff).Delete(&Event{})
	return res.RowsAffected, res.Error
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.Topic != "" {
		q = q.Where("topic = ?", f.Topic)
	}
	if f.Keyword != "" {
		// Payload is jsonb; cast to text for the substring match.
		q = q.Where("payload::text ILIKE ?", "%"+escapeLike(f.Keyword)+"%")
	}
	return q
}

// escapeLike neutralizes LIKE metacharacters so a keyword of "100%" matches
// the literal text rather than acting as a wildcard.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
