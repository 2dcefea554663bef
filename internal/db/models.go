package db

import (
	"gorm.io/datatypes"
)

// TimeLayout is the fixed-width layout every stored TimeStamp follows.
// Keeping the width fixed makes string comparison on time_stamp agree
// with chronological order, which both sorting and retention rely on.
const TimeLayout = "2006-01-02T15:04:05.000"

// Event represents a single received webhook notification as stored in
// PostgreSQL. Records are insert-only; the only mutation is deletion.
type Event struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// EventID is the producer-supplied identifier with dashes stripped.
	// Producers do not guarantee uniqueness, so it is indexed but not unique.
	EventID string `gorm:"index" json:"id"`

	// TimeStamp is the event occurrence time when the producer supplied
	// one, otherwise the receipt time. Fixed-width TimeLayout prefix.
	TimeStamp string `gorm:"index" json:"timeStamp"`

	Type  string `json:"type"`
	Topic string `gorm:"index" json:"topic"`

	// Facts is the pretty-printed topic-specific detail block.
	Facts string `json:"facts"`

	// Geolocation is the uppercase host-label tag derived from the
	// event's reference URL, or "N/A" when none could be derived.
	Geolocation string `json:"geolocation"`

	// Payload holds the complete original request body for audit and
	// full-text search.
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`

	CorrelationID   string `json:"correlationId,omitempty"`
	ClientIPAddress string `json:"clientIpAddress,omitempty"`
}
