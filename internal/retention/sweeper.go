package retention

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"eventlistener/internal/db"
)

var (
	sweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventlistener",
		Name:      "retention_sweeps_total",
		Help:      "Total number of retention sweeps that reached the store.",
	})
	eventsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventlistener",
		Name:      "retention_events_deleted_total",
		Help:      "Total number of events removed by retention sweeps.",
	})
)

func InitPrometheusMetrics() {
	prometheus.MustRegister(sweepsTotal, eventsDeletedTotal)
}

// Sweeper deletes events older than the retention window. Triggers are
// debounced so that opportunistic triggers from page views do not turn
// into a full-collection scan on every request.
type Sweeper struct {
	store         db.EventStore
	retentionDays int
	minInterval   time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func NewSweeper(store db.EventStore, retentionDays int) *Sweeper {
	return &Sweeper{
		store:         store,
		retentionDays: retentionDays,
		minInterval:   24 * time.Hour,
		now:           time.Now,
	}
}

// Trigger runs a sweep unless one already ran within the debounce
// interval. lastSweep only advances on success, so a failed delete is
// retried on the next trigger. The mutex is held across the delete;
// overlapping triggers serialize rather than double-scan.
func (s *Sweeper) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) < s.minInterval {
		return
	}

	cutoff := now.UTC().AddDate(0, 0, -s.retentionDays).Format(db.TimeLayout)
	removed, err := s.store.DeleteOlderThan(cutoff)
	if err != nil {
		log.Printf("retention sweep error: %v", err)
		return
	}

	s.lastSweep = now
	sweepsTotal.Inc()
	eventsDeletedTotal.Add(float64(removed))
	if removed > 0 {
		log.Printf("retention sweep removed %d events older than %s", removed, cutoff)
	}
}

// Start launches a background goroutine that triggers a sweep once at
// startup and then once per day.
func (s *Sweeper) Start() {
	go func() {
		s.Trigger()

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			s.Trigger()
		}
	}()
}
