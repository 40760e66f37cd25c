package store

import (
	"time"

	"github.com/greenloop/ecopickup/internal/models"
)

// recomputeStatsLocked rebuilds the derived aggregate with a full scan of the
// collection. "Today" and "this month" are evaluated against the wall clock
// at the time of the call. Rating and efficiency carry over untouched.
func (s *RequestStore) recomputeStatsLocked() {
	now := s.now()
	stats := models.WorkerStats{
		Rating:     s.stats.Rating,
		Efficiency: s.stats.Efficiency,
	}
	stats.TotalRequests = len(s.requests)

	for _, r := range s.requests {
		switch r.Status {
		case models.StatusPending, models.StatusAccepted, models.StatusInProgress:
			stats.ActiveRequests++
		case models.StatusCompleted:
			stats.CompletedPickups++
			stats.WasteProcessedKg += r.EstimatedWeight

			// CompletedAt falls back to CreatedAt for records persisted by
			// older builds that never stamped completion.
			completedAt := r.CreatedAt
			if r.CompletedAt != nil {
				completedAt = *r.CompletedAt
			}
			if sameDay(completedAt, now) {
				stats.TodayPickups++
				stats.Earnings += r.TotalAmount
			}
			if completedAt.Year() == now.Year() && completedAt.Month() == now.Month() {
				stats.MonthlyEarnings += r.TotalAmount
			}
		}
	}
	s.stats = stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
