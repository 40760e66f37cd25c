package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
)

const (
	activityWindow = 10
	activityLimit  = 6
)

// RecentActivity derives a bounded feed from the most recently updated
// records. Pending requests only show up while untouched since creation,
// which approximates "genuinely new".
func (s *RequestStore) RecentActivity() []models.ActivityEntry {
	s.mu.Lock()
	recent := make([]models.PickupRequest, len(s.requests))
	for i, r := range s.requests {
		recent[i] = r.Clone()
	}
	now := s.now()
	s.mu.Unlock()

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > activityWindow {
		recent = recent[:activityWindow]
	}

	entries := make([]models.ActivityEntry, 0, activityLimit)
	for _, r := range recent {
		if len(entries) == activityLimit {
			break
		}
		switch r.Status {
		case models.StatusCompleted:
			entries = append(entries, models.ActivityEntry{
				Type:      models.ActivityCompleted,
				Title:     fmt.Sprintf("Completed pickup, earned %.2f", r.TotalAmount),
				Amount:    r.TotalAmount,
				When:      relativeTime(now.Sub(r.UpdatedAt)),
				RequestID: r.ID,
			})
		case models.StatusAccepted:
			entries = append(entries, models.ActivityEntry{
				Type:      models.ActivityAccepted,
				Title:     "Accepted pickup request",
				When:      relativeTime(now.Sub(r.UpdatedAt)),
				RequestID: r.ID,
			})
		case models.StatusPending:
			if r.CreatedAt.Equal(r.UpdatedAt) {
				entries = append(entries, models.ActivityEntry{
					Type:      models.ActivityNew,
					Title:     "New pickup request",
					When:      relativeTime(now.Sub(r.CreatedAt)),
					RequestID: r.ID,
				})
			}
		}
	}
	return entries
}

// relativeTime renders a coarse "N units ago" string with no granularity
// below a minute.
func relativeTime(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case d >= time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case d >= time.Minute:
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	default:
		return "Just now"
	}
}
