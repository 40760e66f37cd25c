package models

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"

	// StatusAll is the wildcard filter accepted by RequestsByStatus.
	StatusAll Status = "all"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank orders urgencies for the available-request sort: high > medium > low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PickupType string

const (
	PickupInstant   PickupType = "instant"
	PickupScheduled PickupType = "scheduled"
	PickupDaily     PickupType = "daily"
)

const (
	TopicRequestEvents = "request_events"
	TopicStatsEvents   = "stats_events"
)
