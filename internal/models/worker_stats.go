package models

// WorkerStats is a derived aggregate recomputed from the request collection on
// every read. Rating and Efficiency are seeded, never derived.
type WorkerStats struct {
	TodayPickups     int     `json:"today_pickups"`
	CompletedPickups int     `json:"completed_pickups"`
	ActiveRequests   int     `json:"active_requests"`
	TotalRequests    int     `json:"total_requests"`
	Earnings         float64 `json:"earnings"`
	MonthlyEarnings  float64 `json:"monthly_earnings"`
	WasteProcessedKg float64 `json:"waste_processed_kg"`
	Rating           float64 `json:"rating"`
	Efficiency       float64 `json:"efficiency"`
}

const (
	ActivityCompleted = "completed"
	ActivityAccepted  = "accepted"
	ActivityNew       = "new_request"
)

// ActivityEntry is one line of the human-readable recent-activity feed.
type ActivityEntry struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount,omitempty"`
	When      string  `json:"when"`
	RequestID string  `json:"request_id"`
}
