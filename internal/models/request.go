package models

import "time"

type WasteItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type PickupRequest struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	UserName        string        `json:"user_name"`
	UserRating      float64       `json:"user_rating"`
	Items           []WasteItem   `json:"items"`
	TotalAmount     float64       `json:"total_amount"`
	Address         string        `json:"address"`
	DistanceKm      float64       `json:"distance_km"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	Urgency         Urgency       `json:"urgency"`
	Status          Status        `json:"status"`
	PickupType      PickupType    `json:"pickup_type"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	EstimatedWeight float64       `json:"estimated_weight"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	AcceptedBy      string        `json:"accepted_by,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// Clone returns a value copy that shares no mutable state with the original,
// so callers can't reach back into the store's collection.
func (r PickupRequest) Clone() PickupRequest {
	out := r
	if r.Items != nil {
		out.Items = make([]WasteItem, len(r.Items))
		copy(out.Items, r.Items)
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// NewRequestInput carries the caller-supplied fields of a pickup request.
// Identifier, status, payment status and timestamps are assigned by the store.
type NewRequestInput struct {
	UserID          string      `json:"user_id"`
	UserName        string      `json:"user_name"`
	UserRating      float64     `json:"user_rating"`
	Items           []WasteItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Address         string      `json:"address"`
	DistanceKm      float64     `json:"distance_km"`
	ScheduledAt     time.Time   `json:"scheduled_at"`
	Urgency         Urgency     `json:"urgency"`
	PickupType      PickupType  `json:"pickup_type"`
	EstimatedWeight float64     `json:"estimated_weight"`
	Notes           string      `json:"notes,omitempty"`
}
