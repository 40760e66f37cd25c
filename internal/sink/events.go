package sink

import (
	"fmt"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/xitongsys/parquet-go/schema"
)

const (
	EventRequestAdded    = "RequestAdded"
	EventRequestAccepted = "RequestAccepted"
	EventStatsUpdated    = "StatsUpdated"
)

// RequestEvent is the flattened change record written for every request-level
// store event.
type RequestEvent struct {
	Timestamp       int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType       string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	RequestID       string  `json:"requestId" parquet:"name=requestId,type=BYTE_ARRAY,convertedtype=UTF8"`
	UserID          string  `json:"userId,omitempty" parquet:"name=userId,type=BYTE_ARRAY,convertedtype=UTF8"`
	WorkerID        string  `json:"workerId,omitempty" parquet:"name=workerId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status          string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	Urgency         string  `json:"urgency" parquet:"name=urgency,type=BYTE_ARRAY,convertedtype=UTF8"`
	TotalAmount     float64 `json:"totalAmount" parquet:"name=totalAmount,type=DOUBLE"`
	EstimatedWeight float64 `json:"estimatedWeight" parquet:"name=estimatedWeight,type=DOUBLE"`
	CreatedAt       int64   `json:"createdAt" parquet:"name=createdAt,type=INT64"`
}

// StatsEvent is the derived-aggregate snapshot written on every stats change.
type StatsEvent struct {
	Timestamp        int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType        string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	TodayPickups     int32   `json:"todayPickups" parquet:"name=todayPickups,type=INT32"`
	CompletedPickups int32   `json:"completedPickups" parquet:"name=completedPickups,type=INT32"`
	ActiveRequests   int32   `json:"activeRequests" parquet:"name=activeRequests,type=INT32"`
	TotalRequests    int32   `json:"totalRequests" parquet:"name=totalRequests,type=INT32"`
	Earnings         float64 `json:"earnings" parquet:"name=earnings,type=DOUBLE"`
	MonthlyEarnings  float64 `json:"monthlyEarnings" parquet:"name=monthlyEarnings,type=DOUBLE"`
	WasteProcessedKg float64 `json:"wasteProcessedKg" parquet:"name=wasteProcessedKg,type=DOUBLE"`
	Rating           float64 `json:"rating" parquet:"name=rating,type=DOUBLE"`
	Efficiency       float64 `json:"efficiency" parquet:"name=efficiency,type=DOUBLE"`
}

func NewRequestEvent(eventType string, request models.PickupRequest, at time.Time) RequestEvent {
	return RequestEvent{
		Timestamp:       at.Unix(),
		EventType:       eventType,
		RequestID:       request.ID,
		UserID:          request.UserID,
		WorkerID:        request.AcceptedBy,
		Status:          string(request.Status),
		Urgency:         string(request.Urgency),
		TotalAmount:     request.TotalAmount,
		EstimatedWeight: request.EstimatedWeight,
		CreatedAt:       request.CreatedAt.Unix(),
	}
}

func NewStatsEvent(stats models.WorkerStats, at time.Time) StatsEvent {
	return StatsEvent{
		Timestamp:        at.Unix(),
		EventType:        EventStatsUpdated,
		TodayPickups:     int32(stats.TodayPickups),
		CompletedPickups: int32(stats.CompletedPickups),
		ActiveRequests:   int32(stats.ActiveRequests),
		TotalRequests:    int32(stats.TotalRequests),
		Earnings:         stats.Earnings,
		MonthlyEarnings:  stats.MonthlyEarnings,
		WasteProcessedKg: stats.WasteProcessedKg,
		Rating:           stats.Rating,
		Efficiency:       stats.Efficiency,
	}
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	switch topic {
	case models.TopicRequestEvents:
		return schema.NewSchemaHandlerFromStruct(new(RequestEvent))
	case models.TopicStatsEvents:
		return schema.NewSchemaHandlerFromStruct(new(StatsEvent))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}
