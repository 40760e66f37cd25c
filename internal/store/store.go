// Package store implements the in-process source of truth for pickup
// requests: an ordered collection persisted to device-style key-value
// storage, a derived worker-statistics aggregate, and a synchronous
// publish/subscribe surface that views re-render from.
package store

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/greenloop/ecopickup/internal/factories"
	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/storage"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog"
)

const (
	requestsKey = "ecopickup:pickup_requests"
	statsKey    = "ecopickup:worker_stats"
)

type RequestStore struct {
	mu          sync.Mutex
	storage     storage.Store
	cfg         *models.Config
	log         zerolog.Logger
	requests    []models.PickupRequest
	stats       models.WorkerStats
	transitions TransitionTable
	subs        subscriptions

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// New loads the persisted collection, seeding sample data when nothing
// usable is stored, and recomputes stats from scratch. The persisted stats
// snapshot is advisory: only the seeded rating and efficiency survive it.
func New(st storage.Store, cfg *models.Config, log zerolog.Logger) *RequestStore {
	s := &RequestStore{
		storage:     st,
		cfg:         cfg,
		log:         log,
		transitions: DefaultTransitions(),
		now:         time.Now,
	}
	s.load()
	return s
}

func (s *RequestStore) load() {
	data, err := s.storage.Get(requestsKey)
	if err == nil {
		if jerr := json.Unmarshal(data, &s.requests); jerr != nil {
			err = jerr
		}
	}
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error().Err(err).Msg("persisted requests unreadable, falling back to seed data")
		}
		factory := &factories.RequestFactory{}
		s.requests = factory.CreateBatch(s.cfg, s.cfg.InitialRequests)
		s.persistRequestsLocked()
	}

	s.stats = models.WorkerStats{
		Rating:     s.cfg.WorkerRating,
		Efficiency: s.cfg.WorkerEfficiency,
	}
	if data, err := s.storage.Get(statsKey); err == nil {
		var snapshot models.WorkerStats
		if json.Unmarshal(data, &snapshot) == nil {
			s.stats.Rating = snapshot.Rating
			s.stats.Efficiency = snapshot.Efficiency
		}
	}
	s.recomputeStatsLocked()
	s.persistStatsLocked()
}

// AddRequest creates a pending request from the supplied fields, inserts it
// at the front of the collection (newest first) and returns a copy of the
// created record. Persistence failures are logged, never surfaced.
func (s *RequestStore) AddRequest(input models.NewRequestInput) *models.PickupRequest {
	s.mu.Lock()
	now := s.now()
	items := make([]models.WasteItem, len(input.Items))
	copy(items, input.Items)
	request := models.PickupRequest{
		ID:              cuid.New(),
		UserID:          input.UserID,
		UserName:        input.UserName,
		UserRating:      input.UserRating,
		Items:           items,
		TotalAmount:     input.TotalAmount,
		Address:         input.Address,
		DistanceKm:      input.DistanceKm,
		ScheduledAt:     input.ScheduledAt,
		Urgency:         input.Urgency,
		Status:          models.StatusPending,
		PickupType:      input.PickupType,
		PaymentStatus:   models.PaymentPending,
		EstimatedWeight: input.EstimatedWeight,
		CreatedAt:       now,
		UpdatedAt:       now,
		Notes:           input.Notes,
	}
	s.requests = append([]models.PickupRequest{request}, s.requests...)
	s.persistRequestsLocked()
	s.recomputeStatsLocked()
	s.persistStatsLocked()

	added := request.Clone()
	available := s.availableLocked()
	stats := s.stats
	s.mu.Unlock()

	s.subs.emitRequestAdded(added)
	s.subs.emitRequestsUpdated(available)
	s.subs.emitStatsUpdated(stats)

	out := added.Clone()
	return &out
}

// AvailableRequests returns the pending requests ordered by urgency (high
// first) and, within equal urgency, by creation time (newest first).
func (s *RequestStore) AvailableRequests() []models.PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked()
}

func (s *RequestStore) availableLocked() []models.PickupRequest {
	available := make([]models.PickupRequest, 0)
	for _, r := range s.requests {
		if r.Status == models.StatusPending {
			available = append(available, r.Clone())
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		if available[i].Urgency.Rank() != available[j].Urgency.Rank() {
			return available[i].Urgency.Rank() > available[j].Urgency.Rank()
		}
		return available[i].CreatedAt.After(available[j].CreatedAt)
	})
	return available
}

// RequestsByStatus returns requests matching the given status ordered by
// last update, newest first. An empty status or StatusAll matches everything.
func (s *RequestStore) RequestsByStatus(status models.Status) []models.PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.PickupRequest, 0)
	for _, r := range s.requests {
		if status == "" || status == models.StatusAll || r.Status == status {
			matched = append(matched, r.Clone())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return matched
}

// AcceptRequest moves a pending request to accepted and records the worker.
// It reports false, without side effects, when the id is unknown or the
// request is not pending.
func (s *RequestStore) AcceptRequest(requestID, workerID string) bool {
	s.mu.Lock()
	idx := s.indexLocked(requestID)
	if idx < 0 || s.requests[idx].Status != models.StatusPending {
		s.mu.Unlock()
		return false
	}
	request := &s.requests[idx]
	request.Status = models.StatusAccepted
	request.AcceptedBy = workerID
	request.UpdatedAt = s.now()
	s.persistRequestsLocked()
	s.recomputeStatsLocked()
	s.persistStatsLocked()

	accepted := request.Clone()
	available := s.availableLocked()
	stats := s.stats
	s.mu.Unlock()

	s.subs.emitRequestAccepted(accepted)
	s.subs.emitRequestsUpdated(available)
	s.subs.emitStatsUpdated(stats)
	return true
}

// UpdateRequestStatus applies a status change routed through the transition
// table; illegal edges are rejected unless legacy mode is configured.
// Completing a request stamps CompletedAt and marks the payment paid.
func (s *RequestStore) UpdateRequestStatus(requestID string, status models.Status, notes string) bool {
	s.mu.Lock()
	idx := s.indexLocked(requestID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	request := &s.requests[idx]
	if !s.cfg.LegacyTransitions && !s.transitions.Allowed(request.Status, status) {
		from := request.Status
		s.mu.Unlock()
		s.log.Warn().
			Str("request_id", requestID).
			Str("from", string(from)).
			Str("to", string(status)).
			Msg("rejected status transition")
		return false
	}

	now := s.now()
	request.Status = status
	request.UpdatedAt = now
	if notes != "" {
		request.Notes = notes
	}
	if status == models.StatusCompleted {
		completedAt := now
		request.CompletedAt = &completedAt
		request.PaymentStatus = models.PaymentPaid
	}
	s.persistRequestsLocked()
	s.recomputeStatsLocked()
	s.persistStatsLocked()

	available := s.availableLocked()
	stats := s.stats
	s.mu.Unlock()

	s.subs.emitRequestsUpdated(available)
	s.subs.emitStatsUpdated(stats)
	return true
}

// RemoveRequest deletes a request unconditionally. No confirmation, no undo.
func (s *RequestStore) RemoveRequest(requestID string) bool {
	s.mu.Lock()
	idx := s.indexLocked(requestID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	s.persistRequestsLocked()
	s.recomputeStatsLocked()
	s.persistStatsLocked()

	available := s.availableLocked()
	stats := s.stats
	s.mu.Unlock()

	s.subs.emitRequestsUpdated(available)
	s.subs.emitStatsUpdated(stats)
	return true
}

// ClearAll empties the collection.
func (s *RequestStore) ClearAll() {
	s.mu.Lock()
	s.requests = nil
	s.persistRequestsLocked()
	s.recomputeStatsLocked()
	s.persistStatsLocked()

	available := s.availableLocked()
	stats := s.stats
	s.mu.Unlock()

	s.subs.emitRequestsUpdated(available)
	s.subs.emitStatsUpdated(stats)
}

// WorkerStats recomputes the aggregate from the current collection and
// returns a copy.
func (s *RequestStore) WorkerStats() models.WorkerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeStatsLocked()
	return s.stats
}

// OnRequestsUpdated subscribes to the pending-list payload emitted after
// every mutation. The returned func unsubscribes.
func (s *RequestStore) OnRequestsUpdated(fn func([]models.PickupRequest)) func() {
	return s.subs.onRequestsUpdated(fn)
}

func (s *RequestStore) OnStatsUpdated(fn func(models.WorkerStats)) func() {
	return s.subs.onStatsUpdated(fn)
}

func (s *RequestStore) OnRequestAdded(fn func(models.PickupRequest)) func() {
	return s.subs.onRequestAdded(fn)
}

func (s *RequestStore) OnRequestAccepted(fn func(models.PickupRequest)) func() {
	return s.subs.onRequestAccepted(fn)
}

func (s *RequestStore) indexLocked(requestID string) int {
	for i := range s.requests {
		if s.requests[i].ID == requestID {
			return i
		}
	}
	return -1
}

func (s *RequestStore) persistRequestsLocked() {
	data, err := json.Marshal(s.requests)
	if err == nil {
		err = s.storage.Set(requestsKey, data)
	}
	if err != nil {
		// The in-memory mutation stands; callers never see storage
		// write failures.
		s.log.Error().Err(err).Msg("failed to persist request collection")
	}
}

func (s *RequestStore) persistStatsLocked() {
	data, err := json.Marshal(s.stats)
	if err == nil {
		err = s.storage.Set(statsKey, data)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist stats snapshot")
	}
}
