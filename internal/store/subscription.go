package store

import (
	"sync"

	"github.com/greenloop/ecopickup/internal/models"
)

type requestListener struct {
	id int
	fn func(models.PickupRequest)
}

type listListener struct {
	id int
	fn func([]models.PickupRequest)
}

type statsListener struct {
	id int
	fn func(models.WorkerStats)
}

// subscriptions keeps the listener lists for the four subscription points.
// Slices, not maps, so delivery follows registration order.
type subscriptions struct {
	mu              sync.Mutex
	nextID          int
	requestsUpdated []listListener
	statsUpdated    []statsListener
	requestAdded    []requestListener
	requestAccepted []requestListener
}

func (s *subscriptions) onRequestsUpdated(fn func([]models.PickupRequest)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.requestsUpdated = append(s.requestsUpdated, listListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.requestsUpdated {
			if l.id == id {
				s.requestsUpdated = append(s.requestsUpdated[:i], s.requestsUpdated[i+1:]...)
				return
			}
		}
	}
}

func (s *subscriptions) onStatsUpdated(fn func(models.WorkerStats)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.statsUpdated = append(s.statsUpdated, statsListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.statsUpdated {
			if l.id == id {
				s.statsUpdated = append(s.statsUpdated[:i], s.statsUpdated[i+1:]...)
				return
			}
		}
	}
}

func (s *subscriptions) onRequestAdded(fn func(models.PickupRequest)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.requestAdded = append(s.requestAdded, requestListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.requestAdded {
			if l.id == id {
				s.requestAdded = append(s.requestAdded[:i], s.requestAdded[i+1:]...)
				return
			}
		}
	}
}

func (s *subscriptions) onRequestAccepted(fn func(models.PickupRequest)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.requestAccepted = append(s.requestAccepted, requestListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.requestAccepted {
			if l.id == id {
				s.requestAccepted = append(s.requestAccepted[:i], s.requestAccepted[i+1:]...)
				return
			}
		}
	}
}

// Delivery is synchronous and in registration order. A slow listener blocks
// the ones behind it.

func (s *subscriptions) emitRequestsUpdated(requests []models.PickupRequest) {
	s.mu.Lock()
	listeners := make([]listListener, len(s.requestsUpdated))
	copy(listeners, s.requestsUpdated)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(requests)
	}
}

func (s *subscriptions) emitStatsUpdated(stats models.WorkerStats) {
	s.mu.Lock()
	listeners := make([]statsListener, len(s.statsUpdated))
	copy(listeners, s.statsUpdated)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(stats)
	}
}

func (s *subscriptions) emitRequestAdded(request models.PickupRequest) {
	s.mu.Lock()
	listeners := make([]requestListener, len(s.requestAdded))
	copy(listeners, s.requestAdded)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(request)
	}
}

func (s *subscriptions) emitRequestAccepted(request models.PickupRequest) {
	s.mu.Lock()
	listeners := make([]requestListener, len(s.requestAccepted))
	copy(listeners, s.requestAccepted)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(request)
	}
}
