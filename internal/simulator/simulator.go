// Package simulator drives the request store through realistic marketplace
// activity: requests arrive, a worker accepts, collects and completes them,
// some get cancelled. Every store mutation flows out through the sink
// recorder, so a run exercises the full event path end to end.
package simulator

import (
	"math/rand"
	"time"

	"github.com/greenloop/ecopickup/internal/factories"
	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/sink"
	"github.com/greenloop/ecopickup/internal/store"
	"github.com/rs/zerolog"
)

type Simulator struct {
	Config      *models.Config
	Store       *store.RequestStore
	Rng         *rand.Rand
	EventQueue  *models.EventQueue
	CurrentTime time.Time

	log         zerolog.Logger
	factory     *factories.RequestFactory
	eventsCount int
}

func NewSimulator(config *models.Config, st *store.RequestStore, log zerolog.Logger) *Simulator {
	return &Simulator{
		Config:      config,
		Store:       st,
		Rng:         rand.New(rand.NewSource(int64(config.Seed))),
		EventQueue:  models.NewEventQueue(),
		CurrentTime: config.StartDate,
		log:         log,
		factory:     &factories.RequestFactory{},
	}
}

func (s *Simulator) Run() error {
	dest, err := sink.Determine(s.Config, s.log)
	if err != nil {
		return err
	}
	defer dest.Close()

	recorder := sink.NewRecorder(dest, s.log)
	recorder.Attach(s.Store)
	defer recorder.Detach()

	// Seeded pending requests get picked up by the worker too.
	for _, request := range s.Store.AvailableRequests() {
		s.scheduleAccept(request.ID)
	}
	s.scheduleNextArrival()

	s.log.Info().
		Time("start", s.CurrentTime).
		Time("end", s.Config.EndDate).
		Msg("simulation starting")

	for s.Config.Continuous || s.CurrentTime.Before(s.Config.EndDate) {
		for {
			next := s.EventQueue.Peek()
			if next == nil || next.Time.After(s.CurrentTime) {
				break
			}
			s.processEvent(s.EventQueue.Dequeue())
			s.eventsCount++
		}
		s.CurrentTime = s.CurrentTime.Add(time.Minute)
		s.showProgress()
	}

	s.log.Info().Int("events", s.eventsCount).Msg("simulation completed")
	return nil
}

func (s *Simulator) processEvent(event *models.Event) {
	switch event.Type {
	case models.EventNewRequest:
		s.handleNewRequest()
	case models.EventAcceptRequest:
		s.handleAccept(event.Data.(string))
	case models.EventStartPickup:
		s.handleStart(event.Data.(string))
	case models.EventCompletePickup:
		s.handleComplete(event.Data.(string))
	case models.EventCancelRequest:
		s.handleCancel(event.Data.(string))
	}
}

func (s *Simulator) handleNewRequest() {
	created := s.Store.AddRequest(s.factory.CreateInput(s.Config))
	if s.Rng.Float64() < s.Config.CancellationRate {
		s.schedule(models.EventCancelRequest, created.ID, s.minutesBetween(1, 30))
	} else {
		s.scheduleAccept(created.ID)
	}
	s.scheduleNextArrival()
}

func (s *Simulator) handleAccept(requestID string) {
	if !s.Store.AcceptRequest(requestID, s.Config.WorkerID) {
		// Already cancelled or otherwise gone; nothing to do.
		return
	}
	s.schedule(models.EventStartPickup, requestID,
		s.minutesBetween(s.Config.CollectDelayMin, s.Config.CollectDelayMax))
}

func (s *Simulator) handleStart(requestID string) {
	if s.Store.UpdateRequestStatus(requestID, models.StatusInProgress, "") {
		s.schedule(models.EventCompletePickup, requestID, s.minutesBetween(10, 60))
	}
}

func (s *Simulator) handleComplete(requestID string) {
	s.Store.UpdateRequestStatus(requestID, models.StatusCompleted, "")
}

func (s *Simulator) handleCancel(requestID string) {
	s.Store.UpdateRequestStatus(requestID, models.StatusCancelled, "")
}

func (s *Simulator) scheduleAccept(requestID string) {
	s.schedule(models.EventAcceptRequest, requestID,
		s.minutesBetween(s.Config.AcceptDelayMin, s.Config.AcceptDelayMax))
}

func (s *Simulator) scheduleNextArrival() {
	frequency := s.Config.RequestFrequency
	if frequency <= 0 {
		frequency = 1
	}
	// Mean gap of 60/frequency minutes with ±50% jitter.
	minutes := 60.0 / frequency * (0.5 + s.Rng.Float64())
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime.Add(time.Duration(minutes * float64(time.Minute))),
		Type: models.EventNewRequest,
	})
}

func (s *Simulator) schedule(eventType, requestID string, delay time.Duration) {
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime.Add(delay),
		Type: eventType,
		Data: requestID,
	})
}

func (s *Simulator) minutesBetween(min, max int) time.Duration {
	if max <= min {
		return time.Duration(min) * time.Minute
	}
	return time.Duration(min+s.Rng.Intn(max-min+1)) * time.Minute
}

func (s *Simulator) showProgress() {
	if s.eventsCount > 0 && s.eventsCount%100 == 0 {
		s.log.Info().
			Time("current", s.CurrentTime).
			Int("events", s.eventsCount).
			Msg("simulation progress")
	}
}
