package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/storage"
	"github.com/greenloop/ecopickup/internal/store"
	"github.com/rs/zerolog"
)

type captureDest struct {
	topics   []string
	messages [][]byte
}

func (c *captureDest) WriteMessage(topic string, msg []byte) error {
	c.topics = append(c.topics, topic)
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureDest) Close() error { return nil }

func recorderConfig() *models.Config {
	return &models.Config{
		InitialRequests:  0,
		WorkerID:         "worker_1",
		WorkerRating:     4.8,
		WorkerEfficiency: 0.95,
		HighUrgencyRatio: 0.2,
	}
}

func TestRecorderForwardsStoreEvents(t *testing.T) {
	cfg := recorderConfig()
	st := store.New(storage.NewMemoryStore(), cfg, zerolog.Nop())

	dest := &captureDest{}
	rec := NewRecorder(dest, zerolog.Nop())
	rec.Attach(st)
	defer rec.Detach()

	req := st.AddRequest(models.NewRequestInput{
		UserID:   "user_1",
		UserName: "Aizhan",
		Items:    []models.WasteItem{{Name: "Plastic", Quantity: 10, Unit: "kg"}},
		Address:  "12 Abay Ave",
		Urgency:  models.UrgencyHigh,
	})
	st.AcceptRequest(req.ID, cfg.WorkerID)

	// add: request_events + stats_events, accept: request_events + stats_events
	if len(dest.topics) != 4 {
		t.Fatalf("got %d messages, want 4: %v", len(dest.topics), dest.topics)
	}
	want := []string{
		models.TopicRequestEvents, models.TopicStatsEvents,
		models.TopicRequestEvents, models.TopicStatsEvents,
	}
	for i, topic := range want {
		if dest.topics[i] != topic {
			t.Errorf("message %d on topic %q, want %q", i, dest.topics[i], topic)
		}
	}

	var added RequestEvent
	if err := json.Unmarshal(dest.messages[0], &added); err != nil {
		t.Fatalf("unmarshal added event: %v", err)
	}
	if added.EventType != EventRequestAdded || added.RequestID != req.ID {
		t.Errorf("added event = %+v", added)
	}

	var accepted RequestEvent
	if err := json.Unmarshal(dest.messages[2], &accepted); err != nil {
		t.Fatalf("unmarshal accepted event: %v", err)
	}
	if accepted.EventType != EventRequestAccepted || accepted.WorkerID != cfg.WorkerID {
		t.Errorf("accepted event = %+v", accepted)
	}
}

func TestRecorderDetachStopsForwarding(t *testing.T) {
	cfg := recorderConfig()
	st := store.New(storage.NewMemoryStore(), cfg, zerolog.Nop())

	dest := &captureDest{}
	rec := NewRecorder(dest, zerolog.Nop())
	rec.Attach(st)
	rec.Detach()

	st.AddRequest(models.NewRequestInput{
		UserID: "user_1",
		Items:  []models.WasteItem{{Name: "Paper", Quantity: 2, Unit: "kg"}},
	})
	if len(dest.topics) != 0 {
		t.Errorf("detached recorder still received %d messages", len(dest.topics))
	}
}

func TestJSONOutputPartitionsByTime(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "events")
	defer out.Close()

	at := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	msg, _ := json.Marshal(NewStatsEvent(models.WorkerStats{Rating: 4.8}, at))
	if err := out.WriteMessage(models.TopicStatsEvents, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	part := filepath.Join(dir, "events", models.TopicStatsEvents, partitionFor(time.Unix(at.Unix(), 0)), "data.json")
	if _, err := os.Stat(part); err != nil {
		t.Fatalf("partition file missing: %v", err)
	}
}
