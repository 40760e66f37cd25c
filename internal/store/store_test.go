package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/storage"
	"github.com/rs/zerolog"
)

func testConfig() *models.Config {
	return &models.Config{
		InitialRequests:  0,
		WorkerRating:     4.8,
		WorkerEfficiency: 0.95,
	}
}

// newTestStore builds a store over in-memory storage with a controllable
// clock. Move the clock through *now.
func newTestStore(t *testing.T, cfg *models.Config) (*RequestStore, storage.Store, *time.Time) {
	t.Helper()
	mem := storage.NewMemoryStore()
	s := New(mem, cfg, zerolog.Nop())
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, mem, &now
}

func sampleInput(urgency models.Urgency, amount float64) models.NewRequestInput {
	return models.NewRequestInput{
		UserID:      "user_1",
		UserName:    "Asha Varma",
		UserRating:  4.5,
		Items:       []models.WasteItem{{Name: "Plastic", Quantity: 10, Unit: "kg"}},
		TotalAmount: amount,
		Address:     "14 Lakeview Road",
		DistanceKm:  2.5,
		Urgency:     urgency,
		PickupType:  models.PickupInstant,

		EstimatedWeight: 10,
	}
}

func TestAddRequestDefaults(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	created := s.AddRequest(sampleInput(models.UrgencyMedium, 80))

	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.PaymentStatus != models.PaymentPending {
		t.Errorf("payment status = %q, want pending", created.PaymentStatus)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps differ at creation: created %v updated %v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestAvailableRequestsOrdering(t *testing.T) {
	s, _, now := newTestStore(t, testConfig())

	// Created at increasing timestamps: low, high, medium, high.
	urgencies := []models.Urgency{models.UrgencyLow, models.UrgencyHigh, models.UrgencyMedium, models.UrgencyHigh}
	ids := make([]string, len(urgencies))
	for i, u := range urgencies {
		ids[i] = s.AddRequest(sampleInput(u, 50)).ID
		*now = now.Add(time.Minute)
	}

	got := s.AvailableRequests()
	want := []string{ids[3], ids[1], ids[2], ids[0]} // high(later), high(earlier), medium, low
	if len(got) != len(want) {
		t.Fatalf("got %d requests, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d: got %s urgency %s, want %s", i, got[i].ID, got[i].Urgency, want[i])
		}
	}
}

func TestAvailableRequestsPendingOnly(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	kept := s.AddRequest(sampleInput(models.UrgencyLow, 10))
	accepted := s.AddRequest(sampleInput(models.UrgencyHigh, 20))
	if !s.AcceptRequest(accepted.ID, "worker_9") {
		t.Fatal("accept failed")
	}

	for _, r := range s.AvailableRequests() {
		if r.Status != models.StatusPending {
			t.Errorf("non-pending request %s (%s) in available list", r.ID, r.Status)
		}
		if r.ID == accepted.ID {
			t.Errorf("accepted request still listed as available")
		}
	}
	if got := s.AvailableRequests(); len(got) != 1 || got[0].ID != kept.ID {
		t.Errorf("available = %v, want just %s", got, kept.ID)
	}
}

func TestAcceptRequestGuard(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	created := s.AddRequest(sampleInput(models.UrgencyMedium, 60))

	if ok := s.AcceptRequest("no-such-id", "worker_9"); ok {
		t.Error("accept of unknown id should fail")
	}
	if ok := s.AcceptRequest(created.ID, "worker_9"); !ok {
		t.Fatal("accept of pending request should succeed")
	}

	got := s.RequestsByStatus(models.StatusAccepted)
	if len(got) != 1 || got[0].AcceptedBy != "worker_9" {
		t.Fatalf("accepted request not recorded, got %+v", got)
	}

	// A second accept is a no-op: the request is no longer pending.
	before := got[0]
	if ok := s.AcceptRequest(created.ID, "worker_7"); ok {
		t.Error("accept of non-pending request should fail")
	}
	after := s.RequestsByStatus(models.StatusAccepted)[0]
	if after.AcceptedBy != before.AcceptedBy || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("failed accept mutated the record: %+v -> %+v", before, after)
	}
}

func TestUpdateRequestStatusCompletion(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	created := s.AddRequest(sampleInput(models.UrgencyHigh, 80))

	s.AcceptRequest(created.ID, "worker_9")
	if !s.UpdateRequestStatus(created.ID, models.StatusInProgress, "") {
		t.Fatal("accepted -> in-progress should be allowed")
	}
	if !s.UpdateRequestStatus(created.ID, models.StatusCompleted, "left at gate") {
		t.Fatal("in-progress -> completed should be allowed")
	}

	got := s.RequestsByStatus(models.StatusCompleted)[0]
	if got.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment status = %q, want paid", got.PaymentStatus)
	}
	if got.CompletedAt == nil {
		t.Error("completed request missing CompletedAt")
	}
	if got.Notes != "left at gate" {
		t.Errorf("notes = %q", got.Notes)
	}
}

func TestUpdateRequestStatusGuardedRejectsIllegalEdges(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	created := s.AddRequest(sampleInput(models.UrgencyLow, 30))

	if s.UpdateRequestStatus(created.ID, models.StatusCompleted, "") {
		t.Error("pending -> completed should be rejected")
	}
	if s.UpdateRequestStatus("missing", models.StatusCancelled, "") {
		t.Error("unknown id should be rejected")
	}
	if !s.UpdateRequestStatus(created.ID, models.StatusCancelled, "") {
		t.Error("pending -> cancelled should be allowed")
	}
	if s.UpdateRequestStatus(created.ID, models.StatusPending, "") {
		t.Error("cancelled -> pending should be rejected")
	}
}

func TestUpdateRequestStatusLegacyModeIsUnguarded(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyTransitions = true
	s, _, _ := newTestStore(t, cfg)
	created := s.AddRequest(sampleInput(models.UrgencyLow, 30))

	if !s.UpdateRequestStatus(created.ID, models.StatusCompleted, "") {
		t.Fatal("legacy mode must accept pending -> completed")
	}
	// Repeat completion on an already-completed record still succeeds.
	if !s.UpdateRequestStatus(created.ID, models.StatusCompleted, "") {
		t.Error("legacy mode must accept completed -> completed")
	}
	if !s.UpdateRequestStatus(created.ID, models.StatusPending, "") {
		t.Error("legacy mode must accept completed -> pending")
	}
}

func TestRequestsByStatusOrdering(t *testing.T) {
	s, _, now := newTestStore(t, testConfig())

	first := s.AddRequest(sampleInput(models.UrgencyLow, 10))
	*now = now.Add(time.Minute)
	second := s.AddRequest(sampleInput(models.UrgencyLow, 20))
	*now = now.Add(time.Minute)

	// Touching the first request makes it the most recently updated.
	s.AcceptRequest(first.ID, "worker_9")

	all := s.RequestsByStatus(models.StatusAll)
	if len(all) != 2 {
		t.Fatalf("got %d requests, want 2", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("order = [%s %s], want [%s %s]", all[0].ID, all[1].ID, first.ID, second.ID)
	}

	if got := s.RequestsByStatus(""); len(got) != 2 {
		t.Errorf("empty status filter returned %d, want 2", len(got))
	}
}

func TestWorkerStatsMonthlyWindow(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyTransitions = true
	s, _, now := newTestStore(t, cfg)

	// Completed in February.
	*now = time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC)
	old := s.AddRequest(sampleInput(models.UrgencyLow, 100))
	s.UpdateRequestStatus(old.ID, models.StatusCompleted, "")

	// Completed in March.
	*now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	current := s.AddRequest(sampleInput(models.UrgencyLow, 80))
	s.UpdateRequestStatus(current.ID, models.StatusCompleted, "")

	stats := s.WorkerStats()
	if stats.MonthlyEarnings != 80 {
		t.Errorf("MonthlyEarnings = %v, want 80 (February completion excluded)", stats.MonthlyEarnings)
	}
	if stats.Earnings != 80 {
		t.Errorf("Earnings (today) = %v, want 80", stats.Earnings)
	}
	if stats.CompletedPickups != 2 {
		t.Errorf("CompletedPickups = %d, want 2", stats.CompletedPickups)
	}
	if stats.TodayPickups != 1 {
		t.Errorf("TodayPickups = %d, want 1", stats.TodayPickups)
	}
	if stats.WasteProcessedKg != 20 {
		t.Errorf("WasteProcessedKg = %v, want 20", stats.WasteProcessedKg)
	}
	if stats.Rating != 4.8 || stats.Efficiency != 0.95 {
		t.Errorf("seeded rating/efficiency changed: %v/%v", stats.Rating, stats.Efficiency)
	}
}

func TestWorkerStatsActiveCount(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	pending := s.AddRequest(sampleInput(models.UrgencyLow, 10))
	accepted := s.AddRequest(sampleInput(models.UrgencyLow, 20))
	inProgress := s.AddRequest(sampleInput(models.UrgencyLow, 30))
	cancelled := s.AddRequest(sampleInput(models.UrgencyLow, 40))

	s.AcceptRequest(accepted.ID, "worker_9")
	s.AcceptRequest(inProgress.ID, "worker_9")
	s.UpdateRequestStatus(inProgress.ID, models.StatusInProgress, "")
	s.UpdateRequestStatus(cancelled.ID, models.StatusCancelled, "")

	stats := s.WorkerStats()
	if stats.ActiveRequests != 3 {
		t.Errorf("ActiveRequests = %d, want 3 (pending %s, accepted %s, in-progress %s)",
			stats.ActiveRequests, pending.ID, accepted.ID, inProgress.ID)
	}
	if stats.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", stats.TotalRequests)
	}
}

func TestEmissionOrderOnAdd(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	var order []string
	s.OnRequestAdded(func(models.PickupRequest) { order = append(order, "added") })
	s.OnRequestsUpdated(func(list []models.PickupRequest) {
		if len(list) != 1 {
			t.Errorf("requests-updated payload has %d entries, want 1", len(list))
		}
		order = append(order, "requests")
	})
	s.OnStatsUpdated(func(models.WorkerStats) { order = append(order, "stats") })

	s.AddRequest(sampleInput(models.UrgencyLow, 10))

	want := []string{"added", "requests", "stats"}
	if len(order) != len(want) {
		t.Fatalf("emissions = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("emissions = %v, want %v", order, want)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	calls := 0
	unsubscribe := s.OnRequestAdded(func(models.PickupRequest) { calls++ })
	s.AddRequest(sampleInput(models.UrgencyLow, 10))
	unsubscribe()
	s.AddRequest(sampleInput(models.UrgencyLow, 20))

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestFailedAcceptEmitsNothing(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	created := s.AddRequest(sampleInput(models.UrgencyLow, 10))
	s.AcceptRequest(created.ID, "worker_9")

	fired := false
	s.OnRequestAccepted(func(models.PickupRequest) { fired = true })
	s.OnRequestsUpdated(func([]models.PickupRequest) { fired = true })

	s.AcceptRequest(created.ID, "worker_7")
	if fired {
		t.Error("failed accept must not emit events")
	}
}

func TestConsumersReceiveCopies(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	created := s.AddRequest(sampleInput(models.UrgencyLow, 10))

	list := s.AvailableRequests()
	list[0].Items[0].Name = "Tampered"
	list[0].Status = models.StatusCancelled

	fresh := s.AvailableRequests()
	if len(fresh) != 1 || fresh[0].ID != created.ID {
		t.Fatal("request disappeared")
	}
	if fresh[0].Items[0].Name != "Plastic" {
		t.Error("external mutation reached the stored collection")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	cfg := testConfig()
	mem := storage.NewMemoryStore()
	s := New(mem, cfg, zerolog.Nop())

	s.AddRequest(sampleInput(models.UrgencyHigh, 120))
	created := s.AddRequest(sampleInput(models.UrgencyLow, 40))
	s.AcceptRequest(created.ID, "worker_9")

	before := s.RequestsByStatus(models.StatusAll)

	// Simulated restart: a fresh store over the same storage.
	reloaded := New(mem, cfg, zerolog.Nop())
	after := reloaded.RequestsByStatus(models.StatusAll)

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)
	if string(a) != string(b) {
		t.Errorf("collections differ after reload:\nbefore %s\nafter  %s", b, a)
	}
}

func TestSeedOnFirstLoad(t *testing.T) {
	cfg := testConfig()
	cfg.InitialRequests = 4
	mem := storage.NewMemoryStore()

	s := New(mem, cfg, zerolog.Nop())
	if got := len(s.RequestsByStatus(models.StatusAll)); got != 4 {
		t.Fatalf("seeded %d requests, want 4", got)
	}

	// The seed is persisted immediately: a second store sees the same ids.
	again := New(mem, cfg, zerolog.Nop())
	first := s.RequestsByStatus(models.StatusAll)
	second := again.RequestsByStatus(models.StatusAll)
	if len(second) != len(first) {
		t.Fatalf("reload seeded again: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("seed not persisted: id mismatch at %d", i)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())
	a := s.AddRequest(sampleInput(models.UrgencyLow, 10))
	s.AddRequest(sampleInput(models.UrgencyLow, 20))

	if !s.RemoveRequest(a.ID) {
		t.Fatal("remove of existing id should succeed")
	}
	if s.RemoveRequest(a.ID) {
		t.Error("remove of missing id should fail")
	}
	if got := len(s.RequestsByStatus(models.StatusAll)); got != 1 {
		t.Fatalf("have %d requests, want 1", got)
	}

	s.ClearAll()
	if got := len(s.RequestsByStatus(models.StatusAll)); got != 0 {
		t.Errorf("have %d requests after clear, want 0", got)
	}
	if stats := s.WorkerStats(); stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d after clear", stats.TotalRequests)
	}
}

// End-to-end lifecycle mirroring the mobile flow: submit, browse, accept,
// complete, read stats.
func TestLifecycleEndToEnd(t *testing.T) {
	s, _, _ := newTestStore(t, testConfig())

	created := s.AddRequest(models.NewRequestInput{
		UserName:        "Bina Rao",
		Items:           []models.WasteItem{{Name: "Plastic", Quantity: 10, Unit: "kg"}},
		TotalAmount:     80,
		EstimatedWeight: 10,
		Urgency:         models.UrgencyMedium,
	})

	available := s.AvailableRequests()
	if len(available) != 1 || available[0].ID != created.ID || available[0].Status != models.StatusPending {
		t.Fatalf("available = %+v", available)
	}

	if !s.AcceptRequest(created.ID, "worker_9") {
		t.Fatal("accept failed")
	}
	if got := s.AvailableRequests(); len(got) != 0 {
		t.Fatalf("available after accept = %d, want 0", len(got))
	}

	if !s.UpdateRequestStatus(created.ID, models.StatusInProgress, "") {
		t.Fatal("start failed")
	}
	if !s.UpdateRequestStatus(created.ID, models.StatusCompleted, "") {
		t.Fatal("complete failed")
	}

	stats := s.WorkerStats()
	if stats.CompletedPickups != 1 {
		t.Errorf("CompletedPickups = %d, want 1", stats.CompletedPickups)
	}
	if stats.Earnings != 80 {
		t.Errorf("Earnings = %v, want 80", stats.Earnings)
	}
}
