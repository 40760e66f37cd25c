package factories

import (
	"testing"

	"github.com/greenloop/ecopickup/internal/models"
)

func TestCreateRequestDefaults(t *testing.T) {
	factory := &RequestFactory{}
	cfg := &models.Config{HighUrgencyRatio: 0.2}

	for i := 0; i < 20; i++ {
		req := factory.CreateRequest(cfg)

		if req.ID == "" || req.UserID == "" {
			t.Fatalf("missing ids: %+v", req)
		}
		if req.Status != models.StatusPending {
			t.Errorf("seeded request status = %q, want pending", req.Status)
		}
		if req.PaymentStatus != models.PaymentPending {
			t.Errorf("payment status = %q, want pending", req.PaymentStatus)
		}
		if !req.CreatedAt.Equal(req.UpdatedAt) {
			t.Error("seeded request should be untouched since creation")
		}
		if len(req.Items) < 1 || len(req.Items) > 3 {
			t.Errorf("item count %d outside [1, 3]", len(req.Items))
		}

		var weight float64
		for _, item := range req.Items {
			if item.Unit != "kg" {
				t.Errorf("unit = %q, want kg", item.Unit)
			}
			if _, ok := materialRates[item.Name]; !ok {
				t.Errorf("unknown material %q", item.Name)
			}
			weight += item.Quantity
		}
		if req.EstimatedWeight != weight {
			t.Errorf("estimated weight %v, want sum of quantities %v", req.EstimatedWeight, weight)
		}
		if req.TotalAmount <= 0 {
			t.Errorf("total amount %v not positive", req.TotalAmount)
		}
	}
}

func TestCreateBatchDistinctIDs(t *testing.T) {
	factory := &RequestFactory{}
	cfg := &models.Config{HighUrgencyRatio: 0.2}

	batch := factory.CreateBatch(cfg, 25)
	seen := make(map[string]bool, len(batch))
	for _, req := range batch {
		if seen[req.ID] {
			t.Fatalf("duplicate id %s", req.ID)
		}
		seen[req.ID] = true
	}
}
