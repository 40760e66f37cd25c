package factories

import (
	"math/rand"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var fake = faker.New()

// materialRates maps waste materials to an indicative payout per kg.
var materialRates = map[string]float64{
	"Plastic":   8.0,
	"Paper":     5.0,
	"Cardboard": 6.0,
	"Glass":     4.0,
	"Metal":     25.0,
	"E-Waste":   40.0,
	"Organic":   2.0,
	"Textile":   3.0,
}

var materials = []string{
	"Plastic", "Paper", "Cardboard", "Glass", "Metal", "E-Waste", "Organic", "Textile",
}

type RequestFactory struct{}

// CreateInput generates the caller-supplied half of a pickup request, the
// same shape the mobile UI submits.
func (rf *RequestFactory) CreateInput(config *models.Config) models.NewRequestInput {
	itemCount := fake.IntBetween(1, 3)
	items := make([]models.WasteItem, 0, itemCount)
	total := 0.0
	weight := 0.0

	for i := 0; i < itemCount; i++ {
		material := materials[rand.Intn(len(materials))]
		quantity := fake.Float64(1, 2, 40)
		items = append(items, models.WasteItem{
			Name:     material,
			Quantity: quantity,
			Unit:     "kg",
		})
		total += quantity * materialRates[material]
		weight += quantity
	}

	return models.NewRequestInput{
		UserID:          cuid.New(),
		UserName:        fake.Person().Name(),
		UserRating:      fake.Float64(1, 3, 5),
		Items:           items,
		TotalAmount:     total,
		Address:         fake.Address().Address(),
		DistanceKm:      fake.Float64(1, 1, 15),
		ScheduledAt:     time.Now().Add(time.Duration(fake.IntBetween(1, 48)) * time.Hour),
		Urgency:         rf.pickUrgency(config),
		PickupType:      rf.pickType(),
		EstimatedWeight: weight,
	}
}

// CreateRequest generates a full seeded record as it would exist after a
// first launch: pending, untouched since creation.
func (rf *RequestFactory) CreateRequest(config *models.Config) models.PickupRequest {
	input := rf.CreateInput(config)
	createdAt := fake.Time().TimeBetween(time.Now().Add(-48*time.Hour), time.Now())

	return models.PickupRequest{
		ID:              cuid.New(),
		UserID:          input.UserID,
		UserName:        input.UserName,
		UserRating:      input.UserRating,
		Items:           input.Items,
		TotalAmount:     input.TotalAmount,
		Address:         input.Address,
		DistanceKm:      input.DistanceKm,
		ScheduledAt:     input.ScheduledAt,
		Urgency:         input.Urgency,
		Status:          models.StatusPending,
		PickupType:      input.PickupType,
		PaymentStatus:   models.PaymentPending,
		EstimatedWeight: input.EstimatedWeight,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func (rf *RequestFactory) CreateBatch(config *models.Config, count int) []models.PickupRequest {
	requests := make([]models.PickupRequest, count)
	for i := range requests {
		requests[i] = rf.CreateRequest(config)
	}
	return requests
}

func (rf *RequestFactory) pickUrgency(config *models.Config) models.Urgency {
	r := rand.Float64()
	if r < config.HighUrgencyRatio {
		return models.UrgencyHigh
	}
	if r < config.HighUrgencyRatio+0.4 {
		return models.UrgencyMedium
	}
	return models.UrgencyLow
}

func (rf *RequestFactory) pickType() models.PickupType {
	switch rand.Intn(3) {
	case 0:
		return models.PickupInstant
	case 1:
		return models.PickupScheduled
	default:
		return models.PickupDaily
	}
}
