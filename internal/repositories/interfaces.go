package repositories

import (
	"context"

	"github.com/greenloop/ecopickup/internal/models"
)

type RequestRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkCreate(ctx context.Context, requests []models.PickupRequest) error
	Create(ctx context.Context, request models.PickupRequest) error
	GetAll(ctx context.Context) ([]models.PickupRequest, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
