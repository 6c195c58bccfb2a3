package hierarchy

import (
	"context"
	"errors"
	"time"

	"rental-manager/internal/models"
)

var (
	// ErrInvalidDraft is returned when a draft cannot produce a valid entity
	ErrInvalidDraft = errors.New("invalid draft")
	// ErrNoGateway is returned by remote-only operations on a store built without a gateway
	ErrNoGateway = errors.New("no remote gateway configured")
	// ErrNoOwner is returned when an operation needs an owner ID and none was given
	ErrNoOwner = errors.New("owner id required")
)

// Gateway is the remote relational backend.
// Create methods return the persisted entity carrying the backend-assigned ID.
// List methods are only used by hydration.
type Gateway interface {
	CreateProperty(ctx context.Context, ownerID string, p models.Property) (models.Property, error)
	UpdateProperty(ctx context.Context, id string, patch models.PropertyPatch) error
	DeleteProperty(ctx context.Context, id string) error
	ListProperties(ctx context.Context, ownerID string) ([]models.Property, error)

	CreateUnit(ctx context.Context, propertyID string, u models.Unit) (models.Unit, error)
	UpdateUnit(ctx context.Context, id string, patch models.UnitPatch) error
	DeleteUnit(ctx context.Context, id string) error
	ListUnits(ctx context.Context, propertyID string) ([]models.Unit, error)

	CreateSubUnit(ctx context.Context, unitID string, s models.SubUnit) (models.SubUnit, error)
	UpdateSubUnit(ctx context.Context, id string, patch models.SubUnitPatch) error
	DeleteSubUnit(ctx context.Context, id string) error
	ListSubUnits(ctx context.Context, unitID string) ([]models.SubUnit, error)
}

// MetricsRecorder receives one observation per remote operation
type MetricsRecorder interface {
	Observe(entity, op, outcome string, d time.Duration)
	InFlight(delta int)
}

type noopMetrics struct{}

func (noopMetrics) Observe(string, string, string, time.Duration) {}
func (noopMetrics) InFlight(int)                                  {}
