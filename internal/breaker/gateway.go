package breaker

import (
	"context"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/models"
)

// Gateway guards every call to the wrapped backend with a circuit breaker
type Gateway struct {
	next hierarchy.Gateway
	cb   *CircuitBreaker
}

var _ hierarchy.Gateway = (*Gateway)(nil)

func Wrap(next hierarchy.Gateway, cb *CircuitBreaker) *Gateway {
	return &Gateway{next: next, cb: cb}
}

// Breaker exposes the breaker for status reporting
func (g *Gateway) Breaker() *CircuitBreaker {
	return g.cb
}

func (g *Gateway) CreateProperty(ctx context.Context, ownerID string, p models.Property) (out models.Property, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.CreateProperty(ctx, ownerID, p)
		return err
	})
	return out, err
}

func (g *Gateway) UpdateProperty(ctx context.Context, id string, patch models.PropertyPatch) error {
	return g.cb.Do(func() error { return g.next.UpdateProperty(ctx, id, patch) })
}

func (g *Gateway) DeleteProperty(ctx context.Context, id string) error {
	return g.cb.Do(func() error { return g.next.DeleteProperty(ctx, id) })
}

func (g *Gateway) ListProperties(ctx context.Context, ownerID string) (out []models.Property, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.ListProperties(ctx, ownerID)
		return err
	})
	return out, err
}

func (g *Gateway) CreateUnit(ctx context.Context, propertyID string, u models.Unit) (out models.Unit, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.CreateUnit(ctx, propertyID, u)
		return err
	})
	return out, err
}

func (g *Gateway) UpdateUnit(ctx context.Context, id string, patch models.UnitPatch) error {
	return g.cb.Do(func() error { return g.next.UpdateUnit(ctx, id, patch) })
}

func (g *Gateway) DeleteUnit(ctx context.Context, id string) error {
	return g.cb.Do(func() error { return g.next.DeleteUnit(ctx, id) })
}

func (g *Gateway) ListUnits(ctx context.Context, propertyID string) (out []models.Unit, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.ListUnits(ctx, propertyID)
		return err
	})
	return out, err
}

func (g *Gateway) CreateSubUnit(ctx context.Context, unitID string, s models.SubUnit) (out models.SubUnit, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.CreateSubUnit(ctx, unitID, s)
		return err
	})
	return out, err
}

func (g *Gateway) UpdateSubUnit(ctx context.Context, id string, patch models.SubUnitPatch) error {
	return g.cb.Do(func() error { return g.next.UpdateSubUnit(ctx, id, patch) })
}

func (g *Gateway) DeleteSubUnit(ctx context.Context, id string) error {
	return g.cb.Do(func() error { return g.next.DeleteSubUnit(ctx, id) })
}

func (g *Gateway) ListSubUnits(ctx context.Context, unitID string) (out []models.SubUnit, err error) {
	err = g.cb.Do(func() error {
		out, err = g.next.ListSubUnits(ctx, unitID)
		return err
	})
	return out, err
}
