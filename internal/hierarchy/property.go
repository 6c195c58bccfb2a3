package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"rental-manager/internal/models"
)

// CreateResult is what CreateProperty hands back
type CreateResult struct {
	ID string `json:"id"`
	// LocalOnly is true when the property only exists in memory with a temporary ID
	LocalOnly bool `json:"local_only"`
}

// CreateProperty adds a property.
//
// With an owner ID the property is created remotely first, then the owner's
// whole tree is hydrated and the backend ID is returned. Without an owner ID,
// or when the remote create fails, the property is inserted locally under a
// temporary ID. The only error returned is ErrInvalidDraft.
func (s *Store) CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (CreateResult, error) {
	if draft.Type == "" {
		draft.Type = models.PropertyTypeSingleUnit
	}
	if !draft.Type.Valid() {
		return CreateResult{}, fmt.Errorf("%w: unknown property type %q", ErrInvalidDraft, draft.Type)
	}

	if ownerID != "" && s.gw != nil {
		if id, err := s.createPropertyRemote(ctx, draft, ownerID); err == nil {
			return CreateResult{ID: id}, nil
		}
	}

	id := s.ids.NewID()
	p := models.NewProperty(id, draft, s.now())
	s.mu.Lock()
	s.properties = append(s.properties, p)
	s.mu.Unlock()

	s.log.WithField("id", id).Info("property created locally")
	return CreateResult{ID: id, LocalOnly: true}, nil
}

func (s *Store) createPropertyRemote(ctx context.Context, draft models.PropertyDraft, ownerID string) (string, error) {
	p := models.NewProperty("", draft, s.now())
	var created models.Property
	err := s.execute(ctx, remoteOp{
		entity: entityProperty,
		op:     opCreate,
		id:     "owner:" + ownerID,
		run: func(ctx context.Context) error {
			var err error
			created, err = s.gw.CreateProperty(ctx, ownerID, p)
			if err == nil && created.ID == "" {
				err = errors.New("gateway returned no id")
			}
			return err
		},
	})
	if err != nil {
		return "", err
	}

	if _, err := s.LoadFromRemote(ctx, ownerID); err != nil {
		s.log.WithError(err).WithField("id", created.ID).Warn("hydration after create failed")
	}

	// Hydration may have failed or returned a stale listing
	s.mu.Lock()
	if s.propertyIndex(created.ID) < 0 {
		created.Sync = models.SyncSynced
		created.Utilities = created.Utilities.Normalize()
		if created.Units == nil {
			created.Units = []models.Unit{}
		}
		s.properties = append(s.properties, created)
	}
	s.mu.Unlock()

	s.log.WithField("id", created.ID).Info("property created remotely")
	return created.ID, nil
}

// UpdateProperty merges patch into the property. It reports false if no such
// property exists or the patch fails models.PropertyPatch.Validate; nothing is
// changed in either case.
func (s *Store) UpdateProperty(id string, patch models.PropertyPatch) bool {
	if err := patch.Validate(); err != nil {
		s.log.WithField("id", id).WithError(err).Warn("property update rejected")
		return false
	}
	op, ok := s.updatePropertyLocal(id, patch)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) updatePropertyLocal(id string, patch models.PropertyPatch) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.propertyLocked(id)
	if p == nil {
		return remoteOp{}, false
	}
	patch.Apply(p)

	op := remoteOp{
		entity: entityProperty,
		op:     opUpdate,
		id:     id,
		run: func(ctx context.Context) error {
			return s.gw.UpdateProperty(ctx, id, patch)
		},
	}
	if !p.Sync.IsSynced() {
		op.skip = "property not synced"
	}
	return op, true
}

// DeleteProperty removes the property with all its units and rooms and
// deselects it, in one step. It reports false if no such property exists.
func (s *Store) DeleteProperty(id string) bool {
	op, ok := s.deletePropertyLocal(id)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) deletePropertyLocal(id string) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.propertyIndex(id)
	if idx < 0 {
		return remoteOp{}, false
	}
	synced := s.properties[idx].Sync.IsSynced()
	for _, u := range s.properties[idx].Units {
		s.markDeletedLocked(unitSubtreeIDs(u)...)
	}

	next := make([]models.Property, 0, len(s.properties)-1)
	next = append(next, s.properties[:idx]...)
	next = append(next, s.properties[idx+1:]...)
	s.properties = next
	delete(s.selected, id)

	op := remoteOp{
		entity: entityProperty,
		op:     opDelete,
		id:     id,
		run: func(ctx context.Context) error {
			return s.gw.DeleteProperty(ctx, id)
		},
	}
	if !synced {
		op.skip = "property not synced"
	}
	return op, true
}
