package hierarchy

import (
	"context"

	"rental-manager/internal/models"
)

// AddUnit appends a new vacant unit to the property and returns its temporary ID.
// The unit is created remotely only if the property is already synced; on
// success its ID is reconciled to the backend ID.
func (s *Store) AddUnit(propertyID string, draft models.UnitDraft) (string, bool) {
	id, op, ok := s.addUnitLocal(propertyID, draft)
	if ok {
		s.mirror(op)
	}
	return id, ok
}

func (s *Store) addUnitLocal(propertyID string, draft models.UnitDraft) (string, remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.propertyLocked(propertyID)
	if p == nil {
		return "", remoteOp{}, false
	}
	id := s.ids.NewID()
	u := models.NewUnit(id, draft)
	p.Units = append(p.Units, u)
	return id, s.createUnitOp(p, u), true
}

// createUnitOp must be called with mu held
func (s *Store) createUnitOp(p *models.Property, u models.Unit) remoteOp {
	propertyID, tempID := p.ID, u.ID
	u = u.Clone()
	op := remoteOp{
		entity: entityUnit,
		op:     opCreate,
		id:     tempID,
		run: func(ctx context.Context) error {
			created, err := s.gw.CreateUnit(ctx, propertyID, u)
			if err != nil {
				s.abandonCreate(tempID)
				return err
			}
			s.afterCreate(ctx, entityUnit, created.ID, s.reconcileUnit(propertyID, tempID, created.ID))
			return nil
		},
	}
	if !p.Sync.IsSynced() {
		op.skip = "parent property not synced"
	} else if s.gw != nil {
		s.trackCreateLocked(tempID)
	}
	return op
}

// UpdateUnit merges patch into the unit. It reports false if the unit does not exist.
func (s *Store) UpdateUnit(propertyID, unitID string, patch models.UnitPatch) bool {
	op, ok := s.updateUnitLocal(propertyID, unitID, patch)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) updateUnitLocal(propertyID, unitID string, patch models.UnitPatch) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.unitLocked(propertyID, unitID)
	if u == nil {
		return remoteOp{}, false
	}
	patch.Apply(u)

	op := remoteOp{
		entity: entityUnit,
		op:     opUpdate,
		id:     unitID,
		run: func(ctx context.Context) error {
			return s.gw.UpdateUnit(ctx, unitID, patch)
		},
	}
	if !u.Sync.IsSynced() {
		op.skip = "unit not synced"
	}
	return op, true
}

// DeleteUnit removes the unit and its rooms. It reports false if the unit does not exist.
func (s *Store) DeleteUnit(propertyID, unitID string) bool {
	op, ok := s.deleteUnitLocal(propertyID, unitID)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) deleteUnitLocal(propertyID, unitID string) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.propertyLocked(propertyID)
	if p == nil {
		return remoteOp{}, false
	}
	idx := unitIndex(p, unitID)
	if idx < 0 {
		return remoteOp{}, false
	}
	synced := p.Units[idx].Sync.IsSynced()
	s.markDeletedLocked(unitSubtreeIDs(p.Units[idx])...)

	next := make([]models.Unit, 0, len(p.Units)-1)
	next = append(next, p.Units[:idx]...)
	next = append(next, p.Units[idx+1:]...)
	p.Units = next

	op := remoteOp{
		entity: entityUnit,
		op:     opDelete,
		id:     unitID,
		run: func(ctx context.Context) error {
			return s.gw.DeleteUnit(ctx, unitID)
		},
	}
	if !synced {
		op.skip = "unit not synced"
	}
	return op, true
}

// unitSubtreeIDs lists the unit's id followed by its rooms' ids
func unitSubtreeIDs(u models.Unit) []string {
	ids := make([]string, 0, len(u.SubUnits)+1)
	ids = append(ids, u.ID)
	for _, su := range u.SubUnits {
		ids = append(ids, su.ID)
	}
	return ids
}
