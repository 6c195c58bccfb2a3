package hierarchy

import (
	"context"

	"rental-manager/internal/models"
)

// AddSubUnit appends a room to the unit and returns its temporary ID.
// The room is created remotely only if the unit is synced at this moment;
// otherwise it stays local-only and is never retried.
func (s *Store) AddSubUnit(propertyID, unitID string, draft models.SubUnitDraft) (string, bool) {
	id, op, ok := s.addSubUnitLocal(propertyID, unitID, draft)
	if ok {
		s.mirror(op)
	}
	return id, ok
}

func (s *Store) addSubUnitLocal(propertyID, unitID string, draft models.SubUnitDraft) (string, remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.unitLocked(propertyID, unitID)
	if u == nil {
		return "", remoteOp{}, false
	}
	id := s.ids.NewID()
	su := models.NewSubUnit(id, draft)
	u.SubUnits = append(u.SubUnits, su)
	return id, s.createSubUnitOp(propertyID, u, su), true
}

// AddRoomToSingleUnit appends a room to the property's first unit, creating a
// "Main Unit" first when the property has none.
func (s *Store) AddRoomToSingleUnit(propertyID string, draft models.SubUnitDraft) (string, bool) {
	id, ops, ok := s.addRoomToSingleUnitLocal(propertyID, draft)
	if ok {
		for _, op := range ops {
			s.mirror(op)
		}
	}
	return id, ok
}

func (s *Store) addRoomToSingleUnitLocal(propertyID string, draft models.SubUnitDraft) (string, []remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.propertyLocked(propertyID)
	if p == nil {
		return "", nil, false
	}

	var ops []remoteOp
	if len(p.Units) == 0 {
		mainUnit := models.NewUnit(s.ids.NewID(), models.UnitDraft{Name: models.MainUnitName})
		p.Units = append(p.Units, mainUnit)
		ops = append(ops, s.createUnitOp(p, mainUnit))
	}

	u := &p.Units[0]
	id := s.ids.NewID()
	su := models.NewSubUnit(id, draft)
	u.SubUnits = append(u.SubUnits, su)
	ops = append(ops, s.createSubUnitOp(propertyID, u, su))
	return id, ops, true
}

// createSubUnitOp must be called with mu held. The parent's sync state is
// captured now: a unit that reconciles later does not pick this room up.
func (s *Store) createSubUnitOp(propertyID string, u *models.Unit, su models.SubUnit) remoteOp {
	unitID, tempID := u.ID, su.ID
	su = su.Clone()
	op := remoteOp{
		entity: entitySubUnit,
		op:     opCreate,
		id:     tempID,
		run: func(ctx context.Context) error {
			created, err := s.gw.CreateSubUnit(ctx, unitID, su)
			if err != nil {
				s.abandonCreate(tempID)
				return err
			}
			s.afterCreate(ctx, entitySubUnit, created.ID, s.reconcileSubUnit(propertyID, unitID, tempID, created.ID))
			return nil
		},
	}
	if !u.Sync.IsSynced() {
		op.skip = "parent unit not synced"
	} else if s.gw != nil {
		s.trackCreateLocked(tempID)
	}
	return op
}

// UpdateSubUnit merges patch into the room. It reports false if the room does not exist.
func (s *Store) UpdateSubUnit(propertyID, unitID, subUnitID string, patch models.SubUnitPatch) bool {
	op, ok := s.updateSubUnitLocal(propertyID, unitID, subUnitID, patch)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) updateSubUnitLocal(propertyID, unitID, subUnitID string, patch models.SubUnitPatch) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.unitLocked(propertyID, unitID)
	if u == nil {
		return remoteOp{}, false
	}
	idx := subUnitIndex(u, subUnitID)
	if idx < 0 {
		return remoteOp{}, false
	}
	patch.Apply(&u.SubUnits[idx])

	op := remoteOp{
		entity: entitySubUnit,
		op:     opUpdate,
		id:     subUnitID,
		run: func(ctx context.Context) error {
			return s.gw.UpdateSubUnit(ctx, subUnitID, patch)
		},
	}
	if !u.SubUnits[idx].Sync.IsSynced() {
		op.skip = "room not synced"
	}
	return op, true
}

// DeleteSubUnit removes the room. It reports false if the room does not exist.
func (s *Store) DeleteSubUnit(propertyID, unitID, subUnitID string) bool {
	op, ok := s.deleteSubUnitLocal(propertyID, unitID, subUnitID)
	if ok {
		s.mirror(op)
	}
	return ok
}

func (s *Store) deleteSubUnitLocal(propertyID, unitID, subUnitID string) (remoteOp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.unitLocked(propertyID, unitID)
	if u == nil {
		return remoteOp{}, false
	}
	idx := subUnitIndex(u, subUnitID)
	if idx < 0 {
		return remoteOp{}, false
	}
	synced := u.SubUnits[idx].Sync.IsSynced()
	s.markDeletedLocked(subUnitID)

	next := make([]models.SubUnit, 0, len(u.SubUnits)-1)
	next = append(next, u.SubUnits[:idx]...)
	next = append(next, u.SubUnits[idx+1:]...)
	u.SubUnits = next

	op := remoteOp{
		entity: entitySubUnit,
		op:     opDelete,
		id:     subUnitID,
		run: func(ctx context.Context) error {
			return s.gw.DeleteSubUnit(ctx, subUnitID)
		},
	}
	if !synced {
		op.skip = "room not synced"
	}
	return op, true
}
