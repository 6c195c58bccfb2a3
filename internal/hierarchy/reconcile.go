package hierarchy

import (
	"context"

	"rental-manager/internal/idgen"
	"rental-manager/internal/models"
)

type reconcileResult int

const (
	// reconciled: the temporary ID was replaced in place
	reconciled reconcileResult = iota
	// alreadyPresent: the temporary node is gone but a hydration already brought in the backend row
	alreadyPresent
	// targetGone: the node was deleted locally while its create was in flight
	targetGone
	// replaced: a hydration dropped the node before the create returned;
	// the row is left for the next hydration to bring back
	replaced
)

// trackCreateLocked registers an in-flight remote create. mu must be held.
func (s *Store) trackCreateLocked(tempID string) {
	s.creating[tempID] = false
}

// markDeletedLocked flags in-flight creates among ids as deleted by the user. mu must be held.
func (s *Store) markDeletedLocked(ids ...string) {
	for _, id := range ids {
		if _, ok := s.creating[id]; ok {
			s.creating[id] = true
		}
	}
}

// finishCreateLocked forgets tempID and reports whether it was deleted locally. mu must be held.
func (s *Store) finishCreateLocked(tempID string) bool {
	deleted := s.creating[tempID]
	delete(s.creating, tempID)
	return deleted
}

// abandonCreate forgets a create that failed remotely
func (s *Store) abandonCreate(tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishCreateLocked(tempID)
}

func (s *Store) missingResultLocked(deleted bool, remoteID string) reconcileResult {
	if s.containsIDLocked(remoteID) {
		return alreadyPresent
	}
	if deleted {
		return targetGone
	}
	return replaced
}

// reconcileUnit replaces a unit's temporary ID with the backend ID.
// The unit's rooms are left as they are.
func (s *Store) reconcileUnit(propertyID, tempID, remoteID string) reconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := s.finishCreateLocked(tempID)
	if u := s.unitLocked(propertyID, tempID); u != nil {
		u.ID = remoteID
		u.Sync = models.SyncSynced
		return reconciled
	}
	return s.missingResultLocked(deleted, remoteID)
}

// reconcileSubUnit replaces a room's temporary ID with the backend ID
func (s *Store) reconcileSubUnit(propertyID, unitID, tempID, remoteID string) reconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := s.finishCreateLocked(tempID)
	if u := s.unitLocked(propertyID, unitID); u != nil {
		if idx := subUnitIndex(u, tempID); idx >= 0 {
			u.SubUnits[idx].ID = remoteID
			u.SubUnits[idx].Sync = models.SyncSynced
			return reconciled
		}
	}
	return s.missingResultLocked(deleted, remoteID)
}

// afterCreate logs the reconciliation outcome and removes the remote row of a
// node the user deleted locally before its create returned
func (s *Store) afterCreate(ctx context.Context, entity, remoteID string, res reconcileResult) {
	log := s.log.WithField("entity", entity).WithField("id", remoteID)
	if !idgen.IsCanonical(remoteID) {
		log.Debug("backend id is not a canonical UUID")
	}
	switch res {
	case reconciled:
		log.Debug("temporary id reconciled")
	case alreadyPresent:
		log.Debug("row already hydrated, nothing to reconcile")
	case replaced:
		log.Info("local tree was replaced during create, row kept for the next hydration")
	case targetGone:
		log.Warn("created row was deleted locally, deleting it remotely")
		op := remoteOp{entity: entity, op: opDelete, id: remoteID}
		switch entity {
		case entityUnit:
			op.run = func(ctx context.Context) error { return s.gw.DeleteUnit(ctx, remoteID) }
		case entitySubUnit:
			op.run = func(ctx context.Context) error { return s.gw.DeleteSubUnit(ctx, remoteID) }
		default:
			return
		}
		_ = s.execute(ctx, op)
	}
}
