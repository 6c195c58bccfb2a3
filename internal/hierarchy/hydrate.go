package hierarchy

import (
	"context"
	"fmt"

	"rental-manager/internal/models"
)

// LoadFromRemote fetches every property of the owner with its units and rooms
// and replaces local state with the result. It returns the number of
// properties loaded.
//
// An empty listing leaves local state alone: it means nothing has been
// uploaded yet, not that the owner has no properties. On failure local state
// is kept as-is and the error is recorded.
func (s *Store) LoadFromRemote(ctx context.Context, ownerID string) (int, error) {
	if s.gw == nil {
		return 0, ErrNoGateway
	}
	if ownerID == "" {
		return 0, ErrNoOwner
	}

	tree, err := s.fetchTree(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("load properties for %s: %w", ownerID, err)
	}
	if len(tree) == 0 {
		s.log.WithField("owner_id", ownerID).Info("remote has no properties, keeping local state")
		return 0, nil
	}

	s.mu.Lock()
	s.properties = tree
	s.synced = true
	s.mu.Unlock()

	s.log.WithField("owner_id", ownerID).WithField("count", len(tree)).Info("hydrated from remote")
	return len(tree), nil
}

func (s *Store) fetchTree(ctx context.Context, ownerID string) ([]models.Property, error) {
	var props []models.Property
	err := s.execute(ctx, remoteOp{
		entity: entityProperty,
		op:     opList,
		id:     "owner:" + ownerID,
		run: func(ctx context.Context) error {
			var err error
			props, err = s.gw.ListProperties(ctx, ownerID)
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	for i := range props {
		p := &props[i]
		p.Sync = models.SyncSynced
		p.Utilities = p.Utilities.Normalize()

		var units []models.Unit
		err := s.execute(ctx, remoteOp{
			entity: entityUnit,
			op:     opList,
			id:     "property:" + p.ID,
			run: func(ctx context.Context) error {
				var err error
				units, err = s.gw.ListUnits(ctx, p.ID)
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		if units == nil {
			units = []models.Unit{}
		}

		for j := range units {
			u := &units[j]
			u.Sync = models.SyncSynced

			var rooms []models.SubUnit
			err := s.execute(ctx, remoteOp{
				entity: entitySubUnit,
				op:     opList,
				id:     "unit:" + u.ID,
				run: func(ctx context.Context) error {
					var err error
					rooms, err = s.gw.ListSubUnits(ctx, u.ID)
					return err
				},
			})
			if err != nil {
				return nil, err
			}
			if rooms == nil {
				rooms = []models.SubUnit{}
			}
			for k := range rooms {
				rooms[k].Sync = models.SyncSynced
			}
			u.SubUnits = rooms
		}
		p.Units = units
	}
	return props, nil
}

// PushReport summarizes a SyncToRemote pass
type PushReport struct {
	Properties int `json:"properties"`
	Units      int `json:"units"`
	SubUnits   int `json:"sub_units"`
	Failed     int `json:"failed"`
}

// SyncToRemote uploads every local property, unit and room as new remote rows.
//
// This is a one-time upload of existing local state, not a reconciliation
// step: there is no duplicate detection and local IDs are not rewritten, so
// calling it twice creates every row twice. Individual failures are recorded
// and the pass continues.
func (s *Store) SyncToRemote(ctx context.Context, ownerID string) (PushReport, error) {
	var report PushReport
	if s.gw == nil {
		return report, ErrNoGateway
	}
	if ownerID == "" {
		return report, ErrNoOwner
	}

	for _, p := range s.Properties() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var created models.Property
		err := s.execute(ctx, remoteOp{
			entity: entityProperty,
			op:     opCreate,
			id:     p.ID,
			run: func(ctx context.Context) error {
				var err error
				created, err = s.gw.CreateProperty(ctx, ownerID, p)
				return err
			},
		})
		if err != nil {
			report.Failed++
			continue
		}
		report.Properties++
		s.pushUnits(ctx, created.ID, p.Units, &report)
	}

	if report.Failed == 0 {
		s.mu.Lock()
		s.synced = true
		s.mu.Unlock()
	}
	s.log.WithField("owner_id", ownerID).WithField("failed", report.Failed).
		Infof("pushed %d properties, %d units, %d rooms", report.Properties, report.Units, report.SubUnits)
	return report, nil
}

func (s *Store) pushUnits(ctx context.Context, propertyID string, units []models.Unit, report *PushReport) {
	for _, u := range units {
		var created models.Unit
		err := s.execute(ctx, remoteOp{
			entity: entityUnit,
			op:     opCreate,
			id:     u.ID,
			run: func(ctx context.Context) error {
				var err error
				created, err = s.gw.CreateUnit(ctx, propertyID, u)
				return err
			},
		})
		if err != nil {
			report.Failed++
			continue
		}
		report.Units++

		for _, su := range u.SubUnits {
			err := s.execute(ctx, remoteOp{
				entity: entitySubUnit,
				op:     opCreate,
				id:     su.ID,
				run: func(ctx context.Context) error {
					_, err := s.gw.CreateSubUnit(ctx, created.ID, su)
					return err
				},
			})
			if err != nil {
				report.Failed++
				continue
			}
			report.SubUnits++
		}
	}
}
