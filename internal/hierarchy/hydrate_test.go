package hierarchy

import (
	"context"
	"testing"

	"rental-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteTree() []models.Property {
	rent := 1450.0
	beds := 2
	return []models.Property{
		{
			ID:        "a0f4c7c2-5d1e-4b7a-8c3f-2e9d1b6a7f10",
			Sync:      models.SyncSynced,
			Address:   models.Address{Line1: "8 Harbor Rd", City: "Seattle", State: "WA", Country: "US"},
			Name:      "Harbor",
			Type:      models.PropertyTypeMultiUnit,
			Utilities: models.DefaultUtilities(),
			Status:    models.PropertyStatusActive,
			CreatedAt: testNow,
			Units: []models.Unit{
				{
					ID:        "b1e5d8d3-6e2f-4c8b-9d4a-3f0e2c7b8a21",
					Sync:      models.SyncSynced,
					Name:      "Apt 1",
					Bedrooms:  &beds,
					RentPrice: &rent,
					SubUnits: []models.SubUnit{
						{ID: "c2f6e9e4-7f3a-4d9c-8e5b-4a1f3d8c9b32", Sync: models.SyncSynced, Name: "Bedroom", RoomType: models.RoomTypeBedroom},
					},
				},
				{
					ID:       "d3a7fa05-8a4b-4eac-9f6c-5b2a4e9dac43",
					Sync:     models.SyncSynced,
					Name:     "Apt 2",
					SubUnits: []models.SubUnit{},
				},
			},
		},
		{
			ID:        "e4b80b16-9b5c-4fbd-8a7d-6c3b5fa0bd54",
			Sync:      models.SyncSynced,
			Name:      "Lot",
			Type:      models.PropertyTypeParking,
			Utilities: models.DefaultUtilities(),
			Status:    models.PropertyStatusInactive,
			CreatedAt: testNow,
			Units:     []models.Unit{},
		},
	}
}

func TestLoadFromRemoteRoundTrip(t *testing.T) {
	gw := newFakeGateway()
	tree := remoteTree()
	gw.seed("owner-1", tree...)
	s := newTestStore(gw)

	n, err := s.LoadFromRemote(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, len(tree), n)
	assert.True(t, s.IsSynced())
	assert.False(t, s.IsLoading())

	for _, want := range tree {
		got, ok := s.GetPropertyByID(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want, got)
	}
}

func TestLoadFromRemoteMarksEverythingSynced(t *testing.T) {
	gw := newFakeGateway()
	tree := remoteTree()
	// rows coming back from storage carry no sync marker
	tree[0].Sync = ""
	tree[0].Units[0].Sync = ""
	tree[0].Units[0].SubUnits[0].Sync = ""
	gw.seed("owner-1", tree...)
	s := newTestStore(gw)

	_, err := s.LoadFromRemote(context.Background(), "owner-1")
	require.NoError(t, err)

	p, _ := s.GetPropertyByID(tree[0].ID)
	assert.Equal(t, models.SyncSynced, p.Sync)
	assert.Equal(t, models.SyncSynced, p.Units[0].Sync)
	assert.Equal(t, models.SyncSynced, p.Units[0].SubUnits[0].Sync)
}

func TestLoadFromRemoteReplacesLocalState(t *testing.T) {
	gw := newFakeGateway()
	gw.seed("owner-1", remoteTree()...)
	s := newTestStore(gw)
	local, _ := s.CreateProperty(context.Background(), models.PropertyDraft{Name: "local only"}, "")

	_, err := s.LoadFromRemote(context.Background(), "owner-1")
	require.NoError(t, err)

	_, ok := s.GetPropertyByID(local.ID)
	assert.False(t, ok, "hydration replaces the whole tree")
	assert.Len(t, s.Properties(), 2)
}

func TestLoadFromRemoteEmptyKeepsLocalState(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw)
	local, _ := s.CreateProperty(context.Background(), models.PropertyDraft{Name: "draft"}, "")

	n, err := s.LoadFromRemote(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	p, ok := s.GetPropertyByID(local.ID)
	require.True(t, ok)
	assert.Equal(t, "draft", p.Name)
}

func TestLoadFromRemoteFailureKeepsLocalState(t *testing.T) {
	gw := newFakeGateway()
	gw.seed("owner-1", remoteTree()...)
	gw.failOn("list unit", errUnreachable)
	s := newTestStore(gw)
	local, _ := s.CreateProperty(context.Background(), models.PropertyDraft{Name: "draft"}, "")

	_, err := s.LoadFromRemote(context.Background(), "owner-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnreachable)

	_, ok := s.GetPropertyByID(local.ID)
	assert.True(t, ok)
	assert.Len(t, s.Properties(), 1)
	assert.Contains(t, s.LastError(), "list unit")
	assert.False(t, s.IsSynced())
	assert.False(t, s.IsLoading())
}

func TestLoadFromRemoteRequiresOwner(t *testing.T) {
	s := newTestStore(newFakeGateway())
	_, err := s.LoadFromRemote(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestSyncToRemotePushesWholeTree(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw)
	res, _ := s.CreateProperty(context.Background(), models.PropertyDraft{Name: "one"}, "")
	unitID, _ := s.AddUnit(res.ID, models.UnitDraft{Name: "A"})
	s.AddSubUnit(res.ID, unitID, models.SubUnitDraft{Name: "R1"})
	s.AddSubUnit(res.ID, unitID, models.SubUnitDraft{Name: "R2"})
	s.AddUnit(res.ID, models.UnitDraft{Name: "B"})
	s.CreateProperty(context.Background(), models.PropertyDraft{Name: "two"}, "")
	s.Wait()
	require.Empty(t, gw.Calls())

	report, err := s.SyncToRemote(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, PushReport{Properties: 2, Units: 2, SubUnits: 2}, report)
	assert.True(t, s.IsSynced())

	// local ids are not rewritten
	p, ok := s.GetPropertyByID(res.ID)
	require.True(t, ok)
	assert.Equal(t, models.SyncPending, p.Sync)

	// children are attached to the backend ids of their parents
	assert.NotContains(t, gw.Calls(), "create unit property="+res.ID)
	assert.NotContains(t, gw.Calls(), "create sub_unit unit="+unitID)
}

func TestSyncToRemoteTwiceDuplicates(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw)
	s.CreateProperty(context.Background(), models.PropertyDraft{Name: "one"}, "")

	_, err := s.SyncToRemote(context.Background(), "owner-1")
	require.NoError(t, err)
	_, err = s.SyncToRemote(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, 2, gw.countCalls("create property"))
	remote, _ := gw.ListProperties(context.Background(), "owner-1")
	assert.Len(t, remote, 2)
}

func TestSyncToRemoteCountsFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.failOn("create unit", errUnreachable)
	s := newTestStore(gw)
	res, _ := s.CreateProperty(context.Background(), models.PropertyDraft{}, "")
	unitID, _ := s.AddUnit(res.ID, models.UnitDraft{Name: "A"})
	s.AddSubUnit(res.ID, unitID, models.SubUnitDraft{Name: "R"})

	report, err := s.SyncToRemote(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, PushReport{Properties: 1, Failed: 1}, report)
	assert.Zero(t, gw.countCalls("create sub_unit"), "rooms of a failed unit are not pushed")
	assert.False(t, s.IsSynced())
	assert.NotEmpty(t, s.LastError())
}

func TestHydrationDuringUnitCreateDoesNotDuplicate(t *testing.T) {
	const remoteUnit = "f5c91c27-ac6d-4ace-9b8e-7d4c6ab1ce65"
	gw := newFakeGateway()
	gw.queueIDs(entityUnit, remoteUnit)
	s := newTestStore(gw)
	propertyID := newSyncedProperty(t, s, gw, "u1")

	release := gw.hold("create unit")
	_, ok := s.AddUnit(propertyID, models.UnitDraft{Name: "A"})
	require.True(t, ok)
	waitEntered(t, gw, "create unit")

	// the backend row lands before the create call returns and a hydration picks it up
	gw.mu.Lock()
	gw.units[propertyID] = append(gw.units[propertyID], models.Unit{ID: remoteUnit, Name: "A"})
	gw.mu.Unlock()
	_, err := s.LoadFromRemote(context.Background(), "u1")
	require.NoError(t, err)

	release()
	s.Wait()

	p, _ := s.GetPropertyByID(propertyID)
	require.Len(t, p.Units, 1)
	assert.Equal(t, remoteUnit, p.Units[0].ID)
	assert.Zero(t, gw.countCalls("delete unit"))
}

func TestHydrationBeforeUnitRowExistsKeepsRemoteRow(t *testing.T) {
	const remoteUnit = "f5c91c27-ac6d-4ace-9b8e-7d4c6ab1ce65"
	gw := newFakeGateway()
	gw.queueIDs(entityUnit, remoteUnit)
	s := newTestStore(gw)
	propertyID := newSyncedProperty(t, s, gw, "u1")

	release := gw.hold("create unit")
	_, ok := s.AddUnit(propertyID, models.UnitDraft{Name: "A"})
	require.True(t, ok)
	waitEntered(t, gw, "create unit")

	// the listing runs before the backend row exists, so the pending unit disappears
	_, err := s.LoadFromRemote(context.Background(), "u1")
	require.NoError(t, err)
	p, _ := s.GetPropertyByID(propertyID)
	require.Empty(t, p.Units)

	release()
	s.Wait()

	assert.Zero(t, gw.countCalls("delete unit"))

	_, err = s.LoadFromRemote(context.Background(), "u1")
	require.NoError(t, err)
	p, _ = s.GetPropertyByID(propertyID)
	require.Len(t, p.Units, 1)
	assert.Equal(t, remoteUnit, p.Units[0].ID)
}

func TestDeletedRoomUnderDeletedUnitIsCleanedUpRemotely(t *testing.T) {
	const remoteRoom = "0c7d3e21-5b4a-4f6e-8d9c-1a2b3c4d5e6f"
	gw := newFakeGateway()
	gw.queueIDs(entitySubUnit, remoteRoom)
	s := newTestStore(gw)
	propertyID := newSyncedProperty(t, s, gw, "u1")
	s.AddUnit(propertyID, models.UnitDraft{Name: "A"})
	s.Wait()
	p, _ := s.GetPropertyByID(propertyID)
	require.Len(t, p.Units, 1)
	unitID := p.Units[0].ID
	require.Equal(t, models.SyncSynced, p.Units[0].Sync)

	release := gw.hold("create sub_unit")
	_, ok := s.AddSubUnit(propertyID, unitID, models.SubUnitDraft{Name: "R"})
	require.True(t, ok)
	waitEntered(t, gw, "create sub_unit")
	require.True(t, s.DeleteUnit(propertyID, unitID))
	release()
	s.Wait()

	assert.Contains(t, gw.Calls(), "delete sub_unit "+remoteRoom)
	assert.Empty(t, s.creating)
}

func TestFailedCreateIsForgotten(t *testing.T) {
	gw := newFakeGateway()
	gw.failOn("create unit", errUnreachable)
	s := newTestStore(gw)
	propertyID := newSyncedProperty(t, s, gw, "u1")

	_, ok := s.AddUnit(propertyID, models.UnitDraft{Name: "A"})
	require.True(t, ok)
	s.Wait()

	assert.Empty(t, s.creating)
}
