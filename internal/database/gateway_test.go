package database

import (
	"testing"
	"time"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ hierarchy.Gateway = (*GormDB)(nil)
	_ hierarchy.Gateway = (*DB)(nil)
)

func TestPropertyRowMapping(t *testing.T) {
	rent := 2100.0
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := models.Property{
		ID:                "tmp_1",
		Sync:              models.SyncPending,
		Address:           models.Address{Line1: "1 Main", Line2: "Apt 2", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"},
		Name:              "Main",
		Type:              models.PropertyTypeSingleUnit,
		LandlordName:      "Kim",
		RentWholeProperty: true,
		RentAmount:        &rent,
		ParkingIncluded:   true,
		Photos:            []string{"front.jpg"},
		Utilities:         models.Utilities{Water: models.PayerTenant},
		Status:            models.PropertyStatusActive,
		CreatedAt:         created,
		Units:             []models.Unit{{ID: "tmp_2"}},
	}

	row := propertyToRow("owner-1", p)
	assert.Empty(t, row.ID, "backend assigns ids")
	assert.Equal(t, "owner-1", row.OwnerID)
	assert.Equal(t, "78701", row.PostalCode)
	assert.Equal(t, models.PayerLandlord, row.Utilities.Electricity)

	row.ID = "0d9c1e62-1f0a-4c52-9a37-6d1b2e3f4a5b"
	back := propertyFromRow(row)

	want := p
	want.ID = row.ID
	want.Sync = models.SyncSynced
	want.Utilities = p.Utilities.Normalize()
	want.Units = nil
	assert.Equal(t, want, back)
}

func TestUnitRowMapping(t *testing.T) {
	beds := 3
	baths := 1.5
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	u := models.Unit{
		ID:         "tmp_1",
		Name:       "Apt 3",
		Type:       "apartment",
		Bedrooms:   &beds,
		Bathrooms:  &baths,
		LeaseStart: &start,
		Photos:     []string{"k.jpg"},
		Amenities:  models.UnitAmenities{Laundry: true, Parking: true},
		Occupied:   true,
		TenantID:   "t-1",
	}

	row := unitToRow("p-1", u)
	assert.Equal(t, "p-1", row.PropertyID)
	assert.True(t, row.AmenityLaundry)
	assert.False(t, row.AmenityBalcony)

	row.ID = "u-1"
	back := unitFromRow(row)
	want := u
	want.ID = "u-1"
	want.Sync = models.SyncSynced
	assert.Equal(t, want, back)
}

func TestWholeUnitWithoutPriceReadsBackZero(t *testing.T) {
	whole := true
	cols := unitPatchColumns(models.UnitPatch{RentWholeUnit: &whole})
	assert.Equal(t, map[string]interface{}{"rent_whole_unit": true}, cols, "an existing remote price is not overwritten")

	u := unitFromRow(UnitRow{ID: "u-1", RentWholeUnit: true})
	require.NotNil(t, u.RentPrice)
	assert.Zero(t, *u.RentPrice)

	u = unitFromRow(UnitRow{ID: "u-2"})
	assert.Nil(t, u.RentPrice)
}

func TestSubUnitRowMapping(t *testing.T) {
	s := models.SubUnit{
		ID:           "tmp_1",
		Name:         "Bedroom",
		RoomType:     models.RoomTypeBedroom,
		Amenities:    []string{"desk"},
		SharedSpaces: []string{"kitchen"},
		TenantName:   "Lee",
	}
	row := subUnitToRow("u-1", s)
	assert.Equal(t, "u-1", row.UnitID)
	assert.Equal(t, "bedroom", row.RoomType)

	row.ID = "s-1"
	row.RoomType = "closet"
	back := subUnitFromRow(row)
	assert.Equal(t, "s-1", back.ID)
	assert.Equal(t, models.SyncSynced, back.Sync)
	assert.Equal(t, models.RoomTypeOther, back.RoomType, "unknown room types read back as other")
	assert.Equal(t, []string{"kitchen"}, back.SharedSpaces)
}

func TestUnitPatchColumnsCouplesTenantAndOccupied(t *testing.T) {
	tenant := "t-9"
	cols := unitPatchColumns(models.UnitPatch{TenantID: &tenant})
	assert.Equal(t, map[string]interface{}{"tenant_id": "t-9", "occupied": true}, cols)

	none := ""
	vacant := true
	cols = unitPatchColumns(models.UnitPatch{TenantID: &none, Occupied: &vacant})
	assert.Equal(t, true, cols["occupied"])

	assert.Empty(t, unitPatchColumns(models.UnitPatch{}))
}

func TestPropertyPatchColumns(t *testing.T) {
	name := "New"
	status := models.PropertyStatusInactive
	cols := propertyPatchColumns(models.PropertyPatch{
		Name:      &name,
		Status:    &status,
		Address:   &models.Address{City: "Reno"},
		Utilities: &models.Utilities{Internet: models.PayerTenant},
	})

	assert.Equal(t, "New", cols["name"])
	assert.Equal(t, "inactive", cols["status"])
	assert.Equal(t, "Reno", cols["city"])
	assert.Equal(t, "", cols["address_line1"], "address is replaced as a whole")
	require.IsType(t, models.Utilities{}, cols["utilities"])
	assert.Equal(t, models.PayerLandlord, cols["utilities"].(models.Utilities).Water)
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := buildUpdate("units", "u-1", map[string]interface{}{
		"photos": []string{"a.jpg"},
		"name":   "Apt",
	})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE units SET name = $1, photos = $2, updated_at = NOW() WHERE id = $3", query)
	require.Len(t, args, 3)
	assert.Equal(t, "Apt", args[0])
	assert.Equal(t, pq.StringArray{"a.jpg"}, args[1])
	assert.Equal(t, "u-1", args[2])
}

func TestBuildUpdateEncodesUtilities(t *testing.T) {
	_, args, err := buildUpdate("properties", "p-1", map[string]interface{}{
		"utilities": models.DefaultUtilities(),
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"electricity":"landlord","heat_gas":"landlord","water":"landlord","internet":"landlord","rental_equipment":"landlord"}`,
		string(args[0].([]byte)))
}

func TestGormColumnValues(t *testing.T) {
	out, err := gormColumnValues(map[string]interface{}{
		"photos":   []string{"a", "b"},
		"occupied": true,
	})
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, out["photos"])
	assert.Equal(t, true, out["occupied"])
}
