package database

import (
	"context"
	"os"
	"testing"

	"rental-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the Postgres named by RENTAL_TEST_PG_HOST, or skips
func openTestDB(t *testing.T) *DB {
	t.Helper()
	host := os.Getenv("RENTAL_TEST_PG_HOST")
	if host == "" {
		t.Skip("RENTAL_TEST_PG_HOST not set")
	}
	env := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	db, err := NewDB(host,
		env("RENTAL_TEST_PG_PORT", "5432"),
		env("RENTAL_TEST_PG_USER", "rental_user"),
		env("RENTAL_TEST_PG_PASSWORD", "rental_pass"),
		env("RENTAL_TEST_PG_DB", "rental_test"),
	)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresHierarchyRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := "pg-test-" + t.Name()

	p, err := db.CreateProperty(ctx, owner, models.Property{
		Address: models.Address{Line1: "9 Elm", City: "Austin"},
		Type:    models.PropertyTypeMultiUnit,
		Photos:  []string{"front.jpg"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.DeleteProperty(context.Background(), p.ID) })
	assert.Equal(t, models.PropertyStatusActive, p.Status)
	assert.False(t, p.CreatedAt.IsZero())

	u, err := db.CreateUnit(ctx, p.ID, models.Unit{Name: "1A", RentWholeUnit: true})
	require.NoError(t, err)
	r, err := db.CreateSubUnit(ctx, u.ID, models.SubUnit{Name: "Front", RoomType: models.RoomTypeBedroom, Amenities: []string{"closet"}})
	require.NoError(t, err)

	props, err := db.ListProperties(ctx, owner)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, []string{"front.jpg"}, props[0].Photos)

	units, err := db.ListUnits(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.NotNil(t, units[0].RentPrice)
	assert.Zero(t, *units[0].RentPrice)

	rooms, err := db.ListSubUnits(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, r.ID, rooms[0].ID)
	assert.Equal(t, []string{"closet"}, rooms[0].Amenities)

	require.NoError(t, db.DeleteProperty(ctx, p.ID))
	rooms, err = db.ListSubUnits(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms, "rooms cascade with the property")
	assert.ErrorIs(t, db.DeleteUnit(ctx, u.ID), ErrNotFound)
}
