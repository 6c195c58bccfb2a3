package database

import (
	"context"
	"testing"
	"time"

	"rental-manager/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement GORM renders
type sqlRecorder struct {
	logger.Interface
	stmts []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.stmts = append(r.stmts, sql)
}

// newDryRunDB builds statements without touching a server
func newDryRunDB(t *testing.T) (*GormDB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{Interface: logger.Discard}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "rental_user:rental_pass@tcp(127.0.0.1:3306)/rental_db?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return NewGormDBFromDB(db), rec
}

func TestGormCreateUnitAssignsID(t *testing.T) {
	gdb, rec := newDryRunDB(t)
	rent := 1800.0

	u, err := gdb.CreateUnit(context.Background(), "prop-1", models.Unit{
		Name:      "2B",
		RentPrice: &rent,
		Photos:    []string{"a.jpg"},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.SyncSynced, u.Sync)
	assert.Equal(t, "2B", u.Name)

	require.Len(t, rec.stmts, 1)
	assert.Contains(t, rec.stmts[0], "INSERT INTO `units`")
	assert.Contains(t, rec.stmts[0], "'prop-1'")
	assert.Contains(t, rec.stmts[0], `["a.jpg"]`)
}

func TestGormListQueriesFilterAndOrder(t *testing.T) {
	gdb, rec := newDryRunDB(t)
	ctx := context.Background()

	props, err := gdb.ListProperties(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, props)
	_, err = gdb.ListUnits(ctx, "prop-1")
	require.NoError(t, err)
	_, err = gdb.ListSubUnits(ctx, "unit-1")
	require.NoError(t, err)

	require.Len(t, rec.stmts, 3)
	assert.Equal(t, "SELECT * FROM `properties` WHERE owner_id = 'owner-1' ORDER BY created_at ASC", rec.stmts[0])
	assert.Equal(t, "SELECT * FROM `units` WHERE property_id = 'prop-1' ORDER BY created_at ASC", rec.stmts[1])
	assert.Equal(t, "SELECT * FROM `sub_units` WHERE unit_id = 'unit-1' ORDER BY created_at ASC", rec.stmts[2])
}

func TestGormDeleteMissingRowIsNotFound(t *testing.T) {
	gdb, rec := newDryRunDB(t)

	err := gdb.DeleteSubUnit(context.Background(), "room-1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, rec.stmts, 1)
	assert.Equal(t, "DELETE FROM `sub_units` WHERE id = 'room-1'", rec.stmts[0])
}

func TestGormDeleteUnitRemovesRoomsFirst(t *testing.T) {
	gdb, rec := newDryRunDB(t)

	err := deleteUnitTx(gdb.DB(), "unit-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{
		"DELETE FROM `sub_units` WHERE unit_id = 'unit-1'",
		"DELETE FROM `units` WHERE id = 'unit-1'",
	}, rec.stmts)
}

func TestGormDeletePropertyLooksUpUnits(t *testing.T) {
	gdb, rec := newDryRunDB(t)

	err := deletePropertyTx(gdb.DB(), "prop-1")
	assert.ErrorIs(t, err, ErrNotFound)
	// no units come back from a dry run, so the cascade goes straight to the property
	assert.Equal(t, []string{
		"SELECT `id` FROM `units` WHERE property_id = 'prop-1'",
		"DELETE FROM `properties` WHERE id = 'prop-1'",
	}, rec.stmts)
}

func TestGormEmptyUpdateIsNoop(t *testing.T) {
	gdb, rec := newDryRunDB(t)

	require.NoError(t, gdb.UpdateUnit(context.Background(), "unit-1", models.UnitPatch{}))
	assert.Empty(t, rec.stmts)
}
