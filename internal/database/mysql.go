package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rental-manager/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB is the MySQL gateway
type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&PropertyRow{},
		&UnitRow{},
		&SubUnitRow{},
	)
}

// CreateProperty inserts a property owned by ownerID and returns it with its backend id
func (gdb *GormDB) CreateProperty(ctx context.Context, ownerID string, p models.Property) (models.Property, error) {
	row := propertyToRow(ownerID, p)
	if err := gdb.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Property{}, err
	}
	return propertyFromRow(row), nil
}

func (gdb *GormDB) UpdateProperty(ctx context.Context, id string, patch models.PropertyPatch) error {
	return gdb.update(ctx, &PropertyRow{}, id, propertyPatchColumns(patch))
}

// DeleteProperty removes the property with its units and rooms in one transaction
func (gdb *GormDB) DeleteProperty(ctx context.Context, id string) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePropertyTx(tx, id)
	})
}

func deletePropertyTx(tx *gorm.DB, id string) error {
	var unitIDs []string
	if err := tx.Model(&UnitRow{}).Where("property_id = ?", id).Pluck("id", &unitIDs).Error; err != nil {
		return err
	}
	if len(unitIDs) > 0 {
		if err := tx.Where("unit_id IN ?", unitIDs).Delete(&SubUnitRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&UnitRow{}).Error; err != nil {
			return err
		}
	}
	return affectedOne(tx.Where("id = ?", id).Delete(&PropertyRow{}))
}

// ListProperties returns the owner's properties, oldest first, without units
func (gdb *GormDB) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	var rows []PropertyRow
	err := gdb.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Property, 0, len(rows))
	for _, r := range rows {
		out = append(out, propertyFromRow(r))
	}
	return out, nil
}

func (gdb *GormDB) CreateUnit(ctx context.Context, propertyID string, u models.Unit) (models.Unit, error) {
	row := unitToRow(propertyID, u)
	if err := gdb.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Unit{}, err
	}
	return unitFromRow(row), nil
}

func (gdb *GormDB) UpdateUnit(ctx context.Context, id string, patch models.UnitPatch) error {
	return gdb.update(ctx, &UnitRow{}, id, unitPatchColumns(patch))
}

// DeleteUnit removes the unit and its rooms
func (gdb *GormDB) DeleteUnit(ctx context.Context, id string) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUnitTx(tx, id)
	})
}

func deleteUnitTx(tx *gorm.DB, id string) error {
	if err := tx.Where("unit_id = ?", id).Delete(&SubUnitRow{}).Error; err != nil {
		return err
	}
	return affectedOne(tx.Where("id = ?", id).Delete(&UnitRow{}))
}

func (gdb *GormDB) ListUnits(ctx context.Context, propertyID string) ([]models.Unit, error) {
	var rows []UnitRow
	err := gdb.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Unit, 0, len(rows))
	for _, r := range rows {
		out = append(out, unitFromRow(r))
	}
	return out, nil
}

func (gdb *GormDB) CreateSubUnit(ctx context.Context, unitID string, s models.SubUnit) (models.SubUnit, error) {
	row := subUnitToRow(unitID, s)
	if err := gdb.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.SubUnit{}, err
	}
	return subUnitFromRow(row), nil
}

func (gdb *GormDB) UpdateSubUnit(ctx context.Context, id string, patch models.SubUnitPatch) error {
	return gdb.update(ctx, &SubUnitRow{}, id, subUnitPatchColumns(patch))
}

func (gdb *GormDB) DeleteSubUnit(ctx context.Context, id string) error {
	return affectedOne(gdb.db.WithContext(ctx).Where("id = ?", id).Delete(&SubUnitRow{}))
}

func (gdb *GormDB) ListSubUnits(ctx context.Context, unitID string) ([]models.SubUnit, error) {
	var rows []SubUnitRow
	err := gdb.db.WithContext(ctx).Where("unit_id = ?", unitID).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.SubUnit, 0, len(rows))
	for _, r := range rows {
		out = append(out, subUnitFromRow(r))
	}
	return out, nil
}

// update applies column values to one row. An empty patch is a no-op.
func (gdb *GormDB) update(ctx context.Context, model interface{}, id string, cols map[string]interface{}) error {
	if len(cols) == 0 {
		return nil
	}
	values, err := gormColumnValues(cols)
	if err != nil {
		return err
	}
	return affectedOne(gdb.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(values))
}

// affectedOne maps a statement that touched no row to ErrNotFound
func affectedOne(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// gormColumnValues encodes list and struct values as JSON for the json columns
func gormColumnValues(cols map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(cols))
	for k, v := range cols {
		switch v.(type) {
		case []string, models.Utilities:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", k, err)
			}
			out[k] = string(b)
		default:
			out[k] = v
		}
	}
	return out, nil
}
