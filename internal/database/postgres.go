package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"rental-manager/internal/models"

	"github.com/lib/pq"
)

// DB is the Postgres gateway
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the properties, units and sub_units tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	CREATE TABLE IF NOT EXISTS properties (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id TEXT NOT NULL,

		-- Address
		address_line1 TEXT NOT NULL DEFAULT '',
		address_line2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		postal_code VARCHAR(20) NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',

		name TEXT NOT NULL DEFAULT '',
		property_type VARCHAR(20) NOT NULL,
		landlord_name TEXT NOT NULL DEFAULT '',
		rent_whole_property BOOLEAN NOT NULL DEFAULT FALSE,
		rent_amount NUMERIC(12, 2),
		parking_included BOOLEAN NOT NULL DEFAULT FALSE,
		photos TEXT[] NOT NULL DEFAULT '{}',
		utilities JSONB NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL DEFAULT 'active',

		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS units (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		unit_type VARCHAR(50) NOT NULL DEFAULT '',
		bedrooms INTEGER,
		bathrooms NUMERIC(4, 1),
		area NUMERIC(10, 2),
		rent_whole_unit BOOLEAN NOT NULL DEFAULT FALSE,
		rent_price NUMERIC(12, 2),
		available_date TIMESTAMPTZ,
		lease_start TIMESTAMPTZ,
		lease_end TIMESTAMPTZ,
		photos TEXT[] NOT NULL DEFAULT '{}',
		amenity_laundry BOOLEAN NOT NULL DEFAULT FALSE,
		amenity_balcony BOOLEAN NOT NULL DEFAULT FALSE,
		amenity_dishwasher BOOLEAN NOT NULL DEFAULT FALSE,
		amenity_parking BOOLEAN NOT NULL DEFAULT FALSE,
		occupied BOOLEAN NOT NULL DEFAULT FALSE,
		tenant_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sub_units (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		unit_id UUID NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		room_type VARCHAR(20) NOT NULL DEFAULT 'other',
		rent_price NUMERIC(12, 2),
		area NUMERIC(10, 2),
		available_date TIMESTAMPTZ,
		photos TEXT[] NOT NULL DEFAULT '{}',
		amenities TEXT[] NOT NULL DEFAULT '{}',
		shared_spaces TEXT[] NOT NULL DEFAULT '{}',
		tenant_id TEXT NOT NULL DEFAULT '',
		tenant_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_owner_id ON properties(owner_id);
	CREATE INDEX IF NOT EXISTS idx_units_property_id ON units(property_id);
	CREATE INDEX IF NOT EXISTS idx_sub_units_unit_id ON sub_units(unit_id);
	`
	_, err := db.conn.Exec(query)
	return err
}

// CreateProperty inserts a property and returns it with the id Postgres assigned
func (db *DB) CreateProperty(ctx context.Context, ownerID string, p models.Property) (models.Property, error) {
	r := propertyToRow(ownerID, p)
	utilities, err := json.Marshal(r.Utilities)
	if err != nil {
		return models.Property{}, err
	}
	if r.Status == "" {
		r.Status = string(models.PropertyStatusActive)
	}

	query := `
	INSERT INTO properties (
		owner_id, address_line1, address_line2, city, state, postal_code, country,
		name, property_type, landlord_name, rent_whole_property, rent_amount, parking_included,
		photos, utilities, status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING id, created_at
	`
	err = db.conn.QueryRowContext(ctx, query,
		r.OwnerID, r.AddressLine1, r.AddressLine2, r.City, r.State, r.PostalCode, r.Country,
		r.Name, r.PropertyType, r.LandlordName, r.RentWholeProperty, r.RentAmount, r.ParkingIncluded,
		pq.StringArray(r.Photos), utilities, r.Status,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return models.Property{}, err
	}
	return propertyFromRow(r), nil
}

func (db *DB) UpdateProperty(ctx context.Context, id string, patch models.PropertyPatch) error {
	return db.update(ctx, "properties", id, propertyPatchColumns(patch))
}

// DeleteProperty removes the property; units and rooms go with it via ON DELETE CASCADE
func (db *DB) DeleteProperty(ctx context.Context, id string) error {
	return db.delete(ctx, "properties", id)
}

// ListProperties returns the owner's properties, oldest first, without units
func (db *DB) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	query := `
		SELECT id, owner_id, address_line1, address_line2, city, state, postal_code, country,
			   name, property_type, landlord_name, rent_whole_property, rent_amount, parking_included,
			   photos, utilities, status, created_at, updated_at
		FROM properties
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		var r PropertyRow
		var photos pq.StringArray
		var utilities []byte
		err := rows.Scan(
			&r.ID, &r.OwnerID, &r.AddressLine1, &r.AddressLine2, &r.City, &r.State, &r.PostalCode, &r.Country,
			&r.Name, &r.PropertyType, &r.LandlordName, &r.RentWholeProperty, &r.RentAmount, &r.ParkingIncluded,
			&photos, &utilities, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.Photos = photos
		if err := json.Unmarshal(utilities, &r.Utilities); err != nil {
			return nil, fmt.Errorf("decode utilities of property %s: %w", r.ID, err)
		}
		properties = append(properties, propertyFromRow(r))
	}

	return properties, rows.Err()
}

func (db *DB) CreateUnit(ctx context.Context, propertyID string, u models.Unit) (models.Unit, error) {
	r := unitToRow(propertyID, u)
	query := `
	INSERT INTO units (
		property_id, name, description, unit_type, bedrooms, bathrooms, area,
		rent_whole_unit, rent_price, available_date, lease_start, lease_end, photos,
		amenity_laundry, amenity_balcony, amenity_dishwasher, amenity_parking, occupied, tenant_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING id, created_at
	`
	err := db.conn.QueryRowContext(ctx, query,
		r.PropertyID, r.Name, r.Description, r.UnitType, r.Bedrooms, r.Bathrooms, r.Area,
		r.RentWholeUnit, r.RentPrice, r.AvailableDate, r.LeaseStart, r.LeaseEnd, pq.StringArray(r.Photos),
		r.AmenityLaundry, r.AmenityBalcony, r.AmenityDishwasher, r.AmenityParking, r.Occupied, r.TenantID,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return models.Unit{}, err
	}
	return unitFromRow(r), nil
}

func (db *DB) UpdateUnit(ctx context.Context, id string, patch models.UnitPatch) error {
	return db.update(ctx, "units", id, unitPatchColumns(patch))
}

func (db *DB) DeleteUnit(ctx context.Context, id string) error {
	return db.delete(ctx, "units", id)
}

func (db *DB) ListUnits(ctx context.Context, propertyID string) ([]models.Unit, error) {
	query := `
		SELECT id, property_id, name, description, unit_type, bedrooms, bathrooms, area,
			   rent_whole_unit, rent_price, available_date, lease_start, lease_end, photos,
			   amenity_laundry, amenity_balcony, amenity_dishwasher, amenity_parking, occupied, tenant_id,
			   created_at, updated_at
		FROM units
		WHERE property_id = $1
		ORDER BY created_at ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		var r UnitRow
		var photos pq.StringArray
		err := rows.Scan(
			&r.ID, &r.PropertyID, &r.Name, &r.Description, &r.UnitType, &r.Bedrooms, &r.Bathrooms, &r.Area,
			&r.RentWholeUnit, &r.RentPrice, &r.AvailableDate, &r.LeaseStart, &r.LeaseEnd, &photos,
			&r.AmenityLaundry, &r.AmenityBalcony, &r.AmenityDishwasher, &r.AmenityParking, &r.Occupied, &r.TenantID,
			&r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.Photos = photos
		units = append(units, unitFromRow(r))
	}

	return units, rows.Err()
}

func (db *DB) CreateSubUnit(ctx context.Context, unitID string, s models.SubUnit) (models.SubUnit, error) {
	r := subUnitToRow(unitID, s)
	query := `
	INSERT INTO sub_units (
		unit_id, name, room_type, rent_price, area, available_date,
		photos, amenities, shared_spaces, tenant_id, tenant_name
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, created_at
	`
	err := db.conn.QueryRowContext(ctx, query,
		r.UnitID, r.Name, r.RoomType, r.RentPrice, r.Area, r.AvailableDate,
		pq.StringArray(r.Photos), pq.StringArray(r.Amenities), pq.StringArray(r.SharedSpaces),
		r.TenantID, r.TenantName,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return models.SubUnit{}, err
	}
	return subUnitFromRow(r), nil
}

func (db *DB) UpdateSubUnit(ctx context.Context, id string, patch models.SubUnitPatch) error {
	return db.update(ctx, "sub_units", id, subUnitPatchColumns(patch))
}

func (db *DB) DeleteSubUnit(ctx context.Context, id string) error {
	return db.delete(ctx, "sub_units", id)
}

func (db *DB) ListSubUnits(ctx context.Context, unitID string) ([]models.SubUnit, error) {
	query := `
		SELECT id, unit_id, name, room_type, rent_price, area, available_date,
			   photos, amenities, shared_spaces, tenant_id, tenant_name, created_at, updated_at
		FROM sub_units
		WHERE unit_id = $1
		ORDER BY created_at ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subUnits := []models.SubUnit{}
	for rows.Next() {
		var r SubUnitRow
		var photos, amenities, shared pq.StringArray
		err := rows.Scan(
			&r.ID, &r.UnitID, &r.Name, &r.RoomType, &r.RentPrice, &r.Area, &r.AvailableDate,
			&photos, &amenities, &shared, &r.TenantID, &r.TenantName, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.Photos, r.Amenities, r.SharedSpaces = photos, amenities, shared
		subUnits = append(subUnits, subUnitFromRow(r))
	}

	return subUnits, rows.Err()
}

func (db *DB) update(ctx context.Context, table, id string, cols map[string]interface{}) error {
	if len(cols) == 0 {
		return nil
	}
	query, args, err := buildUpdate(table, id, cols)
	if err != nil {
		return err
	}
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (db *DB) delete(ctx context.Context, table, id string) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpdate renders an UPDATE for the given columns in sorted order.
// Lists become Postgres arrays and utilities become JSONB.
func buildUpdate(table, id string, cols map[string]interface{}) (string, []interface{}, error) {
	keys := sortedColumns(cols)
	sets := make([]string, 0, len(keys)+1)
	args := make([]interface{}, 0, len(keys)+1)
	for i, k := range keys {
		v := cols[k]
		switch val := v.(type) {
		case []string:
			v = pq.StringArray(val)
		case models.Utilities:
			b, err := json.Marshal(val)
			if err != nil {
				return "", nil, fmt.Errorf("encode %s: %w", k, err)
			}
			v = b
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, v)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(keys)+1)
	return query, args, nil
}
