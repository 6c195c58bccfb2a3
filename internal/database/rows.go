package database

import (
	"errors"
	"sort"
	"time"

	"rental-manager/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an update or delete matches no row
var ErrNotFound = errors.New("record not found")

// PropertyRow is the persisted form of a property
type PropertyRow struct {
	ID      string `gorm:"primaryKey;type:varchar(36)"`
	OwnerID string `gorm:"type:varchar(64);index;not null"`

	// 所在地
	AddressLine1 string `gorm:"type:varchar(255)"`
	AddressLine2 string `gorm:"type:varchar(255)"`
	City         string `gorm:"type:varchar(100)"`
	State        string `gorm:"type:varchar(100)"`
	PostalCode   string `gorm:"type:varchar(20)"`
	Country      string `gorm:"type:varchar(100)"`

	Name         string `gorm:"type:varchar(255)"`
	PropertyType string `gorm:"type:varchar(20);not null"`
	LandlordName string `gorm:"type:varchar(255)"`

	RentWholeProperty bool
	RentAmount        *float64 `gorm:"type:decimal(12,2)"`
	ParkingIncluded   bool

	Photos    []string         `gorm:"serializer:json;type:json"`
	Utilities models.Utilities `gorm:"serializer:json;type:json"`
	Status    string           `gorm:"type:varchar(20);default:'active';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PropertyRow) TableName() string { return "properties" }

// BeforeCreate assigns the backend id
func (r *PropertyRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// UnitRow is the persisted form of a unit
type UnitRow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	PropertyID string `gorm:"type:varchar(36);index;not null"`

	Name        string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:text"`
	UnitType    string `gorm:"type:varchar(50)"`
	Bedrooms    *int
	Bathrooms   *float64 `gorm:"type:decimal(4,1)"`
	Area        *float64 `gorm:"type:decimal(10,2)"`

	RentWholeUnit bool
	RentPrice     *float64 `gorm:"type:decimal(12,2)"`

	AvailableDate *time.Time
	LeaseStart    *time.Time
	LeaseEnd      *time.Time

	Photos            []string `gorm:"serializer:json;type:json"`
	AmenityLaundry    bool
	AmenityBalcony    bool
	AmenityDishwasher bool
	AmenityParking    bool
	Occupied          bool
	TenantID          string `gorm:"type:varchar(64)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UnitRow) TableName() string { return "units" }

func (r *UnitRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SubUnitRow is the persisted form of a room
type SubUnitRow struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	UnitID string `gorm:"type:varchar(36);index;not null"`

	Name          string   `gorm:"type:varchar(255)"`
	RoomType      string   `gorm:"type:varchar(20)"`
	RentPrice     *float64 `gorm:"type:decimal(12,2)"`
	Area          *float64 `gorm:"type:decimal(10,2)"`
	AvailableDate *time.Time

	Photos       []string `gorm:"serializer:json;type:json"`
	Amenities    []string `gorm:"serializer:json;type:json"`
	SharedSpaces []string `gorm:"serializer:json;type:json"`

	TenantID   string `gorm:"type:varchar(64)"`
	TenantName string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubUnitRow) TableName() string { return "sub_units" }

func (r *SubUnitRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// propertyToRow maps a property to a new row. The id is left for the backend to assign.
func propertyToRow(ownerID string, p models.Property) PropertyRow {
	return PropertyRow{
		OwnerID:           ownerID,
		AddressLine1:      p.Address.Line1,
		AddressLine2:      p.Address.Line2,
		City:              p.Address.City,
		State:             p.Address.State,
		PostalCode:        p.Address.PostalCode,
		Country:           p.Address.Country,
		Name:              p.Name,
		PropertyType:      string(p.Type),
		LandlordName:      p.LandlordName,
		RentWholeProperty: p.RentWholeProperty,
		RentAmount:        p.RentAmount,
		ParkingIncluded:   p.ParkingIncluded,
		Photos:            p.Photos,
		Utilities:         p.Utilities.Normalize(),
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}

func propertyFromRow(r PropertyRow) models.Property {
	return models.Property{
		ID:   r.ID,
		Sync: models.SyncSynced,
		Address: models.Address{
			Line1:      r.AddressLine1,
			Line2:      r.AddressLine2,
			City:       r.City,
			State:      r.State,
			PostalCode: r.PostalCode,
			Country:    r.Country,
		},
		Name:              r.Name,
		Type:              models.PropertyType(r.PropertyType),
		LandlordName:      r.LandlordName,
		RentWholeProperty: r.RentWholeProperty,
		RentAmount:        r.RentAmount,
		ParkingIncluded:   r.ParkingIncluded,
		Photos:            r.Photos,
		Utilities:         r.Utilities.Normalize(),
		Status:            models.PropertyStatus(r.Status),
		CreatedAt:         r.CreatedAt,
	}
}

func unitToRow(propertyID string, u models.Unit) UnitRow {
	return UnitRow{
		PropertyID:        propertyID,
		Name:              u.Name,
		Description:       u.Description,
		UnitType:          u.Type,
		Bedrooms:          u.Bedrooms,
		Bathrooms:         u.Bathrooms,
		Area:              u.Area,
		RentWholeUnit:     u.RentWholeUnit,
		RentPrice:         u.RentPrice,
		AvailableDate:     u.AvailableDate,
		LeaseStart:        u.LeaseStart,
		LeaseEnd:          u.LeaseEnd,
		Photos:            u.Photos,
		AmenityLaundry:    u.Amenities.Laundry,
		AmenityBalcony:    u.Amenities.Balcony,
		AmenityDishwasher: u.Amenities.Dishwasher,
		AmenityParking:    u.Amenities.Parking,
		Occupied:          u.Occupied,
		TenantID:          u.TenantID,
	}
}

// unitFromRow decodes a unit row. A whole-unit rental stored without a price
// reads back with a zero price, the same default NewUnit and UnitPatch.Apply use.
func unitFromRow(r UnitRow) models.Unit {
	u := models.Unit{
		ID:            r.ID,
		Sync:          models.SyncSynced,
		Name:          r.Name,
		Description:   r.Description,
		Type:          r.UnitType,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		Area:          r.Area,
		RentWholeUnit: r.RentWholeUnit,
		RentPrice:     r.RentPrice,
		AvailableDate: r.AvailableDate,
		LeaseStart:    r.LeaseStart,
		LeaseEnd:      r.LeaseEnd,
		Photos:        r.Photos,
		Amenities: models.UnitAmenities{
			Laundry:    r.AmenityLaundry,
			Balcony:    r.AmenityBalcony,
			Dishwasher: r.AmenityDishwasher,
			Parking:    r.AmenityParking,
		},
		Occupied: r.Occupied,
		TenantID: r.TenantID,
	}
	if u.RentWholeUnit && u.RentPrice == nil {
		zero := 0.0
		u.RentPrice = &zero
	}
	return u
}

func subUnitToRow(unitID string, s models.SubUnit) SubUnitRow {
	return SubUnitRow{
		UnitID:        unitID,
		Name:          s.Name,
		RoomType:      string(s.RoomType),
		RentPrice:     s.RentPrice,
		Area:          s.Area,
		AvailableDate: s.AvailableDate,
		Photos:        s.Photos,
		Amenities:     s.Amenities,
		SharedSpaces:  s.SharedSpaces,
		TenantID:      s.TenantID,
		TenantName:    s.TenantName,
	}
}

func subUnitFromRow(r SubUnitRow) models.SubUnit {
	return models.SubUnit{
		ID:            r.ID,
		Sync:          models.SyncSynced,
		Name:          r.Name,
		RoomType:      models.NormalizeRoomType(models.RoomType(r.RoomType)),
		RentPrice:     r.RentPrice,
		Area:          r.Area,
		AvailableDate: r.AvailableDate,
		Photos:        r.Photos,
		Amenities:     r.Amenities,
		SharedSpaces:  r.SharedSpaces,
		TenantID:      r.TenantID,
		TenantName:    r.TenantName,
	}
}

// propertyPatchColumns maps a patch to column values. Slices and structs are
// passed through; each gateway encodes them for its driver.
func propertyPatchColumns(pp models.PropertyPatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if pp.Address != nil {
		cols["address_line1"] = pp.Address.Line1
		cols["address_line2"] = pp.Address.Line2
		cols["city"] = pp.Address.City
		cols["state"] = pp.Address.State
		cols["postal_code"] = pp.Address.PostalCode
		cols["country"] = pp.Address.Country
	}
	if pp.Name != nil {
		cols["name"] = *pp.Name
	}
	if pp.Type != nil {
		cols["property_type"] = string(*pp.Type)
	}
	if pp.LandlordName != nil {
		cols["landlord_name"] = *pp.LandlordName
	}
	if pp.RentWholeProperty != nil {
		cols["rent_whole_property"] = *pp.RentWholeProperty
	}
	if pp.RentAmount != nil {
		cols["rent_amount"] = *pp.RentAmount
	}
	if pp.ParkingIncluded != nil {
		cols["parking_included"] = *pp.ParkingIncluded
	}
	if pp.Photos != nil {
		cols["photos"] = pp.Photos
	}
	if pp.Utilities != nil {
		cols["utilities"] = pp.Utilities.Normalize()
	}
	if pp.Status != nil {
		cols["status"] = string(*pp.Status)
	}
	return cols
}

// unitPatchColumns mirrors UnitPatch.Apply, including the tenant/occupied coupling.
// The whole-unit zero price is not written here since the current remote price
// is unknown; unitFromRow applies it on read.
func unitPatchColumns(up models.UnitPatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if up.Name != nil {
		cols["name"] = *up.Name
	}
	if up.Description != nil {
		cols["description"] = *up.Description
	}
	if up.Type != nil {
		cols["unit_type"] = *up.Type
	}
	if up.Bedrooms != nil {
		cols["bedrooms"] = *up.Bedrooms
	}
	if up.Bathrooms != nil {
		cols["bathrooms"] = *up.Bathrooms
	}
	if up.Area != nil {
		cols["area"] = *up.Area
	}
	if up.RentWholeUnit != nil {
		cols["rent_whole_unit"] = *up.RentWholeUnit
	}
	if up.RentPrice != nil {
		cols["rent_price"] = *up.RentPrice
	}
	if up.AvailableDate != nil {
		cols["available_date"] = *up.AvailableDate
	}
	if up.LeaseStart != nil {
		cols["lease_start"] = *up.LeaseStart
	}
	if up.LeaseEnd != nil {
		cols["lease_end"] = *up.LeaseEnd
	}
	if up.Photos != nil {
		cols["photos"] = up.Photos
	}
	if up.Amenities != nil {
		cols["amenity_laundry"] = up.Amenities.Laundry
		cols["amenity_balcony"] = up.Amenities.Balcony
		cols["amenity_dishwasher"] = up.Amenities.Dishwasher
		cols["amenity_parking"] = up.Amenities.Parking
	}
	if up.TenantID != nil {
		cols["tenant_id"] = *up.TenantID
		cols["occupied"] = *up.TenantID != ""
	}
	if up.Occupied != nil {
		cols["occupied"] = *up.Occupied
	}
	return cols
}

func subUnitPatchColumns(sp models.SubUnitPatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if sp.Name != nil {
		cols["name"] = *sp.Name
	}
	if sp.RoomType != nil {
		cols["room_type"] = string(models.NormalizeRoomType(*sp.RoomType))
	}
	if sp.RentPrice != nil {
		cols["rent_price"] = *sp.RentPrice
	}
	if sp.Area != nil {
		cols["area"] = *sp.Area
	}
	if sp.AvailableDate != nil {
		cols["available_date"] = *sp.AvailableDate
	}
	if sp.Photos != nil {
		cols["photos"] = sp.Photos
	}
	if sp.Amenities != nil {
		cols["amenities"] = sp.Amenities
	}
	if sp.SharedSpaces != nil {
		cols["shared_spaces"] = sp.SharedSpaces
	}
	if sp.TenantID != nil {
		cols["tenant_id"] = *sp.TenantID
	}
	if sp.TenantName != nil {
		cols["tenant_name"] = *sp.TenantName
	}
	return cols
}

func sortedColumns(cols map[string]interface{}) []string {
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
