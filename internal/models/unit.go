package models

import "time"

// MainUnitName is the name of the implicit unit created for undivided properties
const MainUnitName = "Main Unit"

// Unit is a rentable subdivision of a property
type Unit struct {
	ID   string    `json:"id"`
	Sync SyncState `json:"sync"`

	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *float64 `json:"bathrooms,omitempty"`
	Area        *float64 `json:"area,omitempty"`

	RentWholeUnit bool     `json:"rent_whole_unit"`
	RentPrice     *float64 `json:"rent_price,omitempty"`

	AvailableDate *time.Time `json:"available_date,omitempty"`
	LeaseStart    *time.Time `json:"lease_start,omitempty"`
	LeaseEnd      *time.Time `json:"lease_end,omitempty"`

	Photos    []string      `json:"photos,omitempty"`
	Amenities UnitAmenities `json:"amenities"`
	Occupied  bool          `json:"occupied"`
	TenantID  string        `json:"tenant_id,omitempty"`
	SubUnits  []SubUnit     `json:"sub_units"`
}

// UnitAmenities are the amenity flags tracked per unit
type UnitAmenities struct {
	Laundry    bool `json:"laundry"`
	Balcony    bool `json:"balcony"`
	Dishwasher bool `json:"dishwasher"`
	Parking    bool `json:"parking"`
}

// Clone returns a deep copy of the unit and its rooms
func (u Unit) Clone() Unit {
	out := u
	out.Bedrooms = cloneInt(u.Bedrooms)
	out.Bathrooms = cloneFloat(u.Bathrooms)
	out.Area = cloneFloat(u.Area)
	out.RentPrice = cloneFloat(u.RentPrice)
	out.AvailableDate = cloneTime(u.AvailableDate)
	out.LeaseStart = cloneTime(u.LeaseStart)
	out.LeaseEnd = cloneTime(u.LeaseEnd)
	out.Photos = cloneStrings(u.Photos)
	if u.SubUnits != nil {
		out.SubUnits = make([]SubUnit, len(u.SubUnits))
		for i := range u.SubUnits {
			out.SubUnits[i] = u.SubUnits[i].Clone()
		}
	}
	return out
}

// UnitDraft carries caller-supplied fields for a new unit
type UnitDraft struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Type          string        `json:"type"`
	Bedrooms      *int          `json:"bedrooms"`
	Bathrooms     *float64      `json:"bathrooms"`
	Area          *float64      `json:"area"`
	RentWholeUnit bool          `json:"rent_whole_unit"`
	RentPrice     *float64      `json:"rent_price"`
	AvailableDate *time.Time    `json:"available_date"`
	LeaseStart    *time.Time    `json:"lease_start"`
	LeaseEnd      *time.Time    `json:"lease_end"`
	Photos        []string      `json:"photos"`
	Amenities     UnitAmenities `json:"amenities"`
}

// NewUnit builds a pending, vacant unit with no rooms.
// A whole-unit rental without a price gets a zero price.
func NewUnit(id string, d UnitDraft) Unit {
	u := Unit{
		ID:            id,
		Sync:          SyncPending,
		Name:          d.Name,
		Description:   d.Description,
		Type:          d.Type,
		Bedrooms:      cloneInt(d.Bedrooms),
		Bathrooms:     cloneFloat(d.Bathrooms),
		Area:          cloneFloat(d.Area),
		RentWholeUnit: d.RentWholeUnit,
		RentPrice:     cloneFloat(d.RentPrice),
		AvailableDate: cloneTime(d.AvailableDate),
		LeaseStart:    cloneTime(d.LeaseStart),
		LeaseEnd:      cloneTime(d.LeaseEnd),
		Photos:        cloneStrings(d.Photos),
		Amenities:     d.Amenities,
		Occupied:      false,
		SubUnits:      []SubUnit{},
	}
	if u.RentWholeUnit && u.RentPrice == nil {
		zero := 0.0
		u.RentPrice = &zero
	}
	return u
}

// UnitPatch is a partial update. Nil fields are left untouched.
type UnitPatch struct {
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Type          *string        `json:"type,omitempty"`
	Bedrooms      *int           `json:"bedrooms,omitempty"`
	Bathrooms     *float64       `json:"bathrooms,omitempty"`
	Area          *float64       `json:"area,omitempty"`
	RentWholeUnit *bool          `json:"rent_whole_unit,omitempty"`
	RentPrice     *float64       `json:"rent_price,omitempty"`
	AvailableDate *time.Time     `json:"available_date,omitempty"`
	LeaseStart    *time.Time     `json:"lease_start,omitempty"`
	LeaseEnd      *time.Time     `json:"lease_end,omitempty"`
	Photos        []string       `json:"photos,omitempty"`
	Amenities     *UnitAmenities `json:"amenities,omitempty"`
	Occupied      *bool          `json:"occupied,omitempty"`
	TenantID      *string        `json:"tenant_id,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (up UnitPatch) IsEmpty() bool {
	return up.Name == nil && up.Description == nil && up.Type == nil && up.Bedrooms == nil &&
		up.Bathrooms == nil && up.Area == nil && up.RentWholeUnit == nil && up.RentPrice == nil &&
		up.AvailableDate == nil && up.LeaseStart == nil && up.LeaseEnd == nil && up.Photos == nil &&
		up.Amenities == nil && up.Occupied == nil && up.TenantID == nil
}

// Apply merges the patch into u. Rooms are never touched.
// Assigning a tenant marks the unit occupied and clearing it marks the unit vacant,
// unless the patch sets Occupied explicitly.
func (up UnitPatch) Apply(u *Unit) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Description != nil {
		u.Description = *up.Description
	}
	if up.Type != nil {
		u.Type = *up.Type
	}
	if up.Bedrooms != nil {
		u.Bedrooms = cloneInt(up.Bedrooms)
	}
	if up.Bathrooms != nil {
		u.Bathrooms = cloneFloat(up.Bathrooms)
	}
	if up.Area != nil {
		u.Area = cloneFloat(up.Area)
	}
	if up.RentWholeUnit != nil {
		u.RentWholeUnit = *up.RentWholeUnit
	}
	if up.RentPrice != nil {
		u.RentPrice = cloneFloat(up.RentPrice)
	}
	if u.RentWholeUnit && u.RentPrice == nil {
		zero := 0.0
		u.RentPrice = &zero
	}
	if up.AvailableDate != nil {
		u.AvailableDate = cloneTime(up.AvailableDate)
	}
	if up.LeaseStart != nil {
		u.LeaseStart = cloneTime(up.LeaseStart)
	}
	if up.LeaseEnd != nil {
		u.LeaseEnd = cloneTime(up.LeaseEnd)
	}
	if up.Photos != nil {
		u.Photos = cloneStrings(up.Photos)
	}
	if up.Amenities != nil {
		u.Amenities = *up.Amenities
	}
	if up.TenantID != nil {
		u.TenantID = *up.TenantID
		u.Occupied = u.TenantID != ""
	}
	if up.Occupied != nil {
		u.Occupied = *up.Occupied
	}
}
