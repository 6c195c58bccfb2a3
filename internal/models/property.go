package models

import (
	"fmt"
	"time"
)

// Property is the root rental asset a landlord manages
type Property struct {
	ID   string    `json:"id"`
	Sync SyncState `json:"sync"`

	// 所在地
	Address      Address      `json:"address"`
	Name         string       `json:"name,omitempty"`
	Type         PropertyType `json:"type"`
	LandlordName string       `json:"landlord_name,omitempty"`

	// 一棟貸し用 (Type != multi_unit の場合のみ有効)
	RentWholeProperty bool     `json:"rent_whole_property"`
	RentAmount        *float64 `json:"rent_amount,omitempty"`
	ParkingIncluded   bool     `json:"parking_included"`

	Photos    []string       `json:"photos,omitempty"`
	Utilities Utilities      `json:"utilities"`
	Status    PropertyStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`

	Units []Unit `json:"units"`
}

// Address holds the postal address of a property
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PropertyType classifies a property
type PropertyType string

const (
	PropertyTypeSingleUnit PropertyType = "single_unit"
	PropertyTypeMultiUnit  PropertyType = "multi_unit"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeParking    PropertyType = "parking"
)

// Valid reports whether t is one of the known classifications
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeSingleUnit, PropertyTypeMultiUnit, PropertyTypeCommercial, PropertyTypeParking:
		return true
	}
	return false
}

// PropertyStatus is the lifecycle status of a property
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// Valid reports whether s is a known status
func (s PropertyStatus) Valid() bool {
	return s == PropertyStatusActive || s == PropertyStatusInactive
}

// IsActive reports whether the property is active
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// IsSingleRental reports whether the single-rental fields apply
func (p *Property) IsSingleRental() bool {
	return p.Type != PropertyTypeMultiUnit
}

// Clone returns a deep copy of the property and its whole subtree
func (p Property) Clone() Property {
	out := p
	out.RentAmount = cloneFloat(p.RentAmount)
	out.Photos = cloneStrings(p.Photos)
	if p.Units != nil {
		out.Units = make([]Unit, len(p.Units))
		for i := range p.Units {
			out.Units[i] = p.Units[i].Clone()
		}
	}
	return out
}

// PropertyDraft carries caller-supplied fields for a new property
type PropertyDraft struct {
	Address           Address      `json:"address"`
	Name              string       `json:"name"`
	Type              PropertyType `json:"type"`
	LandlordName      string       `json:"landlord_name"`
	RentWholeProperty bool         `json:"rent_whole_property"`
	RentAmount        *float64     `json:"rent_amount"`
	ParkingIncluded   bool         `json:"parking_included"`
	Photos            []string     `json:"photos"`
	Utilities         Utilities    `json:"utilities"`
}

// NewProperty builds a pending, active property from a draft.
// Units start empty and utilities are normalized.
func NewProperty(id string, d PropertyDraft, now time.Time) Property {
	return Property{
		ID:                id,
		Sync:              SyncPending,
		Address:           d.Address,
		Name:              d.Name,
		Type:              d.Type,
		LandlordName:      d.LandlordName,
		RentWholeProperty: d.RentWholeProperty,
		RentAmount:        cloneFloat(d.RentAmount),
		ParkingIncluded:   d.ParkingIncluded,
		Photos:            cloneStrings(d.Photos),
		Utilities:         d.Utilities.Normalize(),
		Status:            PropertyStatusActive,
		CreatedAt:         now,
		Units:             []Unit{},
	}
}

// PropertyPatch is a partial update. Nil fields are left untouched.
type PropertyPatch struct {
	Address           *Address        `json:"address,omitempty"`
	Name              *string         `json:"name,omitempty"`
	Type              *PropertyType   `json:"type,omitempty"`
	LandlordName      *string         `json:"landlord_name,omitempty"`
	RentWholeProperty *bool           `json:"rent_whole_property,omitempty"`
	RentAmount        *float64        `json:"rent_amount,omitempty"`
	ParkingIncluded   *bool           `json:"parking_included,omitempty"`
	Photos            []string        `json:"photos,omitempty"`
	Utilities         *Utilities      `json:"utilities,omitempty"`
	Status            *PropertyStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (pp PropertyPatch) IsEmpty() bool {
	return pp.Address == nil && pp.Name == nil && pp.Type == nil && pp.LandlordName == nil &&
		pp.RentWholeProperty == nil && pp.RentAmount == nil && pp.ParkingIncluded == nil &&
		pp.Photos == nil && pp.Utilities == nil && pp.Status == nil
}

// Validate rejects classifications and statuses the rest of the code does not know
func (pp PropertyPatch) Validate() error {
	if pp.Type != nil && !pp.Type.Valid() {
		return fmt.Errorf("unknown property type %q", *pp.Type)
	}
	if pp.Status != nil && !pp.Status.Valid() {
		return fmt.Errorf("unknown property status %q", *pp.Status)
	}
	return nil
}

// Apply merges the patch into p. Units are never touched.
func (pp PropertyPatch) Apply(p *Property) {
	if pp.Address != nil {
		p.Address = *pp.Address
	}
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Type != nil {
		p.Type = *pp.Type
	}
	if pp.LandlordName != nil {
		p.LandlordName = *pp.LandlordName
	}
	if pp.RentWholeProperty != nil {
		p.RentWholeProperty = *pp.RentWholeProperty
	}
	if pp.RentAmount != nil {
		p.RentAmount = cloneFloat(pp.RentAmount)
	}
	if pp.ParkingIncluded != nil {
		p.ParkingIncluded = *pp.ParkingIncluded
	}
	if pp.Photos != nil {
		p.Photos = cloneStrings(pp.Photos)
	}
	if pp.Utilities != nil {
		p.Utilities = pp.Utilities.Normalize()
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
