package models

import "time"

// SubUnit is a room, the finest-grained rentable space, owned by a unit
type SubUnit struct {
	ID   string    `json:"id"`
	Sync SyncState `json:"sync"`

	Name          string     `json:"name"`
	RoomType      RoomType   `json:"room_type"`
	RentPrice     *float64   `json:"rent_price,omitempty"`
	Area          *float64   `json:"area,omitempty"`
	AvailableDate *time.Time `json:"available_date,omitempty"`

	Photos       []string `json:"photos,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	SharedSpaces []string `json:"shared_spaces,omitempty"`

	TenantID   string `json:"tenant_id,omitempty"`
	TenantName string `json:"tenant_name,omitempty"`
}

// RoomType classifies a room
type RoomType string

const (
	RoomTypeBedroom  RoomType = "bedroom"
	RoomTypeBathroom RoomType = "bathroom"
	RoomTypeLiving   RoomType = "living"
	RoomTypeKitchen  RoomType = "kitchen"
	RoomTypeOther    RoomType = "other"
)

// NormalizeRoomType maps unknown or empty room types to RoomTypeOther
func NormalizeRoomType(t RoomType) RoomType {
	switch t {
	case RoomTypeBedroom, RoomTypeBathroom, RoomTypeLiving, RoomTypeKitchen:
		return t
	}
	return RoomTypeOther
}

// Clone returns a deep copy of the room
func (s SubUnit) Clone() SubUnit {
	out := s
	out.RentPrice = cloneFloat(s.RentPrice)
	out.Area = cloneFloat(s.Area)
	out.AvailableDate = cloneTime(s.AvailableDate)
	out.Photos = cloneStrings(s.Photos)
	out.Amenities = cloneStrings(s.Amenities)
	out.SharedSpaces = cloneStrings(s.SharedSpaces)
	return out
}

// SubUnitDraft carries caller-supplied fields for a new room
type SubUnitDraft struct {
	Name          string     `json:"name"`
	RoomType      RoomType   `json:"room_type"`
	RentPrice     *float64   `json:"rent_price"`
	Area          *float64   `json:"area"`
	AvailableDate *time.Time `json:"available_date"`
	Photos        []string   `json:"photos"`
	Amenities     []string   `json:"amenities"`
	SharedSpaces  []string   `json:"shared_spaces"`
	TenantID      string     `json:"tenant_id"`
	TenantName    string     `json:"tenant_name"`
}

// NewSubUnit builds a pending room from a draft
func NewSubUnit(id string, d SubUnitDraft) SubUnit {
	return SubUnit{
		ID:            id,
		Sync:          SyncPending,
		Name:          d.Name,
		RoomType:      NormalizeRoomType(d.RoomType),
		RentPrice:     cloneFloat(d.RentPrice),
		Area:          cloneFloat(d.Area),
		AvailableDate: cloneTime(d.AvailableDate),
		Photos:        cloneStrings(d.Photos),
		Amenities:     cloneStrings(d.Amenities),
		SharedSpaces:  cloneStrings(d.SharedSpaces),
		TenantID:      d.TenantID,
		TenantName:    d.TenantName,
	}
}

// SubUnitPatch is a partial update. Nil fields are left untouched.
type SubUnitPatch struct {
	Name          *string    `json:"name,omitempty"`
	RoomType      *RoomType  `json:"room_type,omitempty"`
	RentPrice     *float64   `json:"rent_price,omitempty"`
	Area          *float64   `json:"area,omitempty"`
	AvailableDate *time.Time `json:"available_date,omitempty"`
	Photos        []string   `json:"photos,omitempty"`
	Amenities     []string   `json:"amenities,omitempty"`
	SharedSpaces  []string   `json:"shared_spaces,omitempty"`
	TenantID      *string    `json:"tenant_id,omitempty"`
	TenantName    *string    `json:"tenant_name,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (sp SubUnitPatch) IsEmpty() bool {
	return sp.Name == nil && sp.RoomType == nil && sp.RentPrice == nil && sp.Area == nil &&
		sp.AvailableDate == nil && sp.Photos == nil && sp.Amenities == nil &&
		sp.SharedSpaces == nil && sp.TenantID == nil && sp.TenantName == nil
}

// Apply merges the patch into s
func (sp SubUnitPatch) Apply(s *SubUnit) {
	if sp.Name != nil {
		s.Name = *sp.Name
	}
	if sp.RoomType != nil {
		s.RoomType = NormalizeRoomType(*sp.RoomType)
	}
	if sp.RentPrice != nil {
		s.RentPrice = cloneFloat(sp.RentPrice)
	}
	if sp.Area != nil {
		s.Area = cloneFloat(sp.Area)
	}
	if sp.AvailableDate != nil {
		s.AvailableDate = cloneTime(sp.AvailableDate)
	}
	if sp.Photos != nil {
		s.Photos = cloneStrings(sp.Photos)
	}
	if sp.Amenities != nil {
		s.Amenities = cloneStrings(sp.Amenities)
	}
	if sp.SharedSpaces != nil {
		s.SharedSpaces = cloneStrings(sp.SharedSpaces)
	}
	if sp.TenantID != nil {
		s.TenantID = *sp.TenantID
	}
	if sp.TenantName != nil {
		s.TenantName = *sp.TenantName
	}
}
