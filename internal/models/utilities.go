package models

// Payer says who pays for a utility
type Payer string

const (
	PayerLandlord Payer = "landlord"
	PayerTenant   Payer = "tenant"
)

// UtilityType identifies one of the utilities tracked per property
type UtilityType string

const (
	UtilityElectricity     UtilityType = "electricity"
	UtilityHeatGas         UtilityType = "heat_gas"
	UtilityWater           UtilityType = "water"
	UtilityInternet        UtilityType = "internet"
	UtilityRentalEquipment UtilityType = "rental_equipment"
)

// UtilityTypes lists every utility type in display order
var UtilityTypes = []UtilityType{
	UtilityElectricity,
	UtilityHeatGas,
	UtilityWater,
	UtilityInternet,
	UtilityRentalEquipment,
}

// Utilities assigns a payer to each utility type
type Utilities struct {
	Electricity     Payer `json:"electricity"`
	HeatGas         Payer `json:"heat_gas"`
	Water           Payer `json:"water"`
	Internet        Payer `json:"internet"`
	RentalEquipment Payer `json:"rental_equipment"`
}

// DefaultUtilities returns an assignment where the landlord pays everything
func DefaultUtilities() Utilities {
	return Utilities{}.Normalize()
}

// Normalize returns a complete assignment: any unset or unknown payer becomes the landlord.
func (u Utilities) Normalize() Utilities {
	return Utilities{
		Electricity:     normalizePayer(u.Electricity),
		HeatGas:         normalizePayer(u.HeatGas),
		Water:           normalizePayer(u.Water),
		Internet:        normalizePayer(u.Internet),
		RentalEquipment: normalizePayer(u.RentalEquipment),
	}
}

// Payer returns who pays for the given utility
func (u Utilities) Payer(t UtilityType) Payer {
	n := u.Normalize()
	switch t {
	case UtilityElectricity:
		return n.Electricity
	case UtilityHeatGas:
		return n.HeatGas
	case UtilityWater:
		return n.Water
	case UtilityInternet:
		return n.Internet
	case UtilityRentalEquipment:
		return n.RentalEquipment
	}
	return PayerLandlord
}

func normalizePayer(p Payer) Payer {
	if p == PayerTenant {
		return PayerTenant
	}
	return PayerLandlord
}
