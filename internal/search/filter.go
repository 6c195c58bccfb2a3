package search

import (
	"fmt"
	"strings"
)

// FilterParams are the search options exposed over HTTP
type FilterParams struct {
	Query      string   `form:"q"`
	Types      []string `form:"type"`
	Status     string   `form:"status"`
	City       string   `form:"city"`
	MinRent    *float64 `form:"min_rent"`
	MaxRent    *float64 `form:"max_rent"`
	HasVacancy bool     `form:"has_vacancy"`
	SortBy     string   `form:"sort"`
	Limit      int64    `form:"limit"`
	Offset     int64    `form:"offset"`
}

var sortOptions = map[string]string{
	"rent_asc":   "rent_amount:asc",
	"rent_desc":  "rent_amount:desc",
	"units_desc": "unit_count:desc",
	"newest":     "created_at:desc",
	"oldest":     "created_at:asc",
	"unit_rent":  "min_unit_rent:asc",
}

// Filter renders the Meilisearch filter expression, or "" when nothing is set
func (p FilterParams) Filter() string {
	var filters []string

	if len(p.Types) > 0 {
		typeFilters := make([]string, len(p.Types))
		for i, t := range p.Types {
			typeFilters[i] = fmt.Sprintf("type = %q", t)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}
	if p.Status != "" {
		filters = append(filters, fmt.Sprintf("status = %q", p.Status))
	}
	if p.City != "" {
		filters = append(filters, fmt.Sprintf("city = %q", p.City))
	}

	// Rent range filter
	if p.MinRent != nil {
		filters = append(filters, fmt.Sprintf("rent_amount >= %g", *p.MinRent))
	}
	if p.MaxRent != nil {
		filters = append(filters, fmt.Sprintf("rent_amount <= %g", *p.MaxRent))
	}

	if p.HasVacancy {
		filters = append(filters, "vacant_units > 0")
	}

	return strings.Join(filters, " AND ")
}

// NormalizeSort maps a sort option name to a Meilisearch sort rule.
// Unknown names yield "" and the index's default ranking applies.
func NormalizeSort(name string) string {
	return sortOptions[name]
}
