package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"rental-manager/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// SearchClient mirrors the property list into a Meilisearch index
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	if index == "" {
		index = "properties"
	}

	return &SearchClient{
		client: client,
		index:  index,
	}
}

// PropertyDocument is the flattened, indexable view of a property and its subtree
type PropertyDocument struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	LandlordName string   `json:"landlord_name"`
	RentAmount   *float64 `json:"rent_amount,omitempty"`
	MinUnitRent  *float64 `json:"min_unit_rent,omitempty"`
	UnitCount    int      `json:"unit_count"`
	RoomCount    int      `json:"room_count"`
	VacantUnits  int      `json:"vacant_units"`
	UnitNames    []string `json:"unit_names"`
	RoomNames    []string `json:"room_names"`
	Synced       bool     `json:"synced"`
	CreatedAt    int64    `json:"created_at"`
}

// NewDocument flattens a property for indexing
func NewDocument(p models.Property) PropertyDocument {
	doc := PropertyDocument{
		ID:           p.ID,
		Name:         p.Name,
		Address:      joinAddress(p.Address),
		City:         p.Address.City,
		State:        p.Address.State,
		PostalCode:   p.Address.PostalCode,
		Type:         string(p.Type),
		Status:       string(p.Status),
		LandlordName: p.LandlordName,
		RentAmount:   p.RentAmount,
		UnitCount:    len(p.Units),
		UnitNames:    make([]string, 0, len(p.Units)),
		RoomNames:    []string{},
		Synced:       p.Sync.IsSynced(),
		CreatedAt:    p.CreatedAt.Unix(),
	}
	for _, u := range p.Units {
		doc.UnitNames = append(doc.UnitNames, u.Name)
		if !u.Occupied {
			doc.VacantUnits++
		}
		if u.RentPrice != nil && (doc.MinUnitRent == nil || *u.RentPrice < *doc.MinUnitRent) {
			rent := *u.RentPrice
			doc.MinUnitRent = &rent
		}
		for _, s := range u.SubUnits {
			doc.RoomCount++
			doc.RoomNames = append(doc.RoomNames, s.Name)
		}
	}
	return doc
}

func joinAddress(a models.Address) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"name",
		"address",
		"landlord_name",
		"unit_names",
		"room_names",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"type",
		"status",
		"city",
		"state",
		"rent_amount",
		"min_unit_rent",
		"vacant_units",
		"synced",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"rent_amount",
		"min_unit_rent",
		"unit_count",
		"created_at",
	})
	return err
}

// ReplaceAll drops every document and indexes props in their place
func (s *SearchClient) ReplaceAll(props []models.Property) error {
	if _, err := s.client.Index(s.index).DeleteAllDocuments(); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	if len(props) == 0 {
		return nil
	}
	docs := make([]PropertyDocument, 0, len(props))
	for _, p := range props {
		docs = append(docs, NewDocument(p))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs, "id")
	return err
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(p models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]PropertyDocument{NewDocument(p)}, "id")
	return err
}

// RemoveProperty deletes a property's document
func (s *SearchClient) RemoveProperty(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// SearchResult holds matching documents
type SearchResult struct {
	Hits           []PropertyDocument `json:"hits"`
	TotalHits      int64              `json:"total_hits"`
	ProcessingTime int64              `json:"processing_time_ms"`
}

// Search runs a query with optional filters
func (s *SearchClient) Search(params FilterParams) (*SearchResult, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if filter := params.Filter(); filter != "" {
		searchReq.Filter = filter
	}
	if sort := NormalizeSort(params.SortBy); sort != "" {
		searchReq.Sort = []string{sort}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	docs := make([]PropertyDocument, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		// Convert hit to JSON then to PropertyDocument
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc PropertyDocument
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return &SearchResult{
		Hits:           docs,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
