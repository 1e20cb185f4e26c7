package search

import (
	"township-rental-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// PropertyDoc is the flattened listing document stored in the index. The
// township name is denormalized in so it is searchable and filterable
// without a join.
type PropertyDoc struct {
	ID            string  `json:"id"`
	LandlordID    string  `json:"landlord_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	Township      string  `json:"township"`
	PropertyType  string  `json:"property_type"`
	Bedrooms      int     `json:"bedrooms"`
	RentAmount    float64 `json:"rent_amount"`
	DepositAmount float64 `json:"deposit_amount"`
	Status        string  `json:"status"`
	CreatedAt     int64   `json:"created_at"`
}

// NewPropertyDoc flattens a property and its township for indexing
func NewPropertyDoc(p *models.Property, townshipName string) PropertyDoc {
	bedrooms := 0
	if p.Bedrooms != nil {
		bedrooms = *p.Bedrooms
	}
	return PropertyDoc{
		ID:            p.ID,
		LandlordID:    p.LandlordID,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		Township:      townshipName,
		PropertyType:  p.PropertyType,
		Bedrooms:      bedrooms,
		RentAmount:    p.RentAmount,
		DepositAmount: p.DepositAmount,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt.Unix(),
	}
}

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	// Configure searchable attributes
	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"address",
		"township",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"township",
		"property_type",
		"bedrooms",
		"rent_amount",
		"status",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"rent_amount",
		"bedrooms",
		"created_at",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexProperty indexes a single listing
func (s *SearchClient) IndexProperty(doc PropertyDoc) error {
	_, err := s.client.Index(s.index).AddDocuments([]PropertyDoc{doc})
	return err
}

// IndexProperties indexes multiple listings
func (s *SearchClient) IndexProperties(docs []PropertyDoc) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// RemoveProperty removes a listing from the index
func (s *SearchClient) RemoveProperty(propertyID string) error {
	_, err := s.client.Index(s.index).DeleteDocument(propertyID)
	return err
}

// SearchResult represents search results with facets
type SearchResult struct {
	Hits           []PropertyDoc
	TotalHits      int64
	Facets         map[string]interface{}
	ProcessingTime int64
}

// GetFacets retrieves facet distribution for specified fields
func (s *SearchClient) GetFacets(facets []string) (map[string]interface{}, error) {
	searchRes, err := s.client.Index(s.index).Search("", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: facets,
	})
	if err != nil {
		return nil, err
	}

	if searchRes.FacetDistribution != nil {
		if facetMap, ok := searchRes.FacetDistribution.(map[string]interface{}); ok {
			return facetMap, nil
		}
	}
	return map[string]interface{}{}, nil
}
