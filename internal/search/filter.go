package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query         string
	Township      string
	PropertyTypes []string
	MinRent       *float64
	MaxRent       *float64
	MinBedrooms   *int
	Status        string
	SortBy        string
	Limit         int64
	Offset        int64
}

// BuildFilter composes the Meilisearch filter expression for the given
// params. Empty params yield an empty expression.
func BuildFilter(params FilterParams) string {
	var filters []string

	if params.Township != "" {
		filters = append(filters, fmt.Sprintf("township = '%s'", escapeFilterValue(params.Township)))
	}

	if len(params.PropertyTypes) > 0 {
		typeFilters := make([]string, len(params.PropertyTypes))
		for i, pt := range params.PropertyTypes {
			typeFilters[i] = fmt.Sprintf("property_type = '%s'", escapeFilterValue(pt))
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}

	if params.MinRent != nil {
		filters = append(filters, fmt.Sprintf("rent_amount >= %g", *params.MinRent))
	}
	if params.MaxRent != nil {
		filters = append(filters, fmt.Sprintf("rent_amount <= %g", *params.MaxRent))
	}

	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = '%s'", escapeFilterValue(params.Status)))
	}

	return strings.Join(filters, " AND ")
}

// escapeFilterValue keeps user input from breaking out of the quoted
// filter literal.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

// FilterSearch performs a filtered listing search
func (s *SearchClient) FilterSearch(params FilterParams) ([]PropertyDoc, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	if filterStr := BuildFilter(params); filterStr != "" {
		searchReq.Filter = filterStr
	}

	if params.SortBy != "" {
		searchReq.Sort = []string{params.SortBy}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	var docs []PropertyDoc
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var doc PropertyDoc
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}

		docs = append(docs, doc)
	}

	return docs, nil
}
