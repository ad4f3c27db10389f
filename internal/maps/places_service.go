package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"pronto/internal/types"
)

// Place is a simplified forward-geocoding result used by the delivery
// address search box.
type Place struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	PlaceID string      `json:"place_id"`
	Point   types.Point `json:"point"`
}

// PlacesService handles interactions with the Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchAddress resolves a free-text address query to candidate delivery
// locations. Results are capped; the customer picks one on the map before
// checkout continues.
func (s *PlacesService) SearchAddress(ctx context.Context, query string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = 5
	}
	r := &maps.TextSearchRequest{
		Query:  query,
		Region: "LK",
	}
	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		results = append(results, Place{
			Name:    result.Name,
			Address: result.FormattedAddress,
			PlaceID: result.PlaceID,
			Point: types.Point{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
