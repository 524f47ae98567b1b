package responders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mr1hm/go-emergency-assist/internal/geo"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

const placesFieldMask = "places.id,places.displayName,places.formattedAddress,places.location," +
	"places.internationalPhoneNumber,places.rating,places.currentOpeningHours"

type searchTextRequest struct {
	TextQuery      string       `json:"textQuery"`
	LocationBias   locationBias `json:"locationBias"`
	MaxResultCount int          `json:"maxResultCount"`
	LanguageCode   string       `json:"languageCode"`
	RegionCode     string       `json:"regionCode,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchTextResponse struct {
	Places []place `json:"places"`
}

type place struct {
	ID                       string        `json:"id"`
	DisplayName              *localized    `json:"displayName"`
	FormattedAddress         string        `json:"formattedAddress"`
	Location                 *latLng       `json:"location"`
	InternationalPhoneNumber string        `json:"internationalPhoneNumber"`
	Rating                   *float64      `json:"rating"`
	CurrentOpeningHours      *openingHours `json:"currentOpeningHours"`
}

type localized struct {
	Text string `json:"text"`
}

type openingHours struct {
	OpenNow bool `json:"openNow"`
}

func (d *Directory) searchText(ctx context.Context, q placeQuery, at models.Coordinate, limit int) ([]models.Candidate, error) {
	body, err := json.Marshal(searchTextRequest{
		TextQuery: q.keyword + " near me",
		LocationBias: locationBias{Circle: circle{
			Center: latLng{Latitude: at.Lat, Longitude: at.Lng},
			Radius: float64(d.radius),
		}},
		MaxResultCount: min(limit*3, 20),
		LanguageCode:   "en",
		RegionCode:     d.regionCode,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", d.apiKey)
	req.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	out := make([]models.Candidate, 0, len(data.Places))
	for _, p := range data.Places {
		if c, ok := fromPlace(p, at); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// fromPlace drops places without a location, since they cannot be ranked.
func fromPlace(p place, at models.Coordinate) (models.Candidate, bool) {
	if p.Location == nil {
		return models.Candidate{}, false
	}
	loc := models.Coordinate{Lat: p.Location.Latitude, Lng: p.Location.Longitude}

	name := "Unknown"
	if p.DisplayName != nil && p.DisplayName.Text != "" {
		name = p.DisplayName.Text
	}
	address := p.FormattedAddress
	if address == "" {
		address = "Address unavailable"
	}
	id := p.ID
	if id == "" {
		id = "unknown"
	}

	c := models.Candidate{
		Name:     name,
		Address:  address,
		Location: loc,
		Phone:    p.InternationalPhoneNumber,
		Rating:   p.Rating,
		Hours:    hoursLabel(p.CurrentOpeningHours != nil, p.CurrentOpeningHours != nil && p.CurrentOpeningHours.OpenNow),
		SourceID: id,
		Distance: geo.DistanceKm(at, loc),
	}
	return c, true
}
