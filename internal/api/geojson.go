package api

import (
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(list []models.Responder) FeatureCollection {
	features := make([]Feature, 0, len(list))

	for _, r := range list {
		props := map[string]any{
			"placeId":  r.PlaceID,
			"name":     r.Name,
			"address":  r.Address,
			"type":     r.Type,
			"distance": r.Distance,
			"priority": r.Priority,
		}
		if r.Phone != "" {
			props["phone"] = r.Phone
		}
		if r.Rating != nil {
			props["rating"] = *r.Rating
		}
		if r.Hours != "" {
			props["hours"] = r.Hours
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{r.Location.Lng, r.Location.Lat},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
