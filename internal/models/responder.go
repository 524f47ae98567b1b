package models

// Candidate is a responder as produced by a single resolution tier, before ranking.
type Candidate struct {
	Name     string
	Address  string
	Location Coordinate
	Phone    string
	Rating   *float64
	Hours    string
	SourceID string  // opaque per-tier identifier
	Distance float64 // km from the query coordinate
}

type Responder struct {
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Distance float64    `json:"distance"`
	Type     string     `json:"type"`
	PlaceID  string     `json:"placeId"`
	Location Coordinate `json:"location"`
	Phone    string     `json:"phone,omitempty"`
	Rating   *float64   `json:"rating,omitempty"`
	Priority int        `json:"priority,omitempty"`
	Hours    string     `json:"hours,omitempty"`
}
