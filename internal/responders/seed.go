package responders

import (
	"context"

	"github.com/mr1hm/go-emergency-assist/internal/geo"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

// SeedData maps a category to its static facilities. Distance is ignored and
// computed per request.
type SeedData map[models.Category][]models.Candidate

// Seed is the last tier. It never fails and is never empty for a positive limit.
type Seed struct {
	data SeedData
}

func NewSeed(data SeedData) *Seed {
	if data == nil {
		data = DefaultSeedData()
	}
	return &Seed{data: data}
}

func (s *Seed) Name() string { return "seed" }

func (s *Seed) Resolve(_ context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Candidate, error) {
	entries, ok := s.data[category]
	if !ok || len(entries) == 0 {
		entries = s.data[models.CategoryMedical]
	}

	out := make([]models.Candidate, len(entries))
	for i, e := range entries {
		e.Distance = geo.DistanceKm(at, e.Location)
		out[i] = e
	}
	sortByDistance(out)
	return truncate(out, limit), nil
}

func rating(v float64) *float64 { return &v }

// DefaultSeedData is a small set of well-known Delhi facilities.
func DefaultSeedData() SeedData {
	return SeedData{
		models.CategoryMedical: {
			{
				Name:     "All India Institute of Medical Sciences (AIIMS)",
				Address:  "Sri Aurobindo Marg, Ansari Nagar East, Delhi, 110029",
				Location: models.Coordinate{Lat: 28.5672, Lng: 77.2100},
				Phone:    "+91-11-26588500",
				Rating:   rating(4.2),
				Hours:    "24/7",
				SourceID: "aiims-delhi",
			},
			{
				Name:     "Safdarjung Hospital",
				Address:  "Ring Road, Safdarjung Enclave, Delhi, 110029",
				Location: models.Coordinate{Lat: 28.5646, Lng: 77.2029},
				Phone:    "+91-11-26165060",
				Rating:   rating(3.8),
				Hours:    "24/7",
				SourceID: "safdarjung",
			},
			{
				Name:     "Max Super Speciality Hospital",
				Address:  "Press Enclave Road, Saket, Delhi, 110017",
				Location: models.Coordinate{Lat: 28.5244, Lng: 77.2066},
				Phone:    "+91-11-26515050",
				Rating:   rating(4.0),
				Hours:    "24/7",
				SourceID: "max-saket",
			},
		},
		models.CategoryPolice: {
			{
				Name:     "Delhi Police Headquarters",
				Address:  "Jai Singh Road, Connaught Place, Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6304, Lng: 77.2177},
				Phone:    "100",
				Rating:   rating(3.5),
				Hours:    "24/7",
				SourceID: "police-hq",
			},
			{
				Name:     "Connaught Place Police Station",
				Address:  "Inner Circle, Connaught Place, Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6315, Lng: 77.2195},
				Phone:    "+91-11-23412323",
				Rating:   rating(3.3),
				Hours:    "24/7",
				SourceID: "cp-police",
			},
			{
				Name:     "Saket Police Station",
				Address:  "Saket, Delhi, 110017",
				Location: models.Coordinate{Lat: 28.5244, Lng: 77.2081},
				Phone:    "+91-11-26856000",
				Rating:   rating(3.4),
				Hours:    "24/7",
				SourceID: "saket-police",
			},
		},
		models.CategoryMentalHealth: {
			{
				Name:     "NIMHANS (Mental Health Helpline)",
				Address:  "National Helpline Number",
				Location: models.Coordinate{Lat: 28.6139, Lng: 77.2090},
				Phone:    "08046110007",
				Rating:   rating(4.5),
				Hours:    "24/7",
				SourceID: "nimhans",
			},
			{
				Name:     "Delhi Psychiatry Centre",
				Address:  "Green Park, Delhi, 110016",
				Location: models.Coordinate{Lat: 28.5503, Lng: 77.2066},
				Phone:    "+91-11-26562666",
				Rating:   rating(4.1),
				Hours:    "9 AM - 6 PM",
				SourceID: "delhi-psych",
			},
			{
				Name:     "Vandrevala Foundation Helpline",
				Address:  "Mental Health Support Helpline",
				Location: models.Coordinate{Lat: 28.6139, Lng: 77.2090},
				Phone:    "1860-2662-345",
				Rating:   rating(4.3),
				Hours:    "24/7",
				SourceID: "vandrevala",
			},
		},
		models.CategoryDisaster: {
			{
				Name:     "National Disaster Response Force (NDRF)",
				Address:  "East Arjun Nagar, Delhi, 110051",
				Location: models.Coordinate{Lat: 28.6497, Lng: 77.2847},
				Phone:    "011-24363260",
				Rating:   rating(4.6),
				Hours:    "24/7",
				SourceID: "ndrf",
			},
			{
				Name:     "Delhi Fire Service HQ",
				Address:  "Connaught Place, Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6315, Lng: 77.2167},
				Phone:    "101",
				Rating:   rating(3.9),
				Hours:    "24/7",
				SourceID: "fire-hq",
			},
			{
				Name:     "Delhi Disaster Management Authority",
				Address:  "I.P. Estate, Delhi, 110002",
				Location: models.Coordinate{Lat: 28.6279, Lng: 77.2426},
				Phone:    "+91-11-23221275",
				Rating:   rating(3.7),
				Hours:    "9 AM - 6 PM",
				SourceID: "ddma",
			},
		},
		models.CategoryFinance: {
			{
				Name:     "RBI Consumer Education Centre",
				Address:  "Sansad Marg, New Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6173, Lng: 77.2088},
				Phone:    "1800-114-101",
				Rating:   rating(4.0),
				Hours:    "10 AM - 5 PM",
				SourceID: "rbi-helpline",
			},
			{
				Name:     "National Consumer Disputes Redressal Commission",
				Address:  "Janpath, New Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6219, Lng: 77.2186},
				Phone:    "+91-11-23382928",
				Rating:   rating(3.8),
				Hours:    "9 AM - 5 PM",
				SourceID: "ncdrc",
			},
			{
				Name:     "Financial Literacy Centre",
				Address:  "Connaught Place, New Delhi, 110001",
				Location: models.Coordinate{Lat: 28.6289, Lng: 77.2065},
				Phone:    "+91-11-23415050",
				Rating:   rating(3.9),
				Hours:    "10 AM - 6 PM",
				SourceID: "fin-literacy",
			},
		},
	}
}
