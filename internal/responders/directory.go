package responders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/mr1hm/go-emergency-assist/internal/geo"
	"github.com/mr1hm/go-emergency-assist/internal/models"
	"github.com/mr1hm/go-emergency-assist/internal/worker"
)

type placeQuery struct {
	types   []string
	keyword string
}

var placeQueries = map[models.Category]placeQuery{
	models.CategoryMedical:      {types: []string{"hospital", "doctor", "pharmacy"}, keyword: "hospital emergency"},
	models.CategoryPolice:       {types: []string{"police"}, keyword: "police station"},
	models.CategoryMentalHealth: {types: []string{"hospital", "doctor"}, keyword: "mental health clinic counseling"},
	models.CategoryDisaster:     {types: []string{"fire_station", "hospital"}, keyword: "fire station emergency"},
	models.CategoryFinance:      {types: []string{"bank", "atm", "accounting"}, keyword: "bank consumer protection financial assistance"},
}

func queryFor(category models.Category) placeQuery {
	if q, ok := placeQueries[category]; ok {
		return q
	}
	return placeQueries[models.CategoryMedical]
}

const (
	hoursOpenNow    = "Open now"
	hoursCheck      = "Check hours"
	hoursAlwaysOpen = "24/7"
)

func hoursLabel(reported bool, openNow bool) string {
	switch {
	case !reported:
		return hoursAlwaysOpen
	case openNow:
		return hoursOpenNow
	default:
		return hoursCheck
	}
}

type DirectoryOptions struct {
	APIKey        string
	BaseURL       string // Places API (New)
	MapsBaseURL   string // legacy web services, empty for the library default
	RegionCode    string
	RadiusMeters  int
	Timeout       time.Duration
	DetailWorkers int
	HTTPClient    *http.Client
}

// Directory looks responders up in the Google Places directory. The Places
// API (New) text search is tried first, then the legacy nearby search.
type Directory struct {
	apiKey        string
	baseURL       string
	regionCode    string
	radius        int
	detailWorkers int
	httpClient    *http.Client
	maps          *maps.Client
}

func NewDirectory(opts DirectoryOptions) (*Directory, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = 20000
	}

	d := &Directory{
		apiKey:        strings.TrimSpace(opts.APIKey),
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		regionCode:    opts.RegionCode,
		radius:        opts.RadiusMeters,
		detailWorkers: max(opts.DetailWorkers, 1),
		httpClient:    httpClient,
	}
	if d.baseURL == "" {
		d.baseURL = "https://places.googleapis.com"
	}
	if d.apiKey == "" {
		return d, nil
	}

	mapsOpts := []maps.ClientOption{
		maps.WithAPIKey(d.apiKey),
		maps.WithHTTPClient(httpClient),
	}
	if opts.MapsBaseURL != "" {
		mapsOpts = append(mapsOpts, maps.WithBaseURL(strings.TrimRight(opts.MapsBaseURL, "/")))
	}
	client, err := maps.NewClient(mapsOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating maps client: %w", err)
	}
	d.maps = client

	return d, nil
}

func (d *Directory) Name() string { return "directory" }

func (d *Directory) Configured() bool { return d.apiKey != "" }

func (d *Directory) Resolve(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Candidate, error) {
	if !d.Configured() {
		return nil, nil
	}
	q := queryFor(category)

	candidates, searchErr := d.searchText(ctx, q, at, limit)
	if searchErr != nil {
		slog.Warn("places text search failed, trying nearby search", "category", category, "error", searchErr)
	}

	if len(candidates) == 0 {
		var nearbyErr error
		candidates, nearbyErr = d.nearbySearch(ctx, q, at)
		if nearbyErr != nil {
			return nil, errors.Join(searchErr, nearbyErr)
		}
		if len(candidates) == 0 {
			return nil, searchErr
		}
		sortByDistance(candidates)
		candidates = truncate(candidates, limit)
		d.enrich(ctx, candidates)
		return candidates, nil
	}

	sortByDistance(candidates)
	return truncate(candidates, limit), nil
}

func (d *Directory) nearbySearch(ctx context.Context, q placeQuery, at models.Coordinate) ([]models.Candidate, error) {
	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Radius:   uint(d.radius),
		Keyword:  q.keyword,
		Type:     maps.PlaceType(q.types[0]),
		Language: "en",
	}

	resp, err := d.maps.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error during nearby search: %w", err)
	}

	out := make([]models.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, fromNearbyResult(r, at))
	}
	return out, nil
}

func fromNearbyResult(r maps.PlacesSearchResult, at models.Coordinate) models.Candidate {
	loc := models.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}

	address := r.Vicinity
	if address == "" {
		address = r.FormattedAddress
	}
	if address == "" {
		address = "Address unavailable"
	}

	c := models.Candidate{
		Name:     r.Name,
		Address:  address,
		Location: loc,
		Hours:    hoursAlwaysOpen,
		SourceID: r.PlaceID,
		Distance: geo.DistanceKm(at, loc),
	}
	if r.Rating > 0 {
		v := float64(r.Rating)
		c.Rating = &v
	}
	if r.OpeningHours != nil {
		c.Hours = hoursLabel(true, r.OpeningHours.OpenNow != nil && *r.OpeningHours.OpenNow)
	}
	return c
}

// enrich fills phone and hours from place details. A failed lookup leaves
// the candidate as it was.
func (d *Directory) enrich(ctx context.Context, candidates []models.Candidate) {
	jobs := make([]worker.Job, 0, len(candidates))
	for i := range candidates {
		if candidates[i].SourceID != "" {
			jobs = append(jobs, i)
		}
	}

	worker.Run(ctx, "place-details", d.detailWorkers, jobs, func(ctx context.Context, job worker.Job) error {
		c := &candidates[job.(int)]

		details, err := d.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
			PlaceID:  c.SourceID,
			Language: "en",
			Fields: []maps.PlaceDetailsFieldMask{
				maps.PlaceDetailsFieldMaskInternationalPhoneNumber,
				maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
				maps.PlaceDetailsFieldMaskOpeningHours,
			},
		})
		if err != nil {
			return fmt.Errorf("error fetching details for %s: %w", c.SourceID, err)
		}

		c.Phone = details.InternationalPhoneNumber
		if c.Phone == "" {
			c.Phone = details.FormattedPhoneNumber
		}
		if details.OpeningHours != nil {
			c.Hours = hoursLabel(true, details.OpeningHours.OpenNow != nil && *details.OpeningHours.OpenNow)
		}
		return nil
	})
}
