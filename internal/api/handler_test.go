package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-emergency-assist/internal/models"
	"github.com/mr1hm/go-emergency-assist/internal/repository"
	"github.com/mr1hm/go-emergency-assist/internal/responders"
)

// mockService implements ResponderService for testing
type mockService struct {
	categorization models.Categorization
	responders     []models.Responder
	err            error

	lastCategory models.Category
	lastAt       models.Coordinate
	lastLimit    int
	calls        int
}

func (m *mockService) Categorize(ctx context.Context, message string) models.Categorization {
	return m.categorization
}

func (m *mockService) Resolve(ctx context.Context, message string, at models.Coordinate) (models.Categorization, []models.Responder, error) {
	m.calls++
	m.lastAt = at
	return m.categorization, m.responders, m.err
}

func (m *mockService) Responders(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Responder, error) {
	m.calls++
	m.lastCategory = category
	m.lastAt = at
	m.lastLimit = limit
	return m.responders, m.err
}

func (m *mockService) DefaultLimit() int { return 3 }

func sampleResponders() []models.Responder {
	rating := 3.5
	return []models.Responder{
		{Name: "Delhi Police Headquarters", Distance: 2.0, Type: "police", PlaceID: "seed:police-hq",
			Location: models.Coordinate{Lat: 28.6304, Lng: 77.2177}, Phone: "100", Rating: &rating, Priority: 1, Hours: "24/7"},
		{Name: "Connaught Place Police Station", Distance: 2.2, Type: "police", PlaceID: "seed:cp-police",
			Location: models.Coordinate{Lat: 28.6315, Lng: 77.2195}, Priority: 2},
	}
}

func setupTestRouter(svc ResponderService) (*gin.Engine, *repository.MemoryStore) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := repository.NewMemoryStore()
	handler := NewHandler(svc, store, store)
	handler.RegisterRoutes(router)
	return router, store
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	w := doJSON(router, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestCategorize(t *testing.T) {
	svc := &mockService{categorization: models.Categorization{
		Category: models.CategoryMedical, Severity: models.SeverityHigh, Keywords: []string{"bleeding"},
		SuggestedAction: "Apply pressure and call 108",
	}}
	router, _ := setupTestRouter(svc)

	w := doJSON(router, "POST", "/api/emergency/categorize", map[string]any{"message": "my friend is bleeding"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.Categorization
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Category != models.CategoryMedical || got.SuggestedAction != "Apply pressure and call 108" {
		t.Errorf("unexpected categorization %+v", got)
	}
}

func TestCategorize_InvalidMessage(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	tests := []struct {
		name string
		body any
	}{
		{"missing", map[string]any{}},
		{"empty", map[string]any{"message": ""}},
		{"blank", map[string]any{"message": "   "}},
		{"number", map[string]any{"message": 42}},
		{"not json", "message=help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/emergency/categorize", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestGetResponders(t *testing.T) {
	svc := &mockService{responders: sampleResponders()}
	router, _ := setupTestRouter(svc)

	w := doJSON(router, "GET", "/api/emergency/responders?lat=28.6139&lng=77.2090&type=police&limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got []models.Responder
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got) != 2 || got[0].PlaceID != "seed:police-hq" {
		t.Errorf("unexpected responders %+v", got)
	}
	if svc.lastCategory != models.CategoryPolice || svc.lastLimit != 2 {
		t.Errorf("expected police with limit 2, got %s / %d", svc.lastCategory, svc.lastLimit)
	}
	if svc.lastAt != (models.Coordinate{Lat: 28.6139, Lng: 77.2090}) {
		t.Errorf("unexpected coordinate %v", svc.lastAt)
	}
}

func TestGetResponders_Defaults(t *testing.T) {
	svc := &mockService{responders: sampleResponders()}
	router, _ := setupTestRouter(svc)

	w := doJSON(router, "GET", "/api/emergency/responders?lat=28.6139&lng=77.2090", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if svc.lastCategory != models.CategoryMedical || svc.lastLimit != 3 {
		t.Errorf("expected medical with limit 3, got %s / %d", svc.lastCategory, svc.lastLimit)
	}
}

func TestGetResponders_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing lat", "lng=77.2090"},
		{"missing lng", "lat=28.6139"},
		{"malformed lat", "lat=north&lng=77.2090"},
		{"lat out of range", "lat=95&lng=77.2090"},
		{"lng out of range", "lat=28.6&lng=-181"},
		{"limit zero", "lat=28.6&lng=77.2&limit=0"},
		{"limit too large", "lat=28.6&lng=77.2&limit=11"},
		{"limit not a number", "lat=28.6&lng=77.2&limit=few"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{responders: sampleResponders()}
			router, _ := setupTestRouter(svc)

			w := doJSON(router, "GET", "/api/emergency/responders?"+tt.query, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			if svc.calls != 0 {
				t.Error("expected no pipeline call for a bad query")
			}
		})
	}
}

func TestGetResponders_GeoJSON(t *testing.T) {
	router, _ := setupTestRouter(&mockService{responders: sampleResponders()})

	w := doJSON(router, "GET", "/api/emergency/responders?lat=28.6139&lng=77.2090&type=police&format=geojson", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", contentType)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}

	first := fc.Features[0]
	if first.Geometry.Coordinates[0] != 77.2177 || first.Geometry.Coordinates[1] != 28.6304 {
		t.Errorf("expected [lng, lat], got %v", first.Geometry.Coordinates)
	}
	if first.Properties["placeId"] != "seed:police-hq" || first.Properties["phone"] != "100" {
		t.Errorf("unexpected properties %v", first.Properties)
	}
	if _, ok := fc.Features[1].Properties["phone"]; ok {
		t.Error("expected missing phone to be omitted")
	}
}

func TestGetResponders_PipelineErrorIs500(t *testing.T) {
	router, _ := setupTestRouter(&mockService{err: responders.ErrNoResponders})

	w := doJSON(router, "GET", "/api/emergency/responders?lat=28.6139&lng=77.2090", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "failed to find responders" {
		t.Errorf("expected generic error message, got %q", body["error"])
	}
}

func TestResolve(t *testing.T) {
	svc := &mockService{
		categorization: models.Categorization{Category: models.CategoryPolice, Severity: models.SeverityHigh, Keywords: []string{}},
		responders:     sampleResponders(),
	}
	router, _ := setupTestRouter(svc)

	w := doJSON(router, "POST", "/api/emergency/resolve", map[string]any{"message": "someone broke in", "lat": 0, "lng": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got resolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Categorization.Category != models.CategoryPolice || len(got.Responders) != 2 {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestResolve_BadRequests(t *testing.T) {
	router, _ := setupTestRouter(&mockService{err: models.ErrInvalidCoordinate})

	if w := doJSON(router, "POST", "/api/emergency/resolve", map[string]any{"message": "help", "lat": 28.6}); w.Code != http.StatusBadRequest {
		t.Errorf("missing lng: expected status 400, got %d", w.Code)
	}
	if w := doJSON(router, "POST", "/api/emergency/resolve", map[string]any{"message": "help", "lat": 128.6, "lng": 77.2}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid coordinate: expected status 400, got %d", w.Code)
	}
}

func TestAlerts_Lifecycle(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	w := doJSON(router, "POST", "/api/alerts", map[string]any{
		"userId":     "u1",
		"message":    "chest pain",
		"category":   "medical",
		"location":   map[string]any{"lat": 28.6139, "lng": 77.2090, "address": "Connaught Place"},
		"responders": sampleResponders(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.ID == "" || created.Status != "active" || created.CreatedAt.IsZero() {
		t.Errorf("unexpected alert %+v", created)
	}

	w = doJSON(router, "GET", "/api/alerts/user/u1", nil)
	var mine []models.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].ID != created.ID || len(mine[0].Responders) != 2 {
		t.Errorf("unexpected user alerts %+v", mine)
	}

	w = doJSON(router, "GET", "/api/alerts/user/someone-else", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("expected empty list, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "PATCH", "/api/alerts/"+created.ID+"/status", map[string]any{"status": "resolved"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var updated models.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Status != "resolved" {
		t.Errorf("expected resolved, got %s", updated.Status)
	}

	w = doJSON(router, "GET", "/api/alerts", nil)
	var all []models.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 1 {
		t.Errorf("expected 1 alert, got %d", len(all))
	}
}

func TestAlerts_ListNewestFirst(t *testing.T) {
	router, store := setupTestRouter(&mockService{})
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	_ = store.CreateAlert(ctx, &models.Alert{ID: "old", Message: "m", Category: "medical", CreatedAt: base})
	_ = store.CreateAlert(ctx, &models.Alert{ID: "new", Message: "m", Category: "medical", CreatedAt: base.Add(time.Hour)})

	w := doJSON(router, "GET", "/api/alerts", nil)
	var all []models.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 2 || all[0].ID != "new" {
		t.Errorf("expected newest first, got %+v", all)
	}
}

func TestAlerts_Validation(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	tests := []struct {
		name string
		body any
	}{
		{"missing message", map[string]any{"category": "medical", "location": map[string]any{"lat": 1, "lng": 1}}},
		{"missing location", map[string]any{"message": "m", "category": "medical"}},
		{"missing lat", map[string]any{"message": "m", "category": "medical", "location": map[string]any{"lng": 1}}},
		{"bad coordinate", map[string]any{"message": "m", "category": "medical", "location": map[string]any{"lat": 91, "lng": 1}}},
		{"empty responders", map[string]any{"message": "m", "category": "medical", "location": map[string]any{"lat": 1, "lng": 1},
			"responders": []map[string]any{{"bogus": 1}, {}}}},
		{"responder missing location", map[string]any{"message": "m", "category": "medical", "location": map[string]any{"lat": 1, "lng": 1},
			"responders": []map[string]any{{"name": "AIIMS", "address": "Ansari Nagar", "distance": 1.2, "type": "medical", "placeId": "seed:aiims-delhi"}}}},
		{"responder missing distance", map[string]any{"message": "m", "category": "medical", "location": map[string]any{"lat": 1, "lng": 1},
			"responders": []map[string]any{{"name": "AIIMS", "address": "", "type": "medical", "placeId": "seed:aiims-delhi",
				"location": map[string]any{"lat": 28.5672, "lng": 77.21}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(router, "POST", "/api/alerts", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}

	if w := doJSON(router, "PATCH", "/api/alerts/abc/status", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing status: expected status 400, got %d", w.Code)
	}
	if w := doJSON(router, "PATCH", "/api/alerts/unknown/status", map[string]any{"status": "resolved"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown alert: expected status 404, got %d", w.Code)
	}
}

func TestUsers_Lifecycle(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	w := doJSON(router, "POST", "/api/users", map[string]any{
		"name":  "Asha",
		"phone": "+91-98100-00000",
		"email": "asha@example.com",
		"emergencyContacts": []map[string]any{
			{"name": "Ravi", "phone": "+91-98100-11111", "relationship": "brother"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var created models.User
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || len(created.EmergencyContacts) != 1 {
		t.Fatalf("unexpected user %+v", created)
	}

	w = doJSON(router, "PATCH", "/api/users/"+created.ID, map[string]any{"medicalInfo": "type 1 diabetes"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "GET", "/api/users/"+created.ID, nil)
	var got models.User
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.MedicalInfo != "type 1 diabetes" || got.Name != "Asha" {
		t.Errorf("unexpected user %+v", got)
	}
}

func TestUsers_Validation(t *testing.T) {
	router, _ := setupTestRouter(&mockService{})

	bad := []map[string]any{
		{"phone": "1"},
		{"name": "Asha"},
		{"name": "Asha", "phone": "1", "email": "not-an-email"},
		{"name": "Asha", "phone": "1", "emergencyContacts": []map[string]any{{"name": "Ravi"}}},
		{"name": "Asha", "phone": "1", "emergencyContacts": []map[string]any{{"name": "Ravi", "phone": "+91-98100-11111"}}},
	}
	for i, body := range bad {
		if w := doJSON(router, "POST", "/api/users", body); w.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected status 400, got %d", i, w.Code)
		}
	}

	if w := doJSON(router, "GET", "/api/users/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if w := doJSON(router, "PATCH", "/api/users/missing", map[string]any{"name": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewClientLimiter(1, 2, time.Minute, 0)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := request("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := request("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := request("10.0.0.2"); code != http.StatusOK {
		t.Errorf("expected other clients unaffected, got %d", code)
	}
}

func TestFail_MapsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{models.ErrInvalidCoordinate, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/", nil)
		fail(c, tt.err, "failed")
		if w.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}
