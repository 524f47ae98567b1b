package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-emergency-assist/internal/models"
	"github.com/mr1hm/go-emergency-assist/internal/repository"
)

type locationRequest struct {
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
	Address string   `json:"address"`
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// address may be empty but must be present
type responderRequest struct {
	Name     string             `json:"name" binding:"required"`
	Address  *string            `json:"address" binding:"required"`
	Distance *float64           `json:"distance" binding:"required"`
	Type     string             `json:"type" binding:"required"`
	PlaceID  string             `json:"placeId" binding:"required"`
	Location *coordinateRequest `json:"location" binding:"required"`
	Phone    string             `json:"phone"`
	Rating   *float64           `json:"rating"`
	Priority int                `json:"priority"`
	Hours    string             `json:"hours"`
}

func (r responderRequest) toResponder() models.Responder {
	return models.Responder{
		Name:     r.Name,
		Address:  *r.Address,
		Distance: *r.Distance,
		Type:     r.Type,
		PlaceID:  r.PlaceID,
		Location: models.Coordinate{Lat: *r.Location.Lat, Lng: *r.Location.Lng},
		Phone:    r.Phone,
		Rating:   r.Rating,
		Priority: r.Priority,
		Hours:    r.Hours,
	}
}

type createAlertRequest struct {
	UserID     string             `json:"userId"`
	Message    string             `json:"message" binding:"required"`
	Category   string             `json:"category" binding:"required"`
	Location   *locationRequest   `json:"location" binding:"required"`
	Responders []responderRequest `json:"responders" binding:"omitempty,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid alert data: "+err.Error())
		return
	}

	loc := models.Location{Lat: *req.Location.Lat, Lng: *req.Location.Lng, Address: req.Location.Address}
	if err := loc.Coordinate().Validate(); err != nil {
		badRequest(c, "invalid alert data: "+err.Error())
		return
	}
	responders := make([]models.Responder, 0, len(req.Responders))
	for _, r := range req.Responders {
		responders = append(responders, r.toResponder())
	}

	alert := &models.Alert{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Message:    req.Message,
		Category:   models.ParseCategory(req.Category).String(),
		Location:   loc,
		Responders: responders,
		Status:     models.AlertStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.alerts.CreateAlert(c.Request.Context(), alert); err != nil {
		fail(c, err, "failed to create alert")
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h *Handler) listAlerts(c *gin.Context) {
	h.writeAlerts(c, repository.AlertFilter{})
}

func (h *Handler) listUserAlerts(c *gin.Context) {
	h.writeAlerts(c, repository.AlertFilter{UserID: c.Param("userId")})
}

func (h *Handler) writeAlerts(c *gin.Context, filter repository.AlertFilter) {
	filter.Limit = 100
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "failed to fetch alerts")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) updateAlertStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		badRequest(c, "status is required")
		return
	}

	alert, err := h.alerts.UpdateAlertStatus(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Status))
	if err != nil {
		fail(c, err, "failed to update alert")
		return
	}
	c.JSON(http.StatusOK, alert)
}
