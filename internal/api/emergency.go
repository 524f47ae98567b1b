package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

const maxResponderLimit = 10

type categorizeRequest struct {
	Message string `json:"message" binding:"required"`
}

type resolveRequest struct {
	Message string   `json:"message" binding:"required"`
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
}

type resolveResponse struct {
	Categorization models.Categorization `json:"categorization"`
	Responders     []models.Responder    `json:"responders"`
}

func (h *Handler) categorize(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message is required and must be a string")
		return
	}

	c.JSON(http.StatusOK, h.service.Categorize(c.Request.Context(), req.Message))
}

func (h *Handler) resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message, lat and lng are required")
		return
	}

	at := models.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	cat, list, err := h.service.Resolve(c.Request.Context(), req.Message, at)
	if err != nil {
		fail(c, err, "failed to resolve emergency")
		return
	}

	c.JSON(http.StatusOK, resolveResponse{Categorization: cat, Responders: list})
}

func (h *Handler) getResponders(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		badRequest(c, "lat and lng are required numbers")
		return
	}
	at := models.Coordinate{Lat: lat, Lng: lng}
	if err := at.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	limit := h.service.DefaultLimit()
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxResponderLimit {
			badRequest(c, "limit must be between 1 and 10")
			return
		}
		limit = n
	}

	category := models.CategoryMedical
	if t := c.Query("type"); t != "" {
		category = models.ParseCategory(t)
	}

	list, err := h.service.Responders(c.Request.Context(), category, at, limit)
	if err != nil {
		fail(c, err, "failed to find responders")
		return
	}

	if c.Query("format") == "geojson" {
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, toGeoJSON(list))
		return
	}
	c.JSON(http.StatusOK, list)
}
