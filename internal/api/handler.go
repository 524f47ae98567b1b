package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-emergency-assist/internal/models"
	"github.com/mr1hm/go-emergency-assist/internal/repository"
)

// ResponderService is the resolution pipeline as the HTTP layer sees it.
type ResponderService interface {
	Categorize(ctx context.Context, message string) models.Categorization
	Resolve(ctx context.Context, message string, at models.Coordinate) (models.Categorization, []models.Responder, error)
	Responders(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Responder, error)
	DefaultLimit() int
}

type Handler struct {
	service ResponderService
	alerts  repository.AlertRepository
	users   repository.UserRepository
}

func NewHandler(service ResponderService, alerts repository.AlertRepository, users repository.UserRepository) *Handler {
	return &Handler{
		service: service,
		alerts:  alerts,
		users:   users,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.POST("/emergency/categorize", h.categorize)
		api.GET("/emergency/responders", h.getResponders)
		api.POST("/emergency/resolve", h.resolve)

		api.POST("/alerts", h.createAlert)
		api.GET("/alerts", h.listAlerts)
		api.GET("/alerts/user/:userId", h.listUserAlerts)
		api.PATCH("/alerts/:id/status", h.updateAlertStatus)

		api.POST("/users", h.createUser)
		api.GET("/users/:id", h.getUser)
		api.PATCH("/users/:id", h.updateUser)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// fail maps store and pipeline errors onto status codes. Anything unexpected
// is logged and reported as a generic 500.
func fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrInvalidCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error(msg,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
