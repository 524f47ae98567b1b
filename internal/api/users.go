package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

type contactRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
}

type createUserRequest struct {
	Name              string           `json:"name" binding:"required"`
	Phone             string           `json:"phone" binding:"required"`
	Email             string           `json:"email" binding:"omitempty,email"`
	MedicalInfo       string           `json:"medicalInfo"`
	EmergencyContacts []contactRequest `json:"emergencyContacts" binding:"omitempty,dive"`
}

type updateUserRequest struct {
	Name              *string           `json:"name" binding:"omitempty,min=1"`
	Phone             *string           `json:"phone" binding:"omitempty,min=1"`
	Email             *string           `json:"email" binding:"omitempty,email"`
	MedicalInfo       *string           `json:"medicalInfo"`
	EmergencyContacts *[]contactRequest `json:"emergencyContacts" binding:"omitempty,dive"`
}

func toContacts(in []contactRequest) []models.EmergencyContact {
	out := make([]models.EmergencyContact, 0, len(in))
	for _, c := range in {
		out = append(out, models.EmergencyContact(c))
	}
	return out
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid user data: "+err.Error())
		return
	}

	user := &models.User{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		MedicalInfo:       req.MedicalInfo,
		EmergencyContacts: toContacts(req.EmergencyContacts),
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		fail(c, err, "failed to create user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid user data: "+err.Error())
		return
	}

	patch := models.UserPatch{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		MedicalInfo: req.MedicalInfo,
	}
	if req.EmergencyContacts != nil {
		contacts := toContacts(*req.EmergencyContacts)
		patch.EmergencyContacts = &contacts
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}
