package handler

import (
	"net/http"

	"papeleria-be/internal/address"
	"papeleria-be/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AddressHandler struct {
	svc address.Service
}

func NewAddressHandler(svc address.Service) *AddressHandler {
	return &AddressHandler{svc: svc}
}

// GET /addresses
func (h *AddressHandler) List(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	addresses, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

type createAddressRequest struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1" binding:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" binding:"required"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	SetAsDefault bool    `json:"set_as_default"`
}

// POST /addresses
func (h *AddressHandler) Create(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	var req createAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	addr, err := h.svc.Create(c.Request.Context(), address.CreateAddressInput{
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"address": addr})
}

// DELETE /addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "address removed"})
}
