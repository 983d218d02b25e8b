package handler

import (
	"net/http"
	"time"

	"papeleria-be/internal/auth"
	"papeleria-be/internal/order"
	"papeleria-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type lineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	AddressID *string       `json:"address_id"`
	Status    int           `json:"status"`
	Lines     []lineRequest `json:"lines" binding:"required,min=1"`
}

type updateOrderRequest struct {
	Status    *int          `json:"status"`
	AddressID *string       `json:"address_id"`
	Lines     []lineRequest `json:"lines"`
}

type linePatchRequest struct {
	Quantity  *int   `json:"quantity"`
	UnitPrice *int64 `json:"unit_price"`
}

type lineResponse struct {
	ID          uint   `json:"id"`
	OrderID     uint   `json:"order_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

type orderResponse struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"user_id"`
	AddressID *uuid.UUID     `json:"address_id"`
	Status    int            `json:"status"`
	Total     int64          `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Lines     []lineResponse `json:"lines"`
}

func toOrderResponse(o *order.Order) orderResponse {
	lines := make([]lineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, lineResponse{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Status:    int(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Lines:     lines,
	}
}

func parseAddressID(c *gin.Context, raw *string) (*uuid.UUID, bool) {
	if raw == nil {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return nil, false
	}
	return &id, true
}

func toLineRequests(reqs []lineRequest) []order.LineRequest {
	lines := make([]order.LineRequest, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, order.LineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return lines
}

// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	addressID, ok := parseAddressID(c, req.AddressID)
	if !ok {
		return
	}

	o, err := h.svc.Create(c.Request.Context(), order.CreateOrderParams{
		UserID:    userID,
		AddressID: addressID,
		Status:    order.Status(req.Status),
		Lines:     toLineRequests(req.Lines),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(o))
}

// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	orders, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	res := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, gin.H{"orders": res})
}

// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	o, err := h.svc.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.canAccess(c, o) {
		respondError(c, order.ErrNotOrderOwner)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(o))
}

// GET /cart
func (h *OrderHandler) GetCart(c *gin.Context) {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())

	o, err := h.svc.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(o))
}

// PATCH /orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	existing, err := h.svc.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.canAccess(c, existing) {
		respondError(c, order.ErrNotOrderOwner)
		return
	}

	addressID, ok := parseAddressID(c, req.AddressID)
	if !ok {
		return
	}

	params := order.UpdateOrderParams{
		AddressID: addressID,
		Lines:     toLineRequests(req.Lines),
	}
	if req.Status != nil {
		status := order.Status(*req.Status)
		params.Status = &status
	}

	o, err := h.svc.Update(c.Request.Context(), orderID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(o))
}

// PATCH /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req struct {
		Status int `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	status := order.Status(req.Status)
	o, err := h.svc.Update(c.Request.Context(), orderID, order.UpdateOrderParams{
		Status: &status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(o))
}

// PATCH /order-lines/:id
func (h *OrderHandler) UpdateLine(c *gin.Context) {
	lineID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req linePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.svc.UpdateLine(c.Request.Context(), lineID, order.LinePatch{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondLineResult(c, result)
}

// DELETE /order-lines/:id
func (h *OrderHandler) DeleteLine(c *gin.Context) {
	lineID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.svc.DeleteLine(c.Request.Context(), lineID, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondLineResult(c, result)
}

func (h *OrderHandler) respondLineResult(c *gin.Context, result *order.LineUpdateResult) {
	if result.Removed {
		c.JSON(http.StatusOK, gin.H{
			"removed":       true,
			"order_deleted": result.OrderDeleted,
			"order_total":   result.OrderTotal,
		})
		return
	}

	l := result.Line
	c.JSON(http.StatusOK, gin.H{
		"line": lineResponse{
			ID:        l.ID,
			OrderID:   l.OrderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		},
		"order_total": result.OrderTotal,
	})
}

// canAccess allows the order's owner and administrators.
func (h *OrderHandler) canAccess(c *gin.Context, o *order.Order) bool {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())
	if o.UserID == userID {
		return true
	}
	tier, _ := auth.GetUserTierFromContext(c.Request.Context())
	return tier == int(user.TierAdmin)
}

// actorFrom captures the authenticated user for line-level edits, where the
// ownership check happens inside the repository transaction.
func actorFrom(c *gin.Context) order.Actor {
	userID, _ := auth.GetUserIDFromContext(c.Request.Context())
	tier, _ := auth.GetUserTierFromContext(c.Request.Context())
	return order.Actor{UserID: userID, Admin: tier == int(user.TierAdmin)}
}
