package handler

import (
	"net/http"
	"strconv"

	"papeleria-be/internal/product"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Price          int64   `json:"price"`
	WholesalePrice int64   `json:"wholesale_price"`
	CategoryID     uint    `json:"category_id"`
	ImageURL       *string `json:"image_url"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		WholesalePrice: p.WholesalePrice,
		CategoryID:     p.CategoryID,
		ImageURL:       p.ImageURL,
	}
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	opts := product.ProductQueryOptions{}

	if search := c.Query("search"); search != "" {
		opts.Search = &search
	}
	if catStr := c.Query("category_id"); catStr != "" {
		catID, err := strconv.ParseUint(catStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		id := uint(catID)
		opts.CategoryID = &id
	}
	opts.SortField = c.Query("sort")
	opts.SortDesc = c.Query("dir") == "desc"

	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.ParseInt(limitStr, 10, 32); err == nil {
			limit := int32(v)
			opts.Limit = &limit
		}
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if v, err := strconv.ParseInt(pageStr, 10, 32); err == nil {
			page := int32(v)
			opts.Page = &page
		}
	}

	products, err := h.svc.GetProducts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	res := make([]productResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"products": res})
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(p)})
}

type createProductRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description"`
	Price          int64   `json:"price" binding:"required,min=0"`
	WholesalePrice int64   `json:"wholesale_price" binding:"min=0"`
	CategoryID     uint    `json:"category_id" binding:"required"`
	ImageURL       *string `json:"image_url"`
}

// POST /admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	p, err := h.svc.CreateProduct(c.Request.Context(), product.NewProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		WholesalePrice: req.WholesalePrice,
		CategoryID:     req.CategoryID,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(p)})
}

type updateProductRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Price          *int64  `json:"price"`
	WholesalePrice *int64  `json:"wholesale_price"`
	CategoryID     *uint   `json:"category_id"`
	ImageURL       *string `json:"image_url"`
}

// PUT /admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	p, err := h.svc.UpdateProduct(c.Request.Context(), id, product.UpdateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		WholesalePrice: req.WholesalePrice,
		CategoryID:     req.CategoryID,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(p)})
}

// DELETE /admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// parseUintParam reads a numeric path parameter, writing a 400 itself when
// the value is malformed.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, err
	}
	return uint(v), nil
}
