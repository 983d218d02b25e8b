package handler

import (
	"errors"
	"net/http"

	"papeleria-be/internal/address"
	"papeleria-be/internal/category"
	"papeleria-be/internal/order"
	"papeleria-be/internal/product"
	"papeleria-be/internal/user"

	"github.com/gin-gonic/gin"
)

// respondError maps domain sentinel errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrAdminCannotPurchase):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, user.ErrTierNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrLineNotFound),
		errors.Is(err, order.ErrCartNotFound),
		errors.Is(err, order.ErrNotOrderOwner),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, order.ErrCartExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
