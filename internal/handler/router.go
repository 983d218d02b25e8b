package handler

import (
	"time"

	"papeleria-be/internal/logger"
	"papeleria-be/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth     *AuthHandler
	Product  *ProductHandler
	Category *CategoryHandler
	Address  *AddressHandler
	Order    *OrderHandler
}

// NewRouter wires every endpoint behind the shared middleware chain.
func NewRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.LoggingMiddleware())
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.Auth.Register)
		authGroup.POST("/login", s.Auth.Login)
	}

	r.GET("/products", s.Product.List)
	r.GET("/products/:id", s.Product.Get)
	r.GET("/categories", s.Category.List)

	userGroup := r.Group("/")
	userGroup.Use(middleware.RequireAuth())
	{
		userGroup.GET("/addresses", s.Address.List)
		userGroup.POST("/addresses", s.Address.Create)
		userGroup.DELETE("/addresses/:id", s.Address.Delete)

		userGroup.POST("/orders", s.Order.Create)
		userGroup.GET("/orders", s.Order.List)
		userGroup.GET("/orders/:id", s.Order.Get)
		userGroup.PATCH("/orders/:id", s.Order.Update)
		userGroup.GET("/cart", s.Order.GetCart)

		userGroup.PATCH("/order-lines/:id", s.Order.UpdateLine)
		userGroup.DELETE("/order-lines/:id", s.Order.DeleteLine)
	}

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		adminGroup.POST("/products", s.Product.Create)
		adminGroup.PUT("/products/:id", s.Product.Update)
		adminGroup.DELETE("/products/:id", s.Product.Delete)

		adminGroup.POST("/categories", s.Category.Create)
		adminGroup.PUT("/categories/:id", s.Category.Update)
		adminGroup.DELETE("/categories/:id", s.Category.Delete)

		adminGroup.PATCH("/orders/:id/status", s.Order.UpdateStatus)
	}

	return r
}
