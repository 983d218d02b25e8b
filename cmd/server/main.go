package main

import (
	"log"

	"papeleria-be/internal/address"
	"papeleria-be/internal/category"
	"papeleria-be/internal/config"
	"papeleria-be/internal/db"
	"papeleria-be/internal/handler"
	"papeleria-be/internal/logger"
	"papeleria-be/internal/metrics"
	"papeleria-be/internal/order"
	"papeleria-be/internal/product"
	"papeleria-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	addressRepo := address.NewRepository(database)
	addressSvc := address.NewService(addressRepo)

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	orderMetrics := &metrics.OrderMetrics{}
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, userRepo, addressRepo, productRepo, orderMetrics)

	router := handler.NewRouter(handler.Services{
		Auth:     handler.NewAuthHandler(userSvc),
		Product:  handler.NewProductHandler(productSvc),
		Category: handler.NewCategoryHandler(categorySvc),
		Address:  handler.NewAddressHandler(addressSvc),
		Order:    handler.NewOrderHandler(orderSvc),
	})

	log.Printf("server running on port %s", cfg.AppPort)
	log.Fatal(router.Run(":" + cfg.AppPort))
}
