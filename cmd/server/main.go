package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/tiendapos/backend/docs"
	"github.com/tiendapos/backend/internal/database"
	"github.com/tiendapos/backend/internal/handlers"
	mW "github.com/tiendapos/backend/internal/middleware"
	"github.com/tiendapos/backend/internal/services"
	"github.com/tiendapos/backend/internal/store"
	memorystore "github.com/tiendapos/backend/internal/store/memory"
	postgresstore "github.com/tiendapos/backend/internal/store/postgres"
)

// @title POS Ledger Backend API
// @version 1.0
// @description API for the point-of-sale transactional ledger backend
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.SetDefault("store.driver", "postgres")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "POS Ledger Backend API"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"

	// Initialize storage backend
	var backend store.Store
	if viper.GetString("store.driver") == "memory" {
		log.Println("Using in-memory store")
		backend = memorystore.New()
	} else {
		db := database.InitDatabase()
		defer db.Close()
		backend = postgresstore.New(db)
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	inventoryService := services.NewInventoryService(backend)
	accountService := services.NewAccountService(backend)
	saleService := services.NewSaleService(inventoryService, accountService, backend, backend)
	productService := services.NewProductService(backend)
	labelService := services.NewLabelService(backend, redisClient)

	productHandler := handlers.NewProductHandler(productService, inventoryService, labelService)
	saleHandler := handlers.NewSaleHandler(saleService, redisClient)
	accountHandler := handlers.NewAccountHandler(accountService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", productHandler.CreateProduct)
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/barcode/{barcode}", productHandler.GetProductByBarcode)
		r.Get("/products/{id}", productHandler.GetProduct)
		r.Put("/products/{id}", productHandler.UpdateProduct)
		r.Delete("/products/{id}", productHandler.DeleteProduct)
		r.Get("/products/{id}/stock", productHandler.GetStock)
		r.Get("/products/{id}/label", productHandler.GetLabel)

		r.Post("/sales", saleHandler.CreateSale)
		r.Get("/sales", saleHandler.ListSales)
		r.Get("/sales/{id}", saleHandler.GetSale)

		r.Get("/accounts", accountHandler.ListOpenAccounts)
		r.Get("/accounts/{customerId}/balance", accountHandler.GetBalance)
		r.Post("/accounts/{customerId}/payments", accountHandler.RecordPayment)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
