package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benefits-backend/config"
	"benefits-backend/database"
	"benefits-backend/routes"
	"benefits-backend/services"
	"benefits-backend/warehouse"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if err := config.ValidateEnv(); err != nil {
		log.Fatalf("Environment validation failed: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.CreateDefaultAdmin(db); err != nil {
		log.Printf("Warning: failed to create default admin: %v", err)
	}

	// Eligibility falls back to a static leave source when no warehouse is
	// configured, so local development does not need warehouse access.
	var warehouseClient *warehouse.Client
	var leaveSource services.AccruedLeaveSource
	if dsn := os.Getenv("WAREHOUSE_URL"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		warehouseClient, err = warehouse.Connect(ctx, dsn, config.GetEnv("WAREHOUSE_SCHEMA", "hr"))
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to datawarehouse: %v", err)
		}
		defer warehouseClient.Close()
		leaveSource = warehouseClient
	} else {
		leaveSource = services.StaticLeaveSource{Days: config.GetEnvInt("STATIC_LEAVE_DAYS", 15)}
	}

	policy := &services.AccruedLeavePolicy{
		Source:  leaveSource,
		MaxDays: config.GetEnvInt("MAX_ACCRUED_LEAVE_DAYS", 30),
	}
	redemptionService := services.NewRedemptionService(db, policy)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}
	if adminURL := os.Getenv("ADMIN_URL"); adminURL != "" {
		allowedOrigins = append(allowedOrigins, adminURL)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, db, redemptionService, warehouseClient)

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
