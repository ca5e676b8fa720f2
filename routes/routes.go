package routes

import (
	"net/http"
	"time"

	"benefits-backend/handlers"
	"benefits-backend/middleware"
	"benefits-backend/services"
	"benefits-backend/warehouse"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, redemptionService *services.RedemptionService, warehouseClient *warehouse.Client) {
	authHandler := &handlers.AuthHandler{DB: db}
	benefitHandler := &handlers.BenefitHandler{DB: db}
	redemptionHandler := &handlers.RedemptionHandler{Service: redemptionService}
	collaboratorHandler := &handlers.CollaboratorHandler{Warehouse: warehouseClient}

	// 10 attempts per minute per IP on credential endpoints
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", loginLimiter.Middleware(), authHandler.Register)
			auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshTokenHandler)
		}

		// Catalog browsing is public: the frontend shows benefits before login.
		api.GET("/benefits", benefitHandler.GetBenefits)
		api.GET("/benefits/:id", benefitHandler.GetBenefit)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.PUT("/auth/profile", authHandler.UpdateProfile)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			protected.POST("/redemptions", redemptionHandler.CreateRedemption)
			protected.GET("/redemptions/:id", redemptionHandler.GetRedemption)
			protected.GET("/users/:user_id/redemptions", redemptionHandler.GetUserRedemptions)
		}

		staff := api.Group("/staff")
		staff.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
		{
			staff.GET("/redemptions", redemptionHandler.ListRedemptions)
			staff.PATCH("/redemptions/:id/state", redemptionHandler.UpdateRedemptionState)

			staff.GET("/collaborators", collaboratorHandler.ListCollaborators)
			staff.GET("/collaborators/user/:user_id", collaboratorHandler.GetCollaborator)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/users", authHandler.ListUsers)
			admin.POST("/users", authHandler.CreateUser)
			admin.GET("/users/:id", authHandler.GetUser)
			admin.PUT("/users/:id", authHandler.UpdateUser)
			admin.DELETE("/users/:id", authHandler.DeactivateUser)

			admin.GET("/benefits", benefitHandler.ListBenefits)
			admin.POST("/benefits", benefitHandler.CreateBenefit)
			admin.PUT("/benefits/:id", benefitHandler.UpdateBenefit)
			admin.PATCH("/benefits/:id/activate", benefitHandler.ActivateBenefit)
			admin.PATCH("/benefits/:id/deactivate", benefitHandler.DeactivateBenefit)
		}
	}
}
