package router

import (
	"github.com/davehub/parc-manager/internal/config"
	"github.com/davehub/parc-manager/internal/handler"
	"github.com/davehub/parc-manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret

	// public: login / registration
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours,
		cfg.Auth.BcryptCost, cfg.Auth.AllowSelfServiceAdmin)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything below requires a valid bearer token
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, db))

	protected.GET("/me", handler.GetMe)

	userHandler := handler.NewUserHandler(db, cfg.Auth.BcryptCost)
	protected.GET("/users", userHandler.ListUsers)

	equipmentHandler := handler.NewEquipmentHandler(db, cfg.App.PageSize)
	protected.GET("/equipments", equipmentHandler.ListEquipments)
	protected.GET("/equipments/:id", equipmentHandler.GetEquipment)

	maintenanceHandler := handler.NewMaintenanceHandler(db)
	protected.GET("/maintenances/:equipmentId", maintenanceHandler.ListForEquipment)
	protected.POST("/maintenances", maintenanceHandler.Create)

	// admin-only management routes
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/users", userHandler.CreateUser)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	admin.POST("/equipments", equipmentHandler.CreateEquipment)
	admin.PUT("/equipments/:id", equipmentHandler.UpdateEquipment)
	admin.DELETE("/equipments/:id", equipmentHandler.DeleteEquipment)

	exportHandler := handler.NewExportHandler(db)
	admin.GET("/export/equipments.csv", exportHandler.ExportCSV)
	admin.GET("/export/equipments.xlsx", exportHandler.ExportXLSX)

	return r
}
