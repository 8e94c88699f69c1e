package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/verba-edu/scholarship-api/api/swagger"
	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/handler"
	"github.com/verba-edu/scholarship-api/internal/middleware"
	"github.com/verba-edu/scholarship-api/internal/models"
	"github.com/verba-edu/scholarship-api/internal/repository"
	"github.com/verba-edu/scholarship-api/internal/service"
	"github.com/verba-edu/scholarship-api/pkg/cache"
	"github.com/verba-edu/scholarship-api/pkg/config"
	"github.com/verba-edu/scholarship-api/pkg/database"
	"github.com/verba-edu/scholarship-api/pkg/logger"
	corsmiddleware "github.com/verba-edu/scholarship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/verba-edu/scholarship-api/pkg/middleware/requestid"
)

// @title Scholarship API
// @version 1.0.0
// @description Scholarship eligibility and ranking service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Redis only backs the results cache; the service degrades to
		// recomputing on every read.
		logr.Sugar().Warnw("redis unavailable, running without results cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	programs := catalog.Default()

	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	allocationSvc := service.NewAllocationService(studentRepo, programs, cacheRepo, metricsSvc, cfg.Allocation.CacheTTL, logr)
	studentSvc := service.NewStudentService(studentRepo, programs, allocationSvc, validate, logr)
	importSvc := service.NewImportService(studentRepo, programs, allocationSvc, metricsSvc, cfg.Import, logr)
	exportSvc := service.NewExportService(allocationSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	importHandler := handler.NewImportHandler(importSvc, cfg.Import)
	allocationHandler := handler.NewAllocationHandler(allocationSvc, exportSvc)
	programHandler := handler.NewProgramHandler(programs)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	viewer := authed.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleViewer))
	admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))

	viewer.GET("/programs", programHandler.List)
	viewer.GET("/students", studentHandler.List)
	viewer.GET("/students/:id", studentHandler.Get)
	// A pass is idempotent, so any authenticated user may trigger one.
	viewer.POST("/allocations/run", allocationHandler.Run)
	viewer.GET("/allocations/results", allocationHandler.Results)
	viewer.GET("/allocations/results/export", allocationHandler.Export)

	admin.POST("/students", studentHandler.Create)
	admin.PUT("/students/:id", studentHandler.Update)
	admin.DELETE("/students/:id", studentHandler.Delete)
	admin.DELETE("/students", studentHandler.DeleteAll)
	admin.POST("/students/import", importHandler.Import)
	admin.POST("/students/import/preview", importHandler.Preview)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
