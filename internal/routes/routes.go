package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/controllers"
	"inventory-system/internal/listeners"
	"inventory-system/internal/repositories"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/middleware"
	"inventory-system/pkg/service"
)

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(logger)

	// --- Репозитории ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	deviceRepo := repositories.NewDeviceRepository(dbConn, logger)
	operationRepo := repositories.NewOperationRepository(dbConn, logger)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	activityRepo := repositories.NewActivityRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- Слушатели шины событий ---
	listeners.NewActivityListener(activityRepo, logger).Register(bus)
	listeners.NewNotificationListener(notificationRepo, userRepo, logger).Register(bus)

	// --- Сервисы ---
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, bus, logger, cfg.Auth)
	userService := services.NewUserService(userRepo, operationRepo, txManager, bus, logger)
	deviceService := services.NewDeviceService(deviceRepo, operationRepo, txManager, bus, logger)
	inventoryService := services.NewInventoryService(deviceRepo, operationRepo, txManager, bus, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	reportService := services.NewReportService(reportRepo, cacheRepo, bus, logger, cfg.Cache)

	// --- Контроллеры ---
	authCtrl := controllers.NewAuthController(authService, userService, logger)
	userCtrl := controllers.NewUserController(userService, logger)
	deviceCtrl := controllers.NewDeviceController(deviceService, logger)
	inventoryCtrl := controllers.NewInventoryController(inventoryService, logger)
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)
	activityCtrl := controllers.NewActivityController(activityRepo, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	// --- Группы маршрутов ---
	secureGroup := api.Group("", authMW.Auth)
	adminGroup := api.Group("", authMW.Auth, authMW.RequireAdmin)

	runAuthRouter(api, secureGroup, authCtrl)
	runUserRouter(adminGroup, userCtrl)
	runDeviceRouter(secureGroup, adminGroup, deviceCtrl)
	runInventoryRouter(secureGroup, adminGroup, inventoryCtrl)
	runNotificationRouter(secureGroup, notificationCtrl)
	runActivityRouter(adminGroup, activityCtrl)
	runReportRouter(secureGroup, adminGroup, reportCtrl)
}
