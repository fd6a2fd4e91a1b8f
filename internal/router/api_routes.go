package router

import (
	"masterdata-web/internal/config"
	"masterdata-web/internal/handler"
	"masterdata-web/internal/middleware"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	masterRepo := repository.NewMasterRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	// Initialize services
	sessions := service.NewSessionStore()
	authService := service.NewAuthService(userRepo, sessions, cfg)
	lookupService := service.NewLookupService(lookupRepo)
	validationService := service.NewValidationService()
	excelService := service.NewExcelService()

	store := service.StoreFunc(func() (service.ImportTx, error) { return masterRepo.Begin() })
	importService := service.NewImportService(store, userRepo, auditRepo, utils.GetLogger())

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	masterHandler := handler.NewMasterDataHandler(masterRepo, lookupService, validationService, importService, excelService, cfg)
	referenceHandler := handler.NewReferenceHandler(lookupRepo)
	uploadHandler := handler.NewUploadHandler(uploadRepo, excelService, asynqClient, redisClient, cfg)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(authService))

	// Auth routes
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	// Reference data routes
	references := protected.Group("/references")
	references.Get("/units", referenceHandler.GetUnits)
	references.Get("/categories", referenceHandler.GetCategories)
	references.Get("/sub-groups/:groupId", referenceHandler.GetSubGroups)
	references.Get("/country-states", referenceHandler.GetCountryStates)
	references.Get("/clients", referenceHandler.GetClients)
	references.Get("/departments", referenceHandler.GetDepartments)
	references.Get("/sales-reps", referenceHandler.GetSalesReps)

	// Upload session routes
	uploads := protected.Group("/uploads")
	uploads.Get("/", uploadHandler.GetSessions)
	uploads.Get("/export", uploadHandler.ExportSessions)
	uploads.Get("/:code", uploadHandler.GetSession)

	// Master data routes, one set per entity
	entities := protected.Group("/:entity")
	entities.Get("/", masterHandler.GetRecords)
	entities.Get("/groups", masterHandler.GetGroups)
	entities.Get("/template", masterHandler.DownloadTemplate)
	entities.Post("/validate", masterHandler.ValidateBatch)
	entities.Post("/import", masterHandler.ImportBatch)
	entities.Post("/upload", uploadHandler.UploadFile)
	entities.Delete("/clear", middleware.AdminOnly(), masterHandler.ClearAll)
	entities.Get("/:id", masterHandler.GetRecord)
	entities.Delete("/:id", masterHandler.DeleteRecord)
}
