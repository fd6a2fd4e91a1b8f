package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// TaskImportBatch is the asynq task type for background workbook imports.
const TaskImportBatch = "masterdata:import"

type ImportTaskPayload struct {
	SessionID   int    `json:"session_id"`
	SessionCode string `json:"session_code"`
}

type ImportTaskHandler struct {
	redis             *redis.Client
	cfg               *config.Config
	masterRepo        *repository.MasterRepository
	uploadRepo        *repository.UploadRepository
	lookupService     *service.LookupService
	validationService *service.ValidationService
	importService     *service.ImportService
	excelService      *service.ExcelService
}

func NewImportTaskHandler(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) *ImportTaskHandler {
	masterRepo := repository.NewMasterRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	store := service.StoreFunc(func() (service.ImportTx, error) { return masterRepo.Begin() })

	return &ImportTaskHandler{
		redis:             redisClient,
		cfg:               cfg,
		masterRepo:        masterRepo,
		uploadRepo:        uploadRepo,
		lookupService:     service.NewLookupService(lookupRepo),
		validationService: service.NewValidationService(),
		importService:     service.NewImportService(store, userRepo, auditRepo, utils.GetLogger()),
		excelService:      service.NewExcelService(),
	}
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Printf("Starting import for session %s (ID: %d)", payload.SessionCode, payload.SessionID)

	session, err := h.uploadRepo.GetSessionByID(payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status == models.UploadStatusCompleted || session.Status == models.UploadStatusFailed {
		log.Printf("Session %s is already %s, skipping import", payload.SessionCode, session.Status)
		return nil
	}

	h.uploadRepo.UpdateSessionStatus(session.ID, models.UploadStatusProcessing, "")
	h.setProgress(ctx, session.ID, 0)

	kind := session.EntityKind
	scope := models.ImportScope{
		GroupID:    session.GroupID,
		GroupName:  session.GroupName,
		CompanyID:  session.CompanyID,
		FiscalYear: session.FiscalYear,
	}

	rows, err := h.excelService.ParseRows(session.FilePath, kind)
	if err != nil {
		h.fail(session.ID, fmt.Sprintf("failed to parse file: %v", err))
		return fmt.Errorf("failed to parse file: %w", err)
	}

	refs, err := h.lookupService.LoadReferenceSets(kind, scope)
	if err != nil {
		h.fail(session.ID, fmt.Sprintf("failed to load reference data: %v", err))
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	existing, err := h.masterRepo.ListExistingRows(kind, scope)
	if err != nil {
		h.fail(session.ID, fmt.Sprintf("failed to load existing rows: %v", err))
		return fmt.Errorf("failed to load existing rows: %w", err)
	}

	results, summary := h.validationService.Validate(kind, scope, rows, existing, refs)
	h.setProgress(ctx, session.ID, 50)

	if !kind.PerRowTransaction() && !summary.IsValid {
		// Whole-batch entities do not import a partially valid file.
		message := fmt.Sprintf("validation failed: %d of %d rows invalid",
			summary.TotalRows-summary.ValidRows, summary.TotalRows)
		h.uploadRepo.UpdateSessionProgress(session.ID, summary.TotalRows, 0, summary.TotalRows-summary.ValidRows)
		h.fail(session.ID, message)
		h.writeErrorReport(session, kind, results, summary)
		log.Printf("Import rejected for session %s: %s", payload.SessionCode, message)
		return nil
	}

	result := h.importService.Import(kind, scope, results, session.Username)
	h.setProgress(ctx, session.ID, 100)

	h.uploadRepo.UpdateSessionProgress(session.ID, result.TotalRows, result.ImportedRows, result.ErrorRows)
	if result.Success {
		h.uploadRepo.UpdateSessionStatus(session.ID, models.UploadStatusCompleted, "")
	} else {
		h.fail(session.ID, result.Message)
		h.writeErrorReport(session, kind, results, summary)
	}

	log.Printf("Import finished for session %s. Imported: %d, Errors: %d",
		payload.SessionCode, result.ImportedRows, result.ErrorRows)
	return nil
}

func (h *ImportTaskHandler) fail(sessionID int, message string) {
	if err := h.uploadRepo.UpdateSessionStatus(sessionID, models.UploadStatusFailed, message); err != nil {
		log.Printf("Failed to update session status: %v", err)
	}
}

func (h *ImportTaskHandler) setProgress(ctx context.Context, sessionID int, percent float64) {
	if h.redis == nil {
		return
	}
	progressKey := fmt.Sprintf("import:progress:%d", sessionID)
	h.redis.Set(ctx, progressKey, fmt.Sprintf("%.2f", percent), 0)
}

// writeErrorReport drops a workbook with the per-cell failures next to the
// uploaded file. Best-effort only.
func (h *ImportTaskHandler) writeErrorReport(session *models.UploadSession, kind models.EntityKind, results []models.RowValidationResult, summary models.BatchValidationSummary) {
	reportPath := session.FilePath + ".errors.xlsx"
	if err := h.excelService.GenerateValidationReport(kind, results, summary, reportPath); err != nil {
		log.Printf("Failed to write error report for session %s: %v", session.SessionCode, err)
	}
}
