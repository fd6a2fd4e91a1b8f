package handler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"
	"masterdata-web/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type UploadHandler struct {
	uploadRepo   *repository.UploadRepository
	excelService *service.ExcelService
	asynqClient  *asynq.Client
	redis        *redis.Client
	cfg          *config.Config
}

func NewUploadHandler(
	uploadRepo *repository.UploadRepository,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cfg *config.Config,
) *UploadHandler {
	return &UploadHandler{
		uploadRepo:   uploadRepo,
		excelService: excelService,
		asynqClient:  asynqClient,
		redis:        redisClient,
		cfg:          cfg,
	}
}

// UploadFile accepts a workbook for one entity scope, stores it and queues
// the background import.
func (h *UploadHandler) UploadFile(c *fiber.Ctx) error {
	kind, err := models.ParseEntityKind(c.Params("entity"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	userID, _ := c.Locals("user_id").(int)
	username, _ := c.Locals("username").(string)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	groupID, _ := strconv.Atoi(c.FormValue("group_id", "0"))
	companyID, _ := strconv.Atoi(c.FormValue("company_id", "0"))
	groupName := c.FormValue("group_name", "")
	fiscalYear := c.FormValue("fiscal_year", "")

	sessionCode := fmt.Sprintf("UPLOAD-%s", uuid.New().String()[:8])

	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", err)
	}
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	// Parse up front so an unreadable file fails fast instead of in the
	// worker.
	rows, err := h.excelService.ParseRows(filePath, kind)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse Excel file", err)
	}

	session := &models.UploadSession{
		SessionCode: sessionCode,
		UserID:      userID,
		Username:    username,
		EntityKind:  kind,
		GroupID:     groupID,
		GroupName:   groupName,
		CompanyID:   companyID,
		FiscalYear:  fiscalYear,
		Filename:    file.Filename,
		FilePath:    filePath,
		TotalRows:   len(rows),
		Status:      models.UploadStatusPending,
	}
	if err := h.uploadRepo.CreateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create upload session", err)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background processing is not available", nil)
	}

	payload, err := json.Marshal(worker.ImportTaskPayload{
		SessionID:   session.ID,
		SessionCode: session.SessionCode,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build task payload", err)
	}

	task := asynq.NewTask(worker.TaskImportBatch, payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		h.uploadRepo.UpdateSessionStatus(session.ID, models.UploadStatusFailed, "failed to enqueue import task")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import", err)
	}

	return utils.SuccessResponse(c, "File uploaded and queued for import", fiber.Map{
		"session": session,
		"task_id": info.ID,
	})
}

func (h *UploadHandler) GetSessions(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sessions, total, err := h.uploadRepo.GetSessions(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve upload sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	responseData := fiber.Map{
		"sessions":   sessions,
		"pagination": pagination,
	}
	return utils.PaginatedResponseBuilder(c, "Upload sessions retrieved successfully", responseData, pagination)
}

// ExportSessions downloads the full session history as a workbook.
func (h *UploadHandler) ExportSessions(c *fiber.Ctx) error {
	sessions, _, err := h.uploadRepo.GetSessions(10000, 0)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve upload sessions", err)
	}

	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare export", err)
	}
	filename := fmt.Sprintf("upload_sessions_%s.xlsx", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(h.cfg.UploadPath, filename)
	if err := h.excelService.ExportSessions(sessions, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export upload sessions", err)
	}

	return c.Download(filePath, filename)
}

func (h *UploadHandler) GetSession(c *fiber.Ctx) error {
	code := c.Params("code")
	session, err := h.uploadRepo.GetSessionByCode(code)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Upload session not found", err)
	}

	progress := ""
	if h.redis != nil {
		progressKey := fmt.Sprintf("import:progress:%d", session.ID)
		progress, _ = h.redis.Get(c.Context(), progressKey).Result()
	}

	return utils.SuccessResponse(c, "Upload session retrieved successfully", fiber.Map{
		"session":  session,
		"progress": progress,
	})
}
