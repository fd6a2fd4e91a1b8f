package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type MasterDataHandler struct {
	masterRepo        *repository.MasterRepository
	lookupService     *service.LookupService
	validationService *service.ValidationService
	importService     *service.ImportService
	excelService      *service.ExcelService
	cfg               *config.Config
}

func NewMasterDataHandler(
	masterRepo *repository.MasterRepository,
	lookupService *service.LookupService,
	validationService *service.ValidationService,
	importService *service.ImportService,
	excelService *service.ExcelService,
	cfg *config.Config,
) *MasterDataHandler {
	return &MasterDataHandler{
		masterRepo:        masterRepo,
		lookupService:     lookupService,
		validationService: validationService,
		importService:     importService,
		excelService:      excelService,
		cfg:               cfg,
	}
}

func entityParam(c *fiber.Ctx) (models.EntityKind, error) {
	return models.ParseEntityKind(c.Params("entity"))
}

func scopeFromQuery(c *fiber.Ctx) models.ImportScope {
	groupID, _ := strconv.Atoi(c.Query("group_id", "0"))
	companyID, _ := strconv.Atoi(c.Query("company_id", "0"))
	return models.ImportScope{
		GroupID:    groupID,
		GroupName:  c.Query("group_name", ""),
		CompanyID:  companyID,
		FiscalYear: c.Query("fiscal_year", ""),
	}
}

func (h *MasterDataHandler) GetRecords(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	scope := scopeFromQuery(c)

	records, total, err := h.masterRepo.FindAll(kind, scope, params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve records", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	responseData := fiber.Map{
		"records":    records,
		"pagination": pagination,
	}
	return utils.PaginatedResponseBuilder(c, "Records retrieved successfully", responseData, pagination)
}

func (h *MasterDataHandler) GetRecord(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record ID", err)
	}

	record, err := h.masterRepo.FindByID(kind, id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Record not found", err)
	}
	details, err := h.masterRepo.FindDetails(record.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve record details", err)
	}

	return utils.SuccessResponse(c, "Record retrieved successfully", fiber.Map{
		"record":  record,
		"details": details,
	})
}

// ValidateBatch runs the full validation pass over the posted rows and
// returns per-row results plus the batch summary. Nothing is persisted.
func (h *MasterDataHandler) ValidateBatch(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	var req models.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if len(req.Rows) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "At least one row is required", nil)
	}

	results, summary, err := h.validate(kind, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Validation failed", err)
	}

	return utils.SuccessResponse(c, "Batch validated", models.ValidateResponse{
		Results: results,
		Summary: summary,
	})
}

// ImportBatch validates and then persists the posted rows. Item, Ledger
// and SparePart batches must be fully valid; HSN and Tool imports accept
// a partially valid batch and persist the valid rows only.
func (h *MasterDataHandler) ImportBatch(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	var req models.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if len(req.Rows) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "At least one row is required", nil)
	}

	results, summary, err := h.validate(kind, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Validation failed", err)
	}

	if !kind.PerRowTransaction() && !summary.IsValid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.APIResponse{
			Success: false,
			Message: "Batch contains invalid rows and was not imported",
			Data: models.ValidateResponse{
				Results: results,
				Summary: summary,
			},
		})
	}

	username, _ := c.Locals("username").(string)
	result := h.importService.Import(kind, req.Scope(), results, username)

	return utils.SuccessResponse(c, result.Message, result)
}

func (h *MasterDataHandler) validate(kind models.EntityKind, req models.BatchRequest) ([]models.RowValidationResult, models.BatchValidationSummary, error) {
	scope := req.Scope()

	refs, err := h.lookupService.LoadReferenceSets(kind, scope)
	if err != nil {
		return nil, models.BatchValidationSummary{}, fmt.Errorf("load reference data: %w", err)
	}
	existing, err := h.masterRepo.ListExistingRows(kind, scope)
	if err != nil {
		return nil, models.BatchValidationSummary{}, fmt.Errorf("load existing rows: %w", err)
	}

	results, summary := h.validationService.Validate(kind, scope, req.CandidateRows(), existing, refs)
	return results, summary, nil
}

func (h *MasterDataHandler) DeleteRecord(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record ID", err)
	}

	if err := h.masterRepo.SoftDelete(kind, id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Record not found", err)
	}
	return utils.SuccessResponse(c, "Record deleted successfully", nil)
}

// ClearAll removes every record in the scope after re-checking the
// caller's clear credentials.
func (h *MasterDataHandler) ClearAll(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	var req models.ClearRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Username == "" || req.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Username and password are required", nil)
	}

	scope := scopeFromQuery(c)
	deleted, err := h.importService.ClearAll(kind, scope, req.Username, req.Password, req.Reason)
	if errors.Is(err, service.ErrUnauthorized) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid username or password", nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear records", err)
	}

	return utils.SuccessResponse(c, "Records cleared successfully", fiber.Map{
		"deleted_rows": deleted,
	})
}

func (h *MasterDataHandler) GetGroups(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	groups, err := h.masterRepo.FindGroups(kind)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve groups", err)
	}
	return utils.SuccessResponse(c, "Groups retrieved successfully", groups)
}

func (h *MasterDataHandler) DownloadTemplate(c *fiber.Ctx) error {
	kind, err := entityParam(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare template", err)
	}
	filename := fmt.Sprintf("%s_template.xlsx", kind)
	filePath := filepath.Join(h.cfg.UploadPath, filename)
	if err := h.excelService.GenerateTemplate(kind, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(filePath, filename)
}
