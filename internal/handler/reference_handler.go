package handler

import (
	"masterdata-web/internal/repository"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the dropdown values the upload screens validate
// against.
type ReferenceHandler struct {
	lookupRepo *repository.LookupRepository
}

func NewReferenceHandler(lookupRepo *repository.LookupRepository) *ReferenceHandler {
	return &ReferenceHandler{lookupRepo: lookupRepo}
}

func (h *ReferenceHandler) GetUnits(c *fiber.Ctx) error {
	units, err := h.lookupRepo.Units()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve units", err)
	}
	return utils.SuccessResponse(c, "Units retrieved successfully", units)
}

func (h *ReferenceHandler) GetCategories(c *fiber.Ctx) error {
	tag := c.Query("tag", "")
	categories, err := h.lookupRepo.Categories(tag)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve categories", err)
	}
	return utils.SuccessResponse(c, "Categories retrieved successfully", categories)
}

func (h *ReferenceHandler) GetSubGroups(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("groupId")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid group ID", err)
	}
	subGroups, err := h.lookupRepo.SubGroups(groupID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sub groups", err)
	}
	return utils.SuccessResponse(c, "Sub groups retrieved successfully", subGroups)
}

func (h *ReferenceHandler) GetCountryStates(c *fiber.Ctx) error {
	pairs, err := h.lookupRepo.CountryStates()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve country states", err)
	}
	return utils.SuccessResponse(c, "Country states retrieved successfully", pairs)
}

func (h *ReferenceHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.lookupRepo.Clients()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve clients", err)
	}
	return utils.SuccessResponse(c, "Clients retrieved successfully", clients)
}

func (h *ReferenceHandler) GetDepartments(c *fiber.Ctx) error {
	departments, err := h.lookupRepo.Departments()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve departments", err)
	}
	return utils.SuccessResponse(c, "Departments retrieved successfully", departments)
}

func (h *ReferenceHandler) GetSalesReps(c *fiber.Ctx) error {
	reps, err := h.lookupRepo.SalesReps()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sales representatives", err)
	}
	return utils.SuccessResponse(c, "Sales representatives retrieved successfully", reps)
}
