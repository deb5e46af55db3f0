package fee

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"student-fees-api/handlers"
	"student-fees-api/services"
	"student-fees-api/utils/response"
	"student-fees-api/utils/validation"
)

// FeeHandler handles fee schedule requests
type FeeHandler struct {
	fees      *services.FeeService
	validator *validation.Validator
}

// NewFeeHandler creates a new fee handler
func NewFeeHandler(fees *services.FeeService) *FeeHandler {
	return &FeeHandler{
		fees:      fees,
		validator: validation.NewValidator(),
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateFeeRequest represents the request body for creating a fee
type CreateFeeRequest struct {
	Course      string    `json:"course" validate:"required,max=255"`
	Amount      float64   `json:"amount" validate:"gte=0"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool     `json:"isActive"`
}

// CreateFee handles POST /api/fees
func (h *FeeHandler) CreateFee(c *fiber.Ctx) error {
	var req CreateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	fee, err := h.fees.Create(handlers.ActorFrom(c), services.CreateFeeRequest{
		Course:      validation.SanitizeString(req.Course),
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Description: validation.SanitizeString(req.Description),
		IsActive:    req.IsActive,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fee)
}

// ListFees handles GET /api/fees
func (h *FeeHandler) ListFees(c *fiber.Ctx) error {
	fees, err := h.fees.List(handlers.ActorFrom(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithCount(c, len(fees), fees)
}

// GetFee handles GET /api/fees/:id
func (h *FeeHandler) GetFee(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid fee id")
	}

	fee, err := h.fees.Get(handlers.ActorFrom(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fee)
}

// UpdateFeeRequest represents the request body for a partial fee update
type UpdateFeeRequest struct {
	Course      *string    `json:"course" validate:"omitempty,min=1,max=255"`
	Amount      *float64   `json:"amount" validate:"omitempty,gte=0"`
	DueDate     *time.Time `json:"dueDate"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool      `json:"isActive"`
}

// UpdateFee handles PUT /api/fees/:id
func (h *FeeHandler) UpdateFee(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid fee id")
	}

	var req UpdateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	fee, err := h.fees.Update(handlers.ActorFrom(c), id, services.UpdateFeeRequest{
		Course:      req.Course,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fee)
}

// DeleteFee handles DELETE /api/fees/:id. Refused while payments reference
// the fee.
func (h *FeeHandler) DeleteFee(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid fee id")
	}

	if err := h.fees.Delete(handlers.ActorFrom(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"deleted": true})
}
