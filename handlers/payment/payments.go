package payment

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"student-fees-api/database"
	"student-fees-api/handlers"
	"student-fees-api/model"
	"student-fees-api/services"
	"student-fees-api/utils/response"
	"student-fees-api/utils/validation"
)

// PaymentHandler handles payment ledger requests
type PaymentHandler struct {
	store     database.Storage
	ledger    *services.LedgerService
	access    *services.AccessService
	reporting *services.ReportingService
	export    *services.ExportService
	validator *validation.Validator
}

// NewPaymentHandler creates a new payment handler. export may be nil when no
// object storage is configured.
func NewPaymentHandler(store database.Storage, ledger *services.LedgerService, access *services.AccessService, reporting *services.ReportingService, export *services.ExportService) *PaymentHandler {
	return &PaymentHandler{
		store:     store,
		ledger:    ledger,
		access:    access,
		reporting: reporting,
		export:    export,
		validator: validation.NewValidator(),
	}
}

// ListPayments handles GET /api/payments. Admins see every payment; a
// student sees only their own.
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	actor := handlers.ActorFrom(c)

	filter := database.PaymentFilter{}
	if !actor.IsAdmin() {
		student, err := h.access.ResolveStudent(actor)
		if err != nil {
			return response.FromError(c, err)
		}
		filter.StudentID = student.ID
	}

	payments, err := h.store.FindPayments(filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithCount(c, len(payments), payments)
}

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	FeeID         uint    `json:"fee" validate:"required,min=1"`
	StudentID     uint    `json:"student"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required"`
	TransactionID *string `json:"transactionId" validate:"omitempty,max=100"`
	Notes         string  `json:"notes" validate:"omitempty,max=500"`
}

// CreatePayment handles POST /api/payments
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	payment, err := h.ledger.RecordPayment(handlers.ActorFrom(c), services.RecordPaymentRequest{
		FeeID:         req.FeeID,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Method:        model.PaymentMethod(req.PaymentMethod),
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, payment)
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed refunded"`
}

// UpdatePaymentStatus handles PUT /api/payments/:id/status
func (h *PaymentHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	payment, err := h.ledger.SetPaymentStatus(handlers.ActorFrom(c), uint(id), model.PaymentStatus(req.Status))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, payment)
}

func parseReportFilter(c *fiber.Ctx) (services.ReportFilter, error) {
	filter := services.ReportFilter{
		Status: model.PaymentStatus(c.Query("status")),
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}

// PaymentReport handles GET /api/payments/report
func (h *PaymentHandler) PaymentReport(c *fiber.Ctx) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return response.BadRequest(c, "Dates must be RFC 3339 timestamps")
	}

	payments, err := h.reporting.PaymentReport(filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithCount(c, len(payments), payments)
}

// ExportPaymentReport handles POST /api/payments/report/export. Uploads the
// CSV render of the filtered report to object storage.
func (h *PaymentHandler) ExportPaymentReport(c *fiber.Ctx) error {
	if h.export == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "InternalError", "Report export is not configured")
	}

	filter, err := parseReportFilter(c)
	if err != nil {
		return response.BadRequest(c, "Dates must be RFC 3339 timestamps")
	}

	url, err := h.export.ExportPaymentReport(c.Context(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"url": url})
}
