package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"student-fees-api/handlers"
	"student-fees-api/services"
	"student-fees-api/utils/response"
)

// DashboardHandler serves role-aware dashboard statistics
type DashboardHandler struct {
	reporting *services.ReportingService
	access    *services.AccessService
}

func NewDashboardHandler(reporting *services.ReportingService, access *services.AccessService) *DashboardHandler {
	return &DashboardHandler{reporting: reporting, access: access}
}

// GetStats handles GET /api/dashboard/stats. Admins get the system-wide
// summary; students get a summary scoped to their own record.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	actor := handlers.ActorFrom(c)

	if actor.IsAdmin() {
		summary, err := h.reporting.GetAdminSummary()
		if err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, summary)
	}

	student, err := h.access.ResolveStudent(actor)
	if err != nil {
		return response.FromError(c, err)
	}
	summary, err := h.reporting.GetStudentSummary(student.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, summary)
}
