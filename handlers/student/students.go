package student

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

// StudentHandler handles student record requests
type StudentHandler struct {
	students  *services.StudentService
	ledger    *services.LedgerService
	validator *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students *services.StudentService, ledger *services.LedgerService) *StudentHandler {
	return &StudentHandler{
		students:  students,
		ledger:    ledger,
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

// CreateStudentRequest represents the request body for enrolling a student
type CreateStudentRequest struct {
	UserID         uint       `json:"user" validate:"required,min=1"`
	StudentCode    string     `json:"studentId" validate:"required,max=50"`
	FullName       string     `json:"fullName" validate:"required,max=255"`
	Course         string     `json:"course" validate:"required,max=255"`
	ContactNumber  string     `json:"contactNumber" validate:"required,max=50"`
	Address        string     `json:"address" validate:"required,max=500"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

// CreateStudent handles POST /api/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	student, err := h.students.Create(handlers.ActorFrom(c), services.CreateStudentRequest{
		UserID:         req.UserID,
		StudentCode:    validation.SanitizeString(req.StudentCode),
		FullName:       validation.SanitizeString(req.FullName),
		Course:         validation.SanitizeString(req.Course),
		ContactNumber:  validation.SanitizeString(req.ContactNumber),
		Address:        validation.SanitizeString(req.Address),
		EnrollmentDate: req.EnrollmentDate,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, student)
}

// ListStudents handles GET /api/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	filter := database.StudentFilter{
		Course: c.Query("course"),
		Status: model.StudentStatus(c.Query("status")),
	}

	students, err := h.students.List(handlers.ActorFrom(c), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithCount(c, len(students), students)
}

// GetStudent handles GET /api/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	student, err := h.students.Get(handlers.ActorFrom(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, student)
}

// UpdateStudentRequest represents the request body for a partial profile update
type UpdateStudentRequest struct {
	FullName       *string    `json:"fullName" validate:"omitempty,min=1,max=255"`
	ContactNumber  *string    `json:"contactNumber" validate:"omitempty,min=1,max=50"`
	Address        *string    `json:"address" validate:"omitempty,min=1,max=500"`
	Course         *string    `json:"course" validate:"omitempty,min=1,max=255"`
	StudentCode    *string    `json:"studentId" validate:"omitempty,min=1,max=50"`
	Status         *string    `json:"status" validate:"omitempty,oneof=active inactive graduated"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

// UpdateStudent handles PUT /api/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var status *model.StudentStatus
	if req.Status != nil {
		s := model.StudentStatus(*req.Status)
		status = &s
	}

	student, err := h.students.Update(handlers.ActorFrom(c), id, services.UpdateProfileRequest{
		FullName:       req.FullName,
		ContactNumber:  req.ContactNumber,
		Address:        req.Address,
		Course:         req.Course,
		StudentCode:    req.StudentCode,
		Status:         status,
		EnrollmentDate: req.EnrollmentDate,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, student)
}

// DeleteStudent handles DELETE /api/students/:id. Cascades to payments.
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := h.students.Delete(handlers.ActorFrom(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"deleted": true})
}

// GetStudentPayments handles GET /api/students/:id/payments
func (h *StudentHandler) GetStudentPayments(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	payments, err := h.students.Payments(handlers.ActorFrom(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithCount(c, len(payments), payments)
}

// GetStudentDues handles GET /api/students/:id/dues
func (h *StudentHandler) GetStudentDues(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	// Ownership check first, so a student cannot probe other records
	if _, err := h.students.Get(handlers.ActorFrom(c), id); err != nil {
		return response.FromError(c, err)
	}

	dues, err := h.ledger.ComputeDues(id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, dues)
}
