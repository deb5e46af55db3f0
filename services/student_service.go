package services

import (
	"time"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

// StudentService handles student record management. Students are
// administrator-owned: only admins create and delete them, and a student may
// change only a bounded subset of their own profile.
type StudentService struct {
	store  database.Storage
	access *AccessService
}

// NewStudentService creates a new student service
func NewStudentService(store database.Storage, access *AccessService) *StudentService {
	return &StudentService{store: store, access: access}
}

// CreateStudentRequest carries the input for enrolling a student.
type CreateStudentRequest struct {
	UserID         uint
	StudentCode    string
	FullName       string
	Course         string
	ContactNumber  string
	Address        string
	EnrollmentDate *time.Time
}

// Create enrolls a new student against an existing user account. Admin only.
func (s *StudentService) Create(actor Actor, req CreateStudentRequest) (*model.Student, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserByID(req.UserID); err != nil {
		return nil, err
	}

	student := &model.Student{
		UserID:        req.UserID,
		StudentCode:   req.StudentCode,
		FullName:      req.FullName,
		Course:        req.Course,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		Status:        model.StudentStatusActive,
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = *req.EnrollmentDate
	}
	if err := s.store.CreateStudent(student); err != nil {
		return nil, err
	}
	return student, nil
}

// List returns all students, newest enrollment first. Admin only.
func (s *StudentService) List(actor Actor, filter database.StudentFilter) ([]model.Student, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.FindStudents(filter)
}

// Get returns one student. Admins read any record; students only their own.
func (s *StudentService) Get(actor Actor, studentID uint) (*model.Student, error) {
	return s.access.AuthorizeStudentAccess(actor, studentID)
}

// UpdateProfileRequest is the bounded set of fields a profile update may touch.
type UpdateProfileRequest struct {
	FullName       *string
	ContactNumber  *string
	Address        *string
	Course         *string              // admin only
	StudentCode    *string              // admin only
	Status         *model.StudentStatus // admin only
	EnrollmentDate *time.Time           // admin only
}

// Update applies a partial profile update. A student actor may change only
// fullName, contactNumber and address on their own record; everything else
// requires an admin.
func (s *StudentService) Update(actor Actor, studentID uint, req UpdateProfileRequest) (*model.Student, error) {
	if _, err := s.access.AuthorizeStudentAccess(actor, studentID); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if req.Course != nil || req.StudentCode != nil || req.Status != nil || req.EnrollmentDate != nil {
			return nil, apperr.Forbidden("students may only update their name, contact number and address")
		}
	}
	if req.Status != nil && !model.ValidStudentStatus(*req.Status) {
		return nil, apperr.Validation("invalid student status")
	}

	return s.store.UpdateStudent(studentID, database.StudentUpdate{
		FullName:       req.FullName,
		ContactNumber:  req.ContactNumber,
		Address:        req.Address,
		Course:         req.Course,
		StudentCode:    req.StudentCode,
		Status:         req.Status,
		EnrollmentDate: req.EnrollmentDate,
	})
}

// Delete removes a student and cascades to their payments. Admin only.
func (s *StudentService) Delete(actor Actor, studentID uint) error {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteStudent(studentID)
}

// Payments returns a student's payment history, newest first. Admins read
// any student's history; students only their own.
func (s *StudentService) Payments(actor Actor, studentID uint) ([]model.Payment, error) {
	student, err := s.access.AuthorizeStudentAccess(actor, studentID)
	if err != nil {
		return nil, err
	}
	return s.store.FindPayments(database.PaymentFilter{StudentID: student.ID})
}
