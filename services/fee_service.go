package services

import (
	"time"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

const maxDescriptionLength = 500

// FeeService manages the fee schedule. Fees are administrator-owned.
type FeeService struct {
	store  database.Storage
	access *AccessService
}

// NewFeeService creates a new fee service
func NewFeeService(store database.Storage, access *AccessService) *FeeService {
	return &FeeService{store: store, access: access}
}

// CreateFeeRequest carries the input for creating a fee.
type CreateFeeRequest struct {
	Course      string
	Amount      float64
	DueDate     time.Time
	Description string
	IsActive    *bool
}

// Create adds a fee to the schedule. Admin only. Course names are unique.
func (s *FeeService) Create(actor Actor, req CreateFeeRequest) (*model.Fee, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Course == "" {
		return nil, apperr.Validation("course name is required")
	}
	if req.Amount < 0 {
		return nil, apperr.Validation("fee amount cannot be negative")
	}
	if req.DueDate.IsZero() {
		return nil, apperr.Validation("due date is required")
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, apperr.Validation("description cannot exceed 500 characters")
	}

	fee := &model.Fee{
		Course:      req.Course,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		fee.IsActive = *req.IsActive
	}
	if err := s.store.CreateFee(fee); err != nil {
		return nil, err
	}
	return fee, nil
}

// List returns fees. Admins see the whole schedule; a student actor sees the
// fees for their own course.
func (s *FeeService) List(actor Actor) ([]model.Fee, error) {
	if actor.IsZero() {
		return nil, apperr.Authentication("not authorized to list fees")
	}
	if actor.IsAdmin() {
		return s.store.FindFees(database.FeeFilter{})
	}

	student, err := s.store.GetStudentByUserID(actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.store.FindFees(database.FeeFilter{Course: student.Course})
}

// Get returns one fee. Admin only.
func (s *FeeService) Get(actor Actor, feeID uint) (*model.Fee, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.GetFeeByID(feeID)
}

// UpdateFeeRequest is the allow-list of mutable fee fields.
type UpdateFeeRequest struct {
	Course      *string
	Amount      *float64
	DueDate     *time.Time
	Description *string
	IsActive    *bool
}

// Update applies a partial fee update. Admin only.
func (s *FeeService) Update(actor Actor, feeID uint, req UpdateFeeRequest) (*model.Fee, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Amount != nil && *req.Amount < 0 {
		return nil, apperr.Validation("fee amount cannot be negative")
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		return nil, apperr.Validation("description cannot exceed 500 characters")
	}

	return s.store.UpdateFee(feeID, database.FeeUpdate{
		Course:      req.Course,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
}

// Delete removes a fee. Admin only. Fails with a conflict error while any
// payment references the fee.
func (s *FeeService) Delete(actor Actor, feeID uint) error {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteFee(feeID)
}
