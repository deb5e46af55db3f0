package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

const maxNotesLength = 500

// LedgerService validates and records payments against fee schedules and
// computes outstanding dues.
type LedgerService struct {
	store  database.Storage
	access *AccessService
	now    func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store database.Storage, access *AccessService) *LedgerService {
	return &LedgerService{
		store:  store,
		access: access,
		now:    time.Now,
	}
}

// WithClock overrides the ledger's clock. Tests use it to pin "now".
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// RecordPaymentRequest carries the input for recording a payment.
type RecordPaymentRequest struct {
	FeeID         uint
	StudentID     uint // Ignored for student actors; they always pay for themselves
	Amount        float64
	Method        model.PaymentMethod
	TransactionID *string
	Notes         string
}

// RecordPayment validates the request against the referenced fee and creates
// a payment. There is no external settlement step, so the payment is created
// with status "paid". The receipt number is globally unique.
func (s *LedgerService) RecordPayment(actor Actor, req RecordPaymentRequest) (*model.Payment, error) {
	if actor.IsZero() {
		return nil, apperr.Authentication("not authorized to record payments")
	}

	fee, err := s.store.GetFeeByID(req.FeeID)
	if err != nil {
		return nil, err
	}

	studentID := req.StudentID
	if !actor.IsAdmin() {
		// Students may only pay against their own record
		own, err := s.store.GetStudentByUserID(actor.UserID)
		if err != nil {
			return nil, err
		}
		if req.StudentID != 0 && req.StudentID != own.ID {
			return nil, apperr.Forbidden("not authorized to record payments for another student")
		}
		studentID = own.ID
	} else {
		if _, err := s.store.GetStudentByID(studentID); err != nil {
			return nil, err
		}
	}

	if req.Amount < 0 {
		return nil, apperr.Validation("payment amount cannot be negative")
	}
	if req.Amount > fee.Amount {
		return nil, apperr.Validation("payment amount exceeds fee amount")
	}
	if !model.ValidPaymentMethod(req.Method) {
		return nil, apperr.Validation("invalid payment method")
	}
	if len(req.Notes) > maxNotesLength {
		return nil, apperr.Validation("notes cannot exceed 500 characters")
	}

	payment := &model.Payment{
		StudentID:     studentID,
		FeeID:         req.FeeID,
		Amount:        req.Amount,
		Status:        model.PaymentStatusPaid,
		PaymentDate:   s.now(),
		PaymentMethod: req.Method,
		TransactionID: req.TransactionID,
		ReceiptNumber: generateReceiptNumber(),
		Notes:         req.Notes,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// SetPaymentStatus moves a payment to a new settlement status. Admin only.
// Any status may move to any other status.
func (s *LedgerService) SetPaymentStatus(actor Actor, paymentID uint, newStatus model.PaymentStatus) (*model.Payment, error) {
	if err := s.access.AuthorizeRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if !model.ValidPaymentStatus(newStatus) {
		return nil, apperr.Validation("invalid payment status")
	}
	return s.store.UpdatePaymentStatus(paymentID, newStatus)
}

// FeeDue is the outstanding balance a student owes against one fee.
type FeeDue struct {
	Fee         model.Fee `json:"fee"`
	TotalAmount float64   `json:"totalAmount"`
	PaidAmount  float64   `json:"paidAmount"`
	DueAmount   float64   `json:"dueAmount"`
	IsOverdue   bool      `json:"isOverdue"`
}

// ComputeDues derives the student's balance against every fee for their
// course. DueAmount is not clamped at zero: an overpayment surfaces as a
// negative balance instead of being hidden.
func (s *LedgerService) ComputeDues(studentID uint) ([]FeeDue, error) {
	student, err := s.store.GetStudentByID(studentID)
	if err != nil {
		return nil, err
	}

	fees, err := s.store.FindFees(database.FeeFilter{Course: student.Course})
	if err != nil {
		return nil, err
	}

	now := s.now()
	dues := make([]FeeDue, 0, len(fees))
	for _, fee := range fees {
		paid, err := s.store.SumPaidAmount(fee.ID, student.ID)
		if err != nil {
			return nil, err
		}
		dues = append(dues, FeeDue{
			Fee:         fee,
			TotalAmount: fee.Amount,
			PaidAmount:  paid,
			DueAmount:   fee.Amount - paid,
			IsOverdue:   now.After(fee.DueDate),
		})
	}
	return dues, nil
}

// generateReceiptNumber produces a globally unique receipt number. Random
// rather than monotonic, so it needs no coordination across instances.
func generateReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.New().String())
}
