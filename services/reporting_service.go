package services

import (
	"fmt"
	"time"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

// ReportingService produces read-side summaries for the dashboards. It never
// mutates and never caches, so every call reflects the store at call time.
type ReportingService struct {
	store database.Storage
}

// NewReportingService creates a new reporting service
func NewReportingService(store database.Storage) *ReportingService {
	return &ReportingService{store: store}
}

// AdminSummary is the admin dashboard payload.
type AdminSummary struct {
	TotalStudents    int64                                            `json:"totalStudents"`
	TotalFees        int64                                            `json:"totalFees"`
	TotalPayments    int64                                            `json:"totalPayments"`
	RecentPayments   []model.Payment                                  `json:"recentPayments"`
	PaymentsByStatus map[model.PaymentStatus]database.StatusSummary `json:"paymentsByStatus"`
}

// GetAdminSummary aggregates platform-wide counts, the five most recent
// payments, and per-status payment totals.
func (s *ReportingService) GetAdminSummary() (*AdminSummary, error) {
	summary := &AdminSummary{}
	var err error

	if summary.TotalStudents, err = s.store.CountStudents(); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if summary.TotalFees, err = s.store.CountFees(); err != nil {
		return nil, fmt.Errorf("failed to count fees: %w", err)
	}
	if summary.TotalPayments, err = s.store.CountPayments(); err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	if summary.RecentPayments, err = s.store.FindPayments(database.PaymentFilter{Limit: 5}); err != nil {
		return nil, fmt.Errorf("failed to fetch recent payments: %w", err)
	}
	if summary.PaymentsByStatus, err = s.store.PaymentStatusSummary(); err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	return summary, nil
}

// StudentSummary is the student dashboard payload, scoped to one student's
// course and payments.
type StudentSummary struct {
	StudentCode  string                            `json:"studentId"`
	FullName     string                            `json:"fullName"`
	Course       string                            `json:"course"`
	TotalFees    int64                             `json:"totalFees"`
	PaidCount    int64                             `json:"paidCount"`
	PendingCount int64                             `json:"pendingCount"`
	DuesByStatus map[model.PaymentStatus]float64 `json:"duesByStatus"`
}

// GetStudentSummary aggregates one student's fee and payment position.
func (s *ReportingService) GetStudentSummary(studentID uint) (*StudentSummary, error) {
	student, err := s.store.GetStudentByID(studentID)
	if err != nil {
		return nil, err
	}

	summary := &StudentSummary{
		StudentCode: student.StudentCode,
		FullName:    student.FullName,
		Course:      student.Course,
	}

	if summary.TotalFees, err = s.store.CountFeesByCourse(student.Course); err != nil {
		return nil, fmt.Errorf("failed to count fees: %w", err)
	}
	if summary.PaidCount, err = s.store.CountPaymentsByStudentAndStatus(student.ID, model.PaymentStatusPaid); err != nil {
		return nil, fmt.Errorf("failed to count paid payments: %w", err)
	}
	if summary.PendingCount, err = s.store.CountPaymentsByStudentAndStatus(student.ID, model.PaymentStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}

	byStatus, err := s.store.PaymentStatusSummaryForStudent(student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	summary.DuesByStatus = make(map[model.PaymentStatus]float64, len(byStatus))
	for status, entry := range byStatus {
		summary.DuesByStatus[status] = entry.TotalAmount
	}

	return summary, nil
}

// ReportFilter narrows a payment report. The date range is inclusive.
type ReportFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    model.PaymentStatus
}

// PaymentReport returns payments matching the filter, newest first.
func (s *ReportingService) PaymentReport(filter ReportFilter) ([]model.Payment, error) {
	if filter.Status != "" && !model.ValidPaymentStatus(filter.Status) {
		return nil, apperr.Validation("invalid payment status")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, apperr.Validation("end date cannot be before start date")
	}

	return s.store.FindPayments(database.PaymentFilter{
		Status: filter.Status,
		From:   filter.StartDate,
		To:     filter.EndDate,
	})
}
