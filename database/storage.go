package database

import (
	"time"

	"student-fees-api/model"
)

// StudentFilter narrows FindStudents. Zero values mean "no filter".
type StudentFilter struct {
	Course string
	Status model.StudentStatus
}

// StudentUpdate is the allow-list of mutable student fields. Only non-nil
// fields are written; protected columns (ID, UserID, timestamps) cannot be
// touched through it.
type StudentUpdate struct {
	StudentCode    *string
	FullName       *string
	Course         *string
	ContactNumber  *string
	Address        *string
	EnrollmentDate *time.Time
	Status         *model.StudentStatus
}

// FeeFilter narrows FindFees.
type FeeFilter struct {
	Course     string
	ActiveOnly bool
}

// FeeUpdate is the allow-list of mutable fee fields.
type FeeUpdate struct {
	Course      *string
	Amount      *float64
	DueDate     *time.Time
	Description *string
	IsActive    *bool
}

// PaymentFilter narrows FindPayments. The date range is inclusive on both
// ends. Results are always sorted by payment date descending.
type PaymentFilter struct {
	StudentID uint
	FeeID     uint
	Status    model.PaymentStatus
	From      *time.Time
	To        *time.Time
	Limit     int
}

// StatusSummary is a grouped aggregate over payments sharing a status.
type StatusSummary struct {
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

// Storage is the persistence contract for the fee ledger. Production uses
// GORMStore on PostgreSQL; tests use MemoryStore. All lookup methods return
// an apperr.NotFound error when the row does not exist, and integrity
// violations surface as apperr.Conflict.
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// Users
	CreateUser(user *model.User) error
	GetUserByID(id uint) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	BumpTokenVersion(userID uint) error

	// Students
	CreateStudent(student *model.Student) error
	GetStudentByID(id uint) (*model.Student, error)
	GetStudentByUserID(userID uint) (*model.Student, error)
	FindStudents(filter StudentFilter) ([]model.Student, error)
	UpdateStudent(id uint, upd StudentUpdate) (*model.Student, error)
	// DeleteStudent removes the student and all of its payments as one
	// atomic unit. No orphan payments survive it.
	DeleteStudent(id uint) error
	CountStudents() (int64, error)

	// Fees
	CreateFee(fee *model.Fee) error
	GetFeeByID(id uint) (*model.Fee, error)
	FindFees(filter FeeFilter) ([]model.Fee, error)
	UpdateFee(id uint, upd FeeUpdate) (*model.Fee, error)
	// DeleteFee fails with apperr.Conflict while any payment references the
	// fee. The check and the delete run atomically w.r.t. concurrent writers.
	DeleteFee(id uint) error
	CountFees() (int64, error)
	CountFeesByCourse(course string) (int64, error)

	// Payments
	CreatePayment(payment *model.Payment) error
	GetPaymentByID(id uint) (*model.Payment, error)
	FindPayments(filter PaymentFilter) ([]model.Payment, error)
	UpdatePaymentStatus(id uint, status model.PaymentStatus) (*model.Payment, error)
	CountPayments() (int64, error)
	CountPaymentsByStudentAndStatus(studentID uint, status model.PaymentStatus) (int64, error)
	// SumPaidAmount totals the "paid" payments a student has made against a fee.
	SumPaidAmount(feeID, studentID uint) (float64, error)
	PaymentStatusSummary() (map[model.PaymentStatus]StatusSummary, error)
	PaymentStatusSummaryForStudent(studentID uint) (map[model.PaymentStatus]StatusSummary, error)

	// Audit and job logs
	CreateAuditLog(entry *model.AdminAuditLog) error
	CreateCronJobLog(entry *model.CronJobLog) error

	// Token blacklist
	BlacklistToken(entry *model.JWTTokenBlacklist) error
	IsTokenBlacklisted(jti string) (bool, error)
	PurgeExpiredBlacklistEntries(now time.Time) (int64, error)
}
