package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"student-fees-api/config"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

// GORMStore is the PostgreSQL-backed Storage implementation.
type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// NewGORMStore wraps an existing connection (used by cmd binaries).
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// GetDB exposes the raw connection for components that need it (cron, seeds).
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	return s.db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Fee{},
		&model.Payment{},
		&model.JWTTokenBlacklist{},
		&model.AdminAuditLog{},
		&model.CronJobLog{},
	)
}

// Close closes the underlying database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the database
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

//
// Users
//

func (s *GORMStore) CreateUser(user *model.User) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("a user with this email already exists")
	}
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *GORMStore) GetUserByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *GORMStore) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *GORMStore) BumpTokenVersion(userID uint) error {
	return s.db.Model(&model.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
}

//
// Students
//

func (s *GORMStore) CreateStudent(student *model.Student) error {
	var count int64
	if err := s.db.Model(&model.Student{}).Where("student_code = ?", student.StudentCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check student code uniqueness: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("a student with this student id already exists")
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}
	if student.Status == "" {
		student.Status = model.StudentStatusActive
	}
	if err := s.db.Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *GORMStore) GetStudentByID(id uint) (*model.Student, error) {
	var student model.Student
	if err := s.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	return &student, nil
}

func (s *GORMStore) GetStudentByUserID(userID uint) (*model.Student, error) {
	var student model.Student
	if err := s.db.Where("user_id = ?", userID).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no student profile found")
		}
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	return &student, nil
}

func (s *GORMStore) FindStudents(filter StudentFilter) ([]model.Student, error) {
	query := s.db.Model(&model.Student{})
	if filter.Course != "" {
		query = query.Where("course = ?", filter.Course)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var students []model.Student
	if err := query.Order("enrollment_date DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}
	return students, nil
}

func (s *GORMStore) UpdateStudent(id uint, upd StudentUpdate) (*model.Student, error) {
	updates := map[string]interface{}{}
	if upd.StudentCode != nil {
		updates["student_code"] = *upd.StudentCode
	}
	if upd.FullName != nil {
		updates["full_name"] = *upd.FullName
	}
	if upd.Course != nil {
		updates["course"] = *upd.Course
	}
	if upd.ContactNumber != nil {
		updates["contact_number"] = *upd.ContactNumber
	}
	if upd.Address != nil {
		updates["address"] = *upd.Address
	}
	if upd.EnrollmentDate != nil {
		updates["enrollment_date"] = *upd.EnrollmentDate
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}

	student, err := s.GetStudentByID(id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return student, nil
	}
	if err := s.db.Model(student).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return s.GetStudentByID(id)
}

func (s *GORMStore) DeleteStudent(id uint) error {
	// Payments first, then the student, in one transaction so a failure
	// cannot leave orphan payments behind.
	return s.db.Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.First(&student, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("student not found")
			}
			return fmt.Errorf("failed to fetch student: %w", err)
		}
		if err := tx.Where("student_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete student payments: %w", err)
		}
		if err := tx.Delete(&student).Error; err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		return nil
	})
}

func (s *GORMStore) CountStudents() (int64, error) {
	var count int64
	if err := s.db.Model(&model.Student{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

//
// Fees
//

func (s *GORMStore) CreateFee(fee *model.Fee) error {
	var count int64
	if err := s.db.Model(&model.Fee{}).Where("course = ?", fee.Course).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check course uniqueness: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("a fee for this course already exists")
	}
	if err := s.db.Create(fee).Error; err != nil {
		return fmt.Errorf("failed to create fee: %w", err)
	}
	return nil
}

func (s *GORMStore) GetFeeByID(id uint) (*model.Fee, error) {
	var fee model.Fee
	if err := s.db.First(&fee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("fee not found")
		}
		return nil, fmt.Errorf("failed to fetch fee: %w", err)
	}
	return &fee, nil
}

func (s *GORMStore) FindFees(filter FeeFilter) ([]model.Fee, error) {
	query := s.db.Model(&model.Fee{})
	if filter.Course != "" {
		query = query.Where("course = ?", filter.Course)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var fees []model.Fee
	if err := query.Order("created_at DESC").Find(&fees).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch fees: %w", err)
	}
	return fees, nil
}

func (s *GORMStore) UpdateFee(id uint, upd FeeUpdate) (*model.Fee, error) {
	updates := map[string]interface{}{}
	if upd.Course != nil {
		updates["course"] = *upd.Course
	}
	if upd.Amount != nil {
		updates["amount"] = *upd.Amount
	}
	if upd.DueDate != nil {
		updates["due_date"] = *upd.DueDate
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	fee, err := s.GetFeeByID(id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return fee, nil
	}
	if err := s.db.Model(fee).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update fee: %w", err)
	}
	return s.GetFeeByID(id)
}

func (s *GORMStore) DeleteFee(id uint) error {
	// The reference check and the delete share a transaction, closing the
	// race the check-then-delete sequence would otherwise have.
	return s.db.Transaction(func(tx *gorm.DB) error {
		var fee model.Fee
		if err := tx.First(&fee, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("fee not found")
			}
			return fmt.Errorf("failed to fetch fee: %w", err)
		}
		var count int64
		if err := tx.Model(&model.Payment{}).Where("fee_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count fee payments: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("cannot delete fee with existing payments")
		}
		if err := tx.Delete(&fee).Error; err != nil {
			return fmt.Errorf("failed to delete fee: %w", err)
		}
		return nil
	})
}

func (s *GORMStore) CountFees() (int64, error) {
	var count int64
	if err := s.db.Model(&model.Fee{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count fees: %w", err)
	}
	return count, nil
}

func (s *GORMStore) CountFeesByCourse(course string) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Fee{}).Where("course = ?", course).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count fees: %w", err)
	}
	return count, nil
}

//
// Payments
//

func (s *GORMStore) CreatePayment(payment *model.Payment) error {
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	if err := s.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *GORMStore) GetPaymentByID(id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := s.db.Preload("Student").Preload("Fee").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &payment, nil
}

func (s *GORMStore) FindPayments(filter PaymentFilter) ([]model.Payment, error) {
	query := s.db.Model(&model.Payment{})
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.FeeID != 0 {
		query = query.Where("fee_id = ?", filter.FeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("payment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("payment_date <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var payments []model.Payment
	if err := query.Preload("Student").Preload("Fee").
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, nil
}

func (s *GORMStore) UpdatePaymentStatus(id uint, status model.PaymentStatus) (*model.Payment, error) {
	payment, err := s.GetPaymentByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(payment).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = status
	return payment, nil
}

func (s *GORMStore) CountPayments() (int64, error) {
	var count int64
	if err := s.db.Model(&model.Payment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (s *GORMStore) CountPaymentsByStudentAndStatus(studentID uint, status model.PaymentStatus) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Payment{}).
		Where("student_id = ? AND status = ?", studentID, status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (s *GORMStore) SumPaidAmount(feeID, studentID uint) (float64, error) {
	var result struct {
		Total float64
	}
	if err := s.db.Model(&model.Payment{}).
		Where("fee_id = ? AND student_id = ? AND status = ?", feeID, studentID, model.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("failed to sum paid amount: %w", err)
	}
	return result.Total, nil
}

type statusRow struct {
	Status      model.PaymentStatus
	Count       int64
	TotalAmount float64
}

func (s *GORMStore) PaymentStatusSummary() (map[model.PaymentStatus]StatusSummary, error) {
	return s.statusSummary(s.db.Model(&model.Payment{}))
}

func (s *GORMStore) PaymentStatusSummaryForStudent(studentID uint) (map[model.PaymentStatus]StatusSummary, error) {
	return s.statusSummary(s.db.Model(&model.Payment{}).Where("student_id = ?", studentID))
}

func (s *GORMStore) statusSummary(query *gorm.DB) (map[model.PaymentStatus]StatusSummary, error) {
	var rows []statusRow
	if err := query.
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate payments by status: %w", err)
	}

	summary := make(map[model.PaymentStatus]StatusSummary, len(rows))
	for _, row := range rows {
		summary[row.Status] = StatusSummary{Count: row.Count, TotalAmount: row.TotalAmount}
	}
	return summary, nil
}

//
// Audit and job logs
//

func (s *GORMStore) CreateAuditLog(entry *model.AdminAuditLog) error {
	return s.db.Create(entry).Error
}

func (s *GORMStore) CreateCronJobLog(entry *model.CronJobLog) error {
	return s.db.Create(entry).Error
}

//
// Token blacklist
//

func (s *GORMStore) BlacklistToken(entry *model.JWTTokenBlacklist) error {
	return s.db.Create(entry).Error
}

func (s *GORMStore) IsTokenBlacklisted(jti string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.JWTTokenBlacklist{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

func (s *GORMStore) PurgeExpiredBlacklistEntries(now time.Time) (int64, error) {
	result := s.db.Unscoped().
		Where("expires_at < ?", now).
		Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge blacklist entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
