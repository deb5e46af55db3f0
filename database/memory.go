package database

import (
	"sort"
	"sync"
	"time"

	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

// MemoryStore is a mutex-guarded, map-backed Storage implementation. It backs
// the service tests and keeps the same error contract as GORMStore.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[uint]*model.User
	students  map[uint]*model.Student
	fees      map[uint]*model.Fee
	payments  map[uint]*model.Payment
	auditLogs []model.AdminAuditLog
	cronLogs  map[uint]*model.CronJobLog
	blacklist map[string]*model.JWTTokenBlacklist

	nextID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uint]*model.User),
		students:  make(map[uint]*model.Student),
		fees:      make(map[uint]*model.Fee),
		payments:  make(map[uint]*model.Payment),
		cronLogs:  make(map[uint]*model.CronJobLog),
		blacklist: make(map[string]*model.JWTTokenBlacklist),
	}
}

func (s *MemoryStore) Init() error        { return nil }
func (s *MemoryStore) Close() error       { return nil }
func (s *MemoryStore) HealthCheck() error { return nil }

func (s *MemoryStore) nextPK() uint {
	s.nextID++
	return s.nextID
}

//
// Users
//

func (s *MemoryStore) CreateUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.Conflict("a user with this email already exists")
		}
	}
	user.ID = s.nextPK()
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUserByID(id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *MemoryStore) BumpTokenVersion(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.TokenVersion++
	}
	return nil
}

//
// Students
//

func (s *MemoryStore) CreateStudent(student *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.students {
		if st.StudentCode == student.StudentCode {
			return apperr.Conflict("a student with this student id already exists")
		}
	}
	student.ID = s.nextPK()
	student.CreatedAt = time.Now()
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}
	if student.Status == "" {
		student.Status = model.StudentStatusActive
	}
	cp := *student
	s.students[student.ID] = &cp
	return nil
}

func (s *MemoryStore) GetStudentByID(id uint) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[id]
	if !ok {
		return nil, apperr.NotFound("student not found")
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryStore) GetStudentByUserID(userID uint) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.students {
		if st.UserID == userID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("no student profile found")
}

func (s *MemoryStore) FindStudents(filter StudentFilter) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students := make([]model.Student, 0, len(s.students))
	for _, st := range s.students {
		if filter.Course != "" && st.Course != filter.Course {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].EnrollmentDate.After(students[j].EnrollmentDate)
	})
	return students, nil
}

func (s *MemoryStore) UpdateStudent(id uint, upd StudentUpdate) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[id]
	if !ok {
		return nil, apperr.NotFound("student not found")
	}
	if upd.StudentCode != nil {
		st.StudentCode = *upd.StudentCode
	}
	if upd.FullName != nil {
		st.FullName = *upd.FullName
	}
	if upd.Course != nil {
		st.Course = *upd.Course
	}
	if upd.ContactNumber != nil {
		st.ContactNumber = *upd.ContactNumber
	}
	if upd.Address != nil {
		st.Address = *upd.Address
	}
	if upd.EnrollmentDate != nil {
		st.EnrollmentDate = *upd.EnrollmentDate
	}
	if upd.Status != nil {
		st.Status = *upd.Status
	}
	st.UpdatedAt = time.Now()
	cp := *st
	return &cp, nil
}

func (s *MemoryStore) DeleteStudent(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return apperr.NotFound("student not found")
	}
	for pid, p := range s.payments {
		if p.StudentID == id {
			delete(s.payments, pid)
		}
	}
	delete(s.students, id)
	return nil
}

func (s *MemoryStore) CountStudents() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.students)), nil
}

//
// Fees
//

func (s *MemoryStore) CreateFee(fee *model.Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.fees {
		if f.Course == fee.Course {
			return apperr.Conflict("a fee for this course already exists")
		}
	}
	fee.ID = s.nextPK()
	fee.CreatedAt = time.Now()
	cp := *fee
	s.fees[fee.ID] = &cp
	return nil
}

func (s *MemoryStore) GetFeeByID(id uint) (*model.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fees[id]
	if !ok {
		return nil, apperr.NotFound("fee not found")
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) FindFees(filter FeeFilter) ([]model.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fees := make([]model.Fee, 0, len(s.fees))
	for _, f := range s.fees {
		if filter.Course != "" && f.Course != filter.Course {
			continue
		}
		if filter.ActiveOnly && !f.IsActive {
			continue
		}
		fees = append(fees, *f)
	}
	sort.Slice(fees, func(i, j int) bool {
		return fees[i].CreatedAt.After(fees[j].CreatedAt)
	})
	return fees, nil
}

func (s *MemoryStore) UpdateFee(id uint, upd FeeUpdate) (*model.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fees[id]
	if !ok {
		return nil, apperr.NotFound("fee not found")
	}
	if upd.Course != nil {
		f.Course = *upd.Course
	}
	if upd.Amount != nil {
		f.Amount = *upd.Amount
	}
	if upd.DueDate != nil {
		f.DueDate = *upd.DueDate
	}
	if upd.Description != nil {
		f.Description = *upd.Description
	}
	if upd.IsActive != nil {
		f.IsActive = *upd.IsActive
	}
	f.UpdatedAt = time.Now()
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) DeleteFee(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fees[id]; !ok {
		return apperr.NotFound("fee not found")
	}
	for _, p := range s.payments {
		if p.FeeID == id {
			return apperr.Conflict("cannot delete fee with existing payments")
		}
	}
	delete(s.fees, id)
	return nil
}

func (s *MemoryStore) CountFees() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.fees)), nil
}

func (s *MemoryStore) CountFeesByCourse(course string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, f := range s.fees {
		if f.Course == course {
			count++
		}
	}
	return count, nil
}

//
// Payments
//

func (s *MemoryStore) CreatePayment(payment *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment.ID = s.nextPK()
	payment.CreatedAt = time.Now()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPaymentByID(id uint) (*model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, apperr.NotFound("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) FindPayments(filter PaymentFilter) ([]model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make([]model.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if filter.StudentID != 0 && p.StudentID != filter.StudentID {
			continue
		}
		if filter.FeeID != 0 && p.FeeID != filter.FeeID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.From != nil && p.PaymentDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && p.PaymentDate.After(*filter.To) {
			continue
		}
		payments = append(payments, *p)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
	if filter.Limit > 0 && len(payments) > filter.Limit {
		payments = payments[:filter.Limit]
	}
	return payments, nil
}

func (s *MemoryStore) UpdatePaymentStatus(id uint, status model.PaymentStatus) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, apperr.NotFound("payment not found")
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) CountPayments() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.payments)), nil
}

func (s *MemoryStore) CountPaymentsByStudentAndStatus(studentID uint, status model.PaymentStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.payments {
		if p.StudentID == studentID && p.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) SumPaidAmount(feeID, studentID uint) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, p := range s.payments {
		if p.FeeID == feeID && p.StudentID == studentID && p.Status == model.PaymentStatusPaid {
			total += p.Amount
		}
	}
	return total, nil
}

func (s *MemoryStore) PaymentStatusSummary() (map[model.PaymentStatus]StatusSummary, error) {
	return s.summarize(func(*model.Payment) bool { return true })
}

func (s *MemoryStore) PaymentStatusSummaryForStudent(studentID uint) (map[model.PaymentStatus]StatusSummary, error) {
	return s.summarize(func(p *model.Payment) bool { return p.StudentID == studentID })
}

func (s *MemoryStore) summarize(match func(*model.Payment) bool) (map[model.PaymentStatus]StatusSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := make(map[model.PaymentStatus]StatusSummary)
	for _, p := range s.payments {
		if !match(p) {
			continue
		}
		entry := summary[p.Status]
		entry.Count++
		entry.TotalAmount += p.Amount
		summary[p.Status] = entry
	}
	return summary, nil
}

//
// Audit and job logs
//

func (s *MemoryStore) CreateAuditLog(entry *model.AdminAuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextPK()
	entry.CreatedAt = time.Now()
	s.auditLogs = append(s.auditLogs, *entry)
	return nil
}

func (s *MemoryStore) CreateCronJobLog(entry *model.CronJobLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextPK()
	entry.CreatedAt = time.Now()
	cp := *entry
	s.cronLogs[entry.ID] = &cp
	return nil
}

//
// Token blacklist
//

func (s *MemoryStore) BlacklistToken(entry *model.JWTTokenBlacklist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextPK()
	entry.CreatedAt = time.Now()
	cp := *entry
	s.blacklist[entry.JTI] = &cp
	return nil
}

func (s *MemoryStore) IsTokenBlacklisted(jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blacklist[jti]
	return ok, nil
}

func (s *MemoryStore) PurgeExpiredBlacklistEntries(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for jti, entry := range s.blacklist {
		if entry.ExpiresAt.Before(now) {
			delete(s.blacklist, jti)
			purged++
		}
	}
	return purged, nil
}
