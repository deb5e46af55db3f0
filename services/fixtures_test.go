package services

import (
	"testing"
	"time"

	"student-fees-api/database"
	"student-fees-api/model"
)

// testNow is the pinned clock for service tests.
var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// fixture wires every service against one in-memory store with a pinned
// clock, seeded with an admin, one enrolled student and one fee.
type fixture struct {
	store     *database.MemoryStore
	access    *AccessService
	ledger    *LedgerService
	students  *StudentService
	fees      *FeeService
	reporting *ReportingService

	admin   Actor
	student Actor

	studentID uint
	fee       *model.Fee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := database.NewMemoryStore()
	access := NewAccessService(store)

	f := &fixture{
		store:     store,
		access:    access,
		ledger:    NewLedgerService(store, access).WithClock(func() time.Time { return testNow }),
		students:  NewStudentService(store, access),
		fees:      NewFeeService(store, access),
		reporting: NewReportingService(store),
	}

	adminUser := &model.User{Email: "admin@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	if err := store.CreateUser(adminUser); err != nil {
		t.Fatalf("seed admin user: %v", err)
	}
	f.admin = Actor{UserID: adminUser.ID, Role: model.RoleAdmin}

	studentUser := &model.User{Email: "asha@example.com", PasswordHash: "x", Role: model.RoleStudent}
	if err := store.CreateUser(studentUser); err != nil {
		t.Fatalf("seed student user: %v", err)
	}
	f.student = Actor{UserID: studentUser.ID, Role: model.RoleStudent}

	profile := &model.Student{
		UserID:      studentUser.ID,
		StudentCode: "STU-1001",
		FullName:    "Asha Verma",
		Course:      "BCA",
		Status:      model.StudentStatusActive,
	}
	if err := store.CreateStudent(profile); err != nil {
		t.Fatalf("seed student profile: %v", err)
	}
	f.studentID = profile.ID

	fee := &model.Fee{
		Course:  "BCA",
		Amount:  50000,
		DueDate: testNow.AddDate(0, 1, 0),
	}
	if err := store.CreateFee(fee); err != nil {
		t.Fatalf("seed fee: %v", err)
	}
	f.fee = fee

	return f
}

// enrollStudent adds another student with their own user account.
func (f *fixture) enrollStudent(t *testing.T, email, code, course string) (Actor, uint) {
	t.Helper()

	user := &model.User{Email: email, PasswordHash: "x", Role: model.RoleStudent}
	if err := f.store.CreateUser(user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	profile := &model.Student{
		UserID:      user.ID,
		StudentCode: code,
		FullName:    "Student " + code,
		Course:      course,
		Status:      model.StudentStatusActive,
	}
	if err := f.store.CreateStudent(profile); err != nil {
		t.Fatalf("seed profile %s: %v", code, err)
	}
	return Actor{UserID: user.ID, Role: model.RoleStudent}, profile.ID
}

// addFee seeds another fee for the given course.
func (f *fixture) addFee(t *testing.T, course string, amount float64, due time.Time) *model.Fee {
	t.Helper()

	fee := &model.Fee{Course: course, Amount: amount, DueDate: due, IsActive: true}
	if err := f.store.CreateFee(fee); err != nil {
		t.Fatalf("seed fee for %s: %v", course, err)
	}
	return fee
}
