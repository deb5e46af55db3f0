package services

import (
	"testing"

	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

func TestCreateStudentRequiresExistingUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.students.Create(f.admin, CreateStudentRequest{
		UserID:      999,
		StudentCode: "STU-9999",
		FullName:    "Ghost",
		Course:      "BCA",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("got %v, want not-found error", err)
	}
}

func TestCreateStudentDuplicateCode(t *testing.T) {
	f := newFixture(t)

	user := &model.User{Email: "dup@example.com", PasswordHash: "x", Role: model.RoleStudent}
	if err := f.store.CreateUser(user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := f.students.Create(f.admin, CreateStudentRequest{
		UserID:      user.ID,
		StudentCode: "STU-1001", // already taken by the fixture student
		FullName:    "Dup",
		Course:      "BCA",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("got %v, want conflict error", err)
	}
}

func TestCreateStudentIsAdminOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.students.Create(f.student, CreateStudentRequest{
		UserID:      f.student.UserID,
		StudentCode: "STU-5000",
		FullName:    "Self Enroll",
		Course:      "BCA",
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("got %v, want forbidden error", err)
	}
}

func TestListStudentsIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	f.enrollStudent(t, "ravi@example.com", "STU-1002", "MCA")

	students, err := f.students.List(f.admin, database.StudentFilter{})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(students) != 2 {
		t.Errorf("got %d students, want 2", len(students))
	}

	filtered, err := f.students.List(f.admin, database.StudentFilter{Course: "MCA"})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Course != "MCA" {
		t.Errorf("course filter returned %+v", filtered)
	}

	if _, err := f.students.List(f.student, database.StudentFilter{}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("got %v, want forbidden error", err)
	}
}

func TestStudentUpdatesOwnBoundedFields(t *testing.T) {
	f := newFixture(t)

	phone := "9876543210"
	updated, err := f.students.Update(f.student, f.studentID, UpdateProfileRequest{ContactNumber: &phone})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ContactNumber != phone {
		t.Errorf("contact = %q, want %q", updated.ContactNumber, phone)
	}
}

func TestStudentCannotUpdateAdminFields(t *testing.T) {
	f := newFixture(t)

	course := "MBA"
	if _, err := f.students.Update(f.student, f.studentID, UpdateProfileRequest{Course: &course}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("course: got %v, want forbidden error", err)
	}

	status := model.StudentStatusGraduated
	if _, err := f.students.Update(f.student, f.studentID, UpdateProfileRequest{Status: &status}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("status: got %v, want forbidden error", err)
	}

	code := "STU-0001"
	if _, err := f.students.Update(f.student, f.studentID, UpdateProfileRequest{StudentCode: &code}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("studentCode: got %v, want forbidden error", err)
	}
}

func TestAdminUpdatesAnyField(t *testing.T) {
	f := newFixture(t)

	course := "MBA"
	status := model.StudentStatusGraduated
	updated, err := f.students.Update(f.admin, f.studentID, UpdateProfileRequest{Course: &course, Status: &status})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Course != course {
		t.Errorf("course = %q, want %q", updated.Course, course)
	}
	if updated.Status != status {
		t.Errorf("status = %q, want %q", updated.Status, status)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	bad := model.StudentStatus("expelled")
	if _, err := f.students.Update(f.admin, f.studentID, UpdateProfileRequest{Status: &bad}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestDeleteStudentCascadesPayments(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
			FeeID:  f.fee.ID,
			Amount: 1000,
			Method: model.PaymentMethodCash,
		}); err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
	}

	if err := f.students.Delete(f.student, f.studentID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("student self-delete: got %v, want forbidden error", err)
	}

	if err := f.students.Delete(f.admin, f.studentID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.store.GetStudentByID(f.studentID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("student still present after delete")
	}
	orphans, err := f.store.FindPayments(database.PaymentFilter{StudentID: f.studentID})
	if err != nil {
		t.Fatalf("FindPayments failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("%d orphan payments left after cascade delete", len(orphans))
	}
}

func TestStudentPaymentsOwnershipGuard(t *testing.T) {
	f := newFixture(t)
	_, otherID := f.enrollStudent(t, "ravi@example.com", "STU-1002", "BCA")

	if _, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 500,
		Method: model.PaymentMethodOnline,
	}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	own, err := f.students.Payments(f.student, f.studentID)
	if err != nil {
		t.Fatalf("own payments failed: %v", err)
	}
	if len(own) != 1 {
		t.Errorf("got %d payments, want 1", len(own))
	}

	if _, err := f.students.Payments(f.student, otherID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("got %v, want forbidden error", err)
	}

	theirs, err := f.students.Payments(f.admin, otherID)
	if err != nil {
		t.Fatalf("admin payments failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("got %d payments for the other student, want 0", len(theirs))
	}
}
