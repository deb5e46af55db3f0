package services

import (
	"testing"
	"time"

	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

func seedPayment(t *testing.T, f *fixture, studentID uint, amount float64, status model.PaymentStatus, date time.Time) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		StudentID:     studentID,
		FeeID:         f.fee.ID,
		Amount:        amount,
		Status:        status,
		PaymentDate:   date,
		PaymentMethod: model.PaymentMethodCash,
		ReceiptNumber: generateReceiptNumber(),
	}
	if err := f.store.CreatePayment(payment); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return payment
}

func TestAdminSummary(t *testing.T) {
	f := newFixture(t)
	_, otherID := f.enrollStudent(t, "ravi@example.com", "STU-1002", "BCA")

	seedPayment(t, f, f.studentID, 10000, model.PaymentStatusPaid, testNow.AddDate(0, 0, -3))
	seedPayment(t, f, f.studentID, 5000, model.PaymentStatusPaid, testNow.AddDate(0, 0, -2))
	seedPayment(t, f, otherID, 2000, model.PaymentStatusPending, testNow.AddDate(0, 0, -1))
	seedPayment(t, f, otherID, 7000, model.PaymentStatusFailed, testNow)

	summary, err := f.reporting.GetAdminSummary()
	if err != nil {
		t.Fatalf("GetAdminSummary failed: %v", err)
	}

	if summary.TotalStudents != 2 {
		t.Errorf("totalStudents = %d, want 2", summary.TotalStudents)
	}
	if summary.TotalFees != 1 {
		t.Errorf("totalFees = %d, want 1", summary.TotalFees)
	}
	if summary.TotalPayments != 4 {
		t.Errorf("totalPayments = %d, want 4", summary.TotalPayments)
	}

	paid := summary.PaymentsByStatus[model.PaymentStatusPaid]
	if paid.Count != 2 || paid.TotalAmount != 15000 {
		t.Errorf("paid bucket = %+v, want count 2 total 15000", paid)
	}
	pending := summary.PaymentsByStatus[model.PaymentStatusPending]
	if pending.Count != 1 || pending.TotalAmount != 2000 {
		t.Errorf("pending bucket = %+v, want count 1 total 2000", pending)
	}
	if _, ok := summary.PaymentsByStatus[model.PaymentStatusRefunded]; ok {
		t.Error("refunded bucket present with no refunded payments")
	}

	if len(summary.RecentPayments) != 4 {
		t.Fatalf("got %d recent payments, want 4", len(summary.RecentPayments))
	}
	if summary.RecentPayments[0].Amount != 7000 {
		t.Errorf("most recent payment amount = %v, want 7000", summary.RecentPayments[0].Amount)
	}
}

func TestAdminSummaryRecentPaymentsCapped(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 8; i++ {
		seedPayment(t, f, f.studentID, 100, model.PaymentStatusPaid, testNow.AddDate(0, 0, -i))
	}

	summary, err := f.reporting.GetAdminSummary()
	if err != nil {
		t.Fatalf("GetAdminSummary failed: %v", err)
	}
	if len(summary.RecentPayments) != 5 {
		t.Errorf("got %d recent payments, want 5", len(summary.RecentPayments))
	}
}

func TestStudentSummary(t *testing.T) {
	f := newFixture(t)
	_, otherID := f.enrollStudent(t, "ravi@example.com", "STU-1002", "BCA")

	seedPayment(t, f, f.studentID, 10000, model.PaymentStatusPaid, testNow.AddDate(0, 0, -2))
	seedPayment(t, f, f.studentID, 3000, model.PaymentStatusPending, testNow.AddDate(0, 0, -1))
	// Another student's payment must not leak into the summary.
	seedPayment(t, f, otherID, 9999, model.PaymentStatusPaid, testNow)

	summary, err := f.reporting.GetStudentSummary(f.studentID)
	if err != nil {
		t.Fatalf("GetStudentSummary failed: %v", err)
	}

	if summary.StudentCode != "STU-1001" {
		t.Errorf("studentCode = %q, want STU-1001", summary.StudentCode)
	}
	if summary.Course != "BCA" {
		t.Errorf("course = %q, want BCA", summary.Course)
	}
	if summary.TotalFees != 1 {
		t.Errorf("totalFees = %d, want 1", summary.TotalFees)
	}
	if summary.PaidCount != 1 {
		t.Errorf("paidCount = %d, want 1", summary.PaidCount)
	}
	if summary.PendingCount != 1 {
		t.Errorf("pendingCount = %d, want 1", summary.PendingCount)
	}
	if summary.DuesByStatus[model.PaymentStatusPaid] != 10000 {
		t.Errorf("paid total = %v, want 10000", summary.DuesByStatus[model.PaymentStatusPaid])
	}
	if summary.DuesByStatus[model.PaymentStatusPending] != 3000 {
		t.Errorf("pending total = %v, want 3000", summary.DuesByStatus[model.PaymentStatusPending])
	}
}

func TestStudentSummaryUnknownStudent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.reporting.GetStudentSummary(999); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("got %v, want not-found error", err)
	}
}

func TestPaymentReportFilterAndOrder(t *testing.T) {
	f := newFixture(t)

	old := seedPayment(t, f, f.studentID, 100, model.PaymentStatusPaid, testNow.AddDate(0, 0, -10))
	mid := seedPayment(t, f, f.studentID, 200, model.PaymentStatusFailed, testNow.AddDate(0, 0, -5))
	recent := seedPayment(t, f, f.studentID, 300, model.PaymentStatusPaid, testNow.AddDate(0, 0, -1))

	all, err := f.reporting.PaymentReport(ReportFilter{})
	if err != nil {
		t.Fatalf("PaymentReport failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d payments, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != recent.ID || all[2].ID != old.ID {
		t.Errorf("report not ordered newest first: %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}

	paidOnly, err := f.reporting.PaymentReport(ReportFilter{Status: model.PaymentStatusPaid})
	if err != nil {
		t.Fatalf("status filter failed: %v", err)
	}
	if len(paidOnly) != 2 {
		t.Errorf("got %d paid payments, want 2", len(paidOnly))
	}

	from := testNow.AddDate(0, 0, -6)
	to := testNow.AddDate(0, 0, -4)
	window, err := f.reporting.PaymentReport(ReportFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		t.Fatalf("date filter failed: %v", err)
	}
	if len(window) != 1 || window[0].ID != mid.ID {
		t.Errorf("date window returned %+v, want only the middle payment", window)
	}
}

func TestPaymentReportValidation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.reporting.PaymentReport(ReportFilter{Status: "settled"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("got %v, want validation error for unknown status", err)
	}

	from := testNow
	to := testNow.AddDate(0, 0, -1)
	if _, err := f.reporting.PaymentReport(ReportFilter{StartDate: &from, EndDate: &to}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("got %v, want validation error for inverted range", err)
	}
}
