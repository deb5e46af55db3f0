package services

import (
	"strings"
	"testing"

	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

func TestRecordPaymentFullAmount(t *testing.T) {
	f := newFixture(t)

	payment, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: f.fee.Amount,
		Method: model.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	if payment.Status != model.PaymentStatusPaid {
		t.Errorf("status = %q, want %q", payment.Status, model.PaymentStatusPaid)
	}
	if payment.StudentID != f.studentID {
		t.Errorf("studentID = %d, want %d", payment.StudentID, f.studentID)
	}
	if !strings.HasPrefix(payment.ReceiptNumber, "RCP-") {
		t.Errorf("receipt number %q missing RCP- prefix", payment.ReceiptNumber)
	}
	if !payment.PaymentDate.Equal(testNow) {
		t.Errorf("paymentDate = %v, want %v", payment.PaymentDate, testNow)
	}

	dues, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if len(dues) != 1 {
		t.Fatalf("got %d dues entries, want 1", len(dues))
	}
	if dues[0].DueAmount != 0 {
		t.Errorf("due amount = %v, want 0", dues[0].DueAmount)
	}
}

func TestRecordPaymentExceedingFeeAmountRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: f.fee.Amount + 1,
		Method: model.PaymentMethodCash,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}

	if n, _ := f.store.CountPayments(); n != 0 {
		t.Errorf("payment count = %d, want 0 after rejected payment", n)
	}
}

func TestRecordPaymentNegativeAmountRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: -100,
		Method: model.PaymentMethodCash,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestRecordPaymentInvalidMethodRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 100,
		Method: "cheque",
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestRecordPaymentUnknownFee(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  999,
		Amount: 100,
		Method: model.PaymentMethodCash,
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("got %v, want not-found error", err)
	}
}

func TestStudentCannotPayForAnotherStudent(t *testing.T) {
	f := newFixture(t)
	_, otherID := f.enrollStudent(t, "ravi@example.com", "STU-1002", "BCA")

	_, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:     f.fee.ID,
		StudentID: otherID,
		Amount:    100,
		Method:    model.PaymentMethodCash,
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("got %v, want forbidden error", err)
	}
}

func TestAdminRecordsPaymentForAnyStudent(t *testing.T) {
	f := newFixture(t)

	payment, err := f.ledger.RecordPayment(f.admin, RecordPaymentRequest{
		FeeID:     f.fee.ID,
		StudentID: f.studentID,
		Amount:    20000,
		Method:    model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if payment.StudentID != f.studentID {
		t.Errorf("studentID = %d, want %d", payment.StudentID, f.studentID)
	}
}

func TestPartialPaymentsAccumulate(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []float64{20000, 15000} {
		if _, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
			FeeID:  f.fee.ID,
			Amount: amount,
			Method: model.PaymentMethodCard,
		}); err != nil {
			t.Fatalf("RecordPayment(%v) failed: %v", amount, err)
		}
	}

	dues, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if dues[0].PaidAmount != 35000 {
		t.Errorf("paid amount = %v, want 35000", dues[0].PaidAmount)
	}
	if dues[0].DueAmount != 15000 {
		t.Errorf("due amount = %v, want 15000", dues[0].DueAmount)
	}
}

func TestComputeDuesOverdueFlag(t *testing.T) {
	f := newFixture(t)

	_, studentID := f.enrollStudent(t, "meena@example.com", "STU-2001", "MCA")
	f.addFee(t, "MCA", 60000, testNow.AddDate(0, 0, -1))

	dues, err := f.ledger.ComputeDues(studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if len(dues) != 1 {
		t.Fatalf("got %d dues entries, want 1", len(dues))
	}
	if !dues[0].IsOverdue {
		t.Error("fee past its due date not flagged overdue")
	}

	baseline, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if baseline[0].IsOverdue {
		t.Error("fee before its due date flagged overdue")
	}
}

func TestComputeDuesCanGoNegative(t *testing.T) {
	f := newFixture(t)

	// Two full payments against the same fee. Each passes the per-payment
	// ceiling, so the balance surfaces as an overpayment.
	for i := 0; i < 2; i++ {
		if _, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
			FeeID:  f.fee.ID,
			Amount: f.fee.Amount,
			Method: model.PaymentMethodOnline,
		}); err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
	}

	dues, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if dues[0].DueAmount != -f.fee.Amount {
		t.Errorf("due amount = %v, want %v", dues[0].DueAmount, -f.fee.Amount)
	}
}

func TestComputeDuesIsIdempotent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 10000,
		Method: model.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	first, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	second, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("entry count changed between calls: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].DueAmount != second[i].DueAmount || first[i].PaidAmount != second[i].PaidAmount {
			t.Errorf("entry %d changed between calls: %+v then %+v", i, first[i], second[i])
		}
	}
}

func TestFailedPaymentsDoNotReduceDues(t *testing.T) {
	f := newFixture(t)

	payment, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 10000,
		Method: model.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if _, err := f.ledger.SetPaymentStatus(f.admin, payment.ID, model.PaymentStatusFailed); err != nil {
		t.Fatalf("SetPaymentStatus failed: %v", err)
	}

	dues, err := f.ledger.ComputeDues(f.studentID)
	if err != nil {
		t.Fatalf("ComputeDues failed: %v", err)
	}
	if dues[0].PaidAmount != 0 {
		t.Errorf("paid amount = %v, want 0 after payment marked failed", dues[0].PaidAmount)
	}
	if dues[0].DueAmount != f.fee.Amount {
		t.Errorf("due amount = %v, want %v", dues[0].DueAmount, f.fee.Amount)
	}
}

func TestSetPaymentStatusAdminOnly(t *testing.T) {
	f := newFixture(t)

	payment, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 5000,
		Method: model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	if _, err := f.ledger.SetPaymentStatus(f.student, payment.ID, model.PaymentStatusRefunded); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("student status change: got %v, want forbidden error", err)
	}

	updated, err := f.ledger.SetPaymentStatus(f.admin, payment.ID, model.PaymentStatusRefunded)
	if err != nil {
		t.Fatalf("admin status change failed: %v", err)
	}
	if updated.Status != model.PaymentStatusRefunded {
		t.Errorf("status = %q, want refunded", updated.Status)
	}

	// Transitions are unrestricted: refunded may move back to pending.
	updated, err = f.ledger.SetPaymentStatus(f.admin, payment.ID, model.PaymentStatusPending)
	if err != nil {
		t.Fatalf("refunded→pending failed: %v", err)
	}
	if updated.Status != model.PaymentStatusPending {
		t.Errorf("status = %q, want pending", updated.Status)
	}
}

func TestSetPaymentStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	payment, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 5000,
		Method: model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	if _, err := f.ledger.SetPaymentStatus(f.admin, payment.ID, "settled"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestReceiptNumbersAreUnique(t *testing.T) {
	f := newFixture(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		payment, err := f.ledger.RecordPayment(f.student, RecordPaymentRequest{
			FeeID:  f.fee.ID,
			Amount: 10,
			Method: model.PaymentMethodOnline,
		})
		if err != nil {
			t.Fatalf("RecordPayment %d failed: %v", i, err)
		}
		if seen[payment.ReceiptNumber] {
			t.Fatalf("duplicate receipt number %q", payment.ReceiptNumber)
		}
		seen[payment.ReceiptNumber] = true
	}
}

func TestRecordPaymentUnauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordPayment(Actor{}, RecordPaymentRequest{
		FeeID:  f.fee.ID,
		Amount: 100,
		Method: model.PaymentMethodCash,
	})
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("got %v, want authentication error", err)
	}
}
