package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"student-fees-api/model"
)

type fakeUploader struct {
	key         string
	data        []byte
	contentType string
}

func (u *fakeUploader) UploadBytes(_ context.Context, key string, data []byte, contentType string) (string, error) {
	u.key = key
	u.data = data
	u.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

func TestExportPaymentReport(t *testing.T) {
	f := newFixture(t)
	seedPayment(t, f, f.studentID, 12500, model.PaymentStatusPaid, testNow.AddDate(0, 0, -1))
	seedPayment(t, f, f.studentID, 500, model.PaymentStatusPending, testNow)

	uploader := &fakeUploader{}
	export := NewExportService(f.reporting, uploader)
	export.now = func() time.Time { return testNow }

	url, err := export.ExportPaymentReport(context.Background(), ReportFilter{})
	if err != nil {
		t.Fatalf("ExportPaymentReport failed: %v", err)
	}

	if !strings.HasPrefix(url, "https://cdn.example.com/reports/payments-") {
		t.Errorf("unexpected url %q", url)
	}
	if !strings.HasPrefix(uploader.key, "reports/payments-") || !strings.HasSuffix(uploader.key, ".csv") {
		t.Errorf("unexpected object key %q", uploader.key)
	}
	if uploader.contentType != "text/csv" {
		t.Errorf("content type = %q, want text/csv", uploader.contentType)
	}

	rows, err := csv.NewReader(bytes.NewReader(uploader.data)).ReadAll()
	if err != nil {
		t.Fatalf("uploaded data is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d CSV rows, want header + 2 payments", len(rows))
	}
	if rows[0][0] != "receiptNumber" {
		t.Errorf("header starts with %q, want receiptNumber", rows[0][0])
	}
	// Newest first, matching the report order.
	if rows[1][3] != "500.00" {
		t.Errorf("first data row amount = %q, want 500.00", rows[1][3])
	}
	if rows[2][3] != "12500.00" {
		t.Errorf("second data row amount = %q, want 12500.00", rows[2][3])
	}
}

func TestExportPaymentReportPropagatesFilterErrors(t *testing.T) {
	f := newFixture(t)

	export := NewExportService(f.reporting, &fakeUploader{})
	if _, err := export.ExportPaymentReport(context.Background(), ReportFilter{Status: "settled"}); err == nil {
		t.Fatal("expected error for invalid status filter")
	}
}

func TestRenderPaymentsCSV(t *testing.T) {
	tx := "TXN-1"
	payments := []model.Payment{{
		StudentID:     7,
		FeeID:         3,
		Amount:        1234.5,
		Status:        model.PaymentStatusPaid,
		PaymentDate:   time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC),
		PaymentMethod: model.PaymentMethodBankTransfer,
		TransactionID: &tx,
		ReceiptNumber: "RCP-TEST",
		Notes:         "first installment",
	}}

	data, err := RenderPaymentsCSV(payments)
	if err != nil {
		t.Fatalf("RenderPaymentsCSV failed: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("render is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	row := rows[1]
	want := []string{"RCP-TEST", "7", "3", "1234.50", "paid", "bank transfer", "2026-01-10T09:30:00Z", "TXN-1", "first installment"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, row[i], want[i])
		}
	}
}
