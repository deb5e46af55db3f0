package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"student-fees-api/model"
)

// Uploader is the slice of the object-storage client the exporter needs.
type Uploader interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExportService renders payment reports as CSV and pushes them to object
// storage for download.
type ExportService struct {
	reporting *ReportingService
	uploader  Uploader
	now       func() time.Time
}

// NewExportService creates a new export service
func NewExportService(reporting *ReportingService, uploader Uploader) *ExportService {
	return &ExportService{
		reporting: reporting,
		uploader:  uploader,
		now:       time.Now,
	}
}

// ExportPaymentReport renders the filtered report to CSV, uploads it, and
// returns the object URL.
func (s *ExportService) ExportPaymentReport(ctx context.Context, filter ReportFilter) (string, error) {
	payments, err := s.reporting.PaymentReport(filter)
	if err != nil {
		return "", err
	}

	data, err := RenderPaymentsCSV(payments)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	key := fmt.Sprintf("reports/payments-%s.csv", s.now().Format("20060102-150405"))
	url, err := s.uploader.UploadBytes(ctx, key, data, "text/csv")
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return url, nil
}

// RenderPaymentsCSV renders payments as CSV, one row per payment.
func RenderPaymentsCSV(payments []model.Payment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"receiptNumber", "student", "fee", "amount", "status", "paymentMethod", "paymentDate", "transactionId", "notes"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range payments {
		txID := ""
		if p.TransactionID != nil {
			txID = *p.TransactionID
		}
		row := []string{
			p.ReceiptNumber,
			strconv.FormatUint(uint64(p.StudentID), 10),
			strconv.FormatUint(uint64(p.FeeID), 10),
			strconv.FormatFloat(p.Amount, 'f', 2, 64),
			string(p.Status),
			string(p.PaymentMethod),
			p.PaymentDate.Format(time.RFC3339),
			txID,
			p.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
