package model

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ValidPaymentStatus reports whether s is one of the four settlement states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank transfer"
	PaymentMethodOnline       PaymentMethod = "online"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOnline:
		return true
	}
	return false
}

// Payment represents a payment by a student against a course fee. The amount
// never exceeds the fee amount at recording time; the ledger service enforces
// this before the row is created.
type Payment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID     uint           `gorm:"not null;index:idx_payments_student_status" json:"student"`
	FeeID         uint           `gorm:"not null;index" json:"fee"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Status        PaymentStatus  `gorm:"type:varchar(20);default:'pending';index:idx_payments_student_status" json:"status"`
	PaymentDate   time.Time      `gorm:"index:,sort:desc" json:"paymentDate"`
	TransactionID *string        `gorm:"type:varchar(100);uniqueIndex" json:"transactionId,omitempty"`
	PaymentMethod PaymentMethod  `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	ReceiptNumber string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"receiptNumber"`
	Notes         string         `gorm:"type:varchar(500)" json:"notes"`

	// Relationships
	Student *Student `gorm:"foreignKey:StudentID" json:"studentDetails,omitempty"`
	Fee     *Fee     `gorm:"foreignKey:FeeID" json:"feeDetails,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
