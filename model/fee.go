package model

import (
	"time"

	"gorm.io/gorm"
)

// Fee represents the fee schedule for a course. Course names are unique; a
// fee with existing payments cannot be deleted.
type Fee struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Course      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"course"`
	Amount      float64        `gorm:"not null" json:"amount"`
	DueDate     time.Time      `gorm:"not null" json:"dueDate"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`

	// Relationships
	Payments []Payment `gorm:"foreignKey:FeeID" json:"payments,omitempty"`
}

// TableName specifies the table name for Fee
func (Fee) TableName() string {
	return "fees"
}
