package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records mutating admin actions (fee changes, status updates,
// deletions) with the before/after state where it is available.
type AdminAuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    uint           `gorm:"not null;index" json:"adminId"`
	Action     string         `gorm:"type:varchar(50);not null" json:"action"` // create, update, delete, status_change
	Resource   string         `gorm:"type:varchar(50);not null" json:"resource"`
	ResourceID uint           `gorm:"index" json:"resourceId"`
	OldValue   datatypes.JSON `json:"oldValue,omitempty"`
	NewValue   datatypes.JSON `json:"newValue,omitempty"`
	IPAddress  string         `gorm:"type:varchar(45)" json:"ipAddress"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Admin *User `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
