package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentStatus is the lifecycle state of a student record
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)

// ValidStudentStatus reports whether s is one of the known lifecycle states.
func ValidStudentStatus(s StudentStatus) bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated:
		return true
	}
	return false
}

// Student represents an enrolled student owned by exactly one user account.
// Deleting a student cascades to its payments (handled inside the store, in
// one transaction).
type Student struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user"`
	StudentCode    string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"studentId"`
	FullName       string         `gorm:"type:varchar(255);not null" json:"fullName"`
	Course         string         `gorm:"type:varchar(255);not null;index" json:"course"`
	ContactNumber  string         `gorm:"type:varchar(50);not null" json:"contactNumber"`
	Address        string         `gorm:"type:varchar(500);not null" json:"address"`
	EnrollmentDate time.Time      `json:"enrollmentDate"`
	Status         StudentStatus  `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"userDetails,omitempty"`
	Payments []Payment `gorm:"foreignKey:StudentID" json:"payments,omitempty"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}
