package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"student-fees-api/model"
	"student-fees-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedFees(); err != nil {
		return fmt.Errorf("failed to seed fees: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skipped when either variable is unset or an admin exists.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", adminEmail)
	return nil
}

// SeedFees creates a starter fee schedule for common courses. Existing
// courses are left untouched.
func (s *Seeder) SeedFees() error {
	dueDate := time.Now().AddDate(0, 3, 0)

	fees := []model.Fee{
		{Course: "Computer Science", Amount: 45000, DueDate: dueDate, Description: "Annual tuition fee", IsActive: true},
		{Course: "Mechanical Engineering", Amount: 42000, DueDate: dueDate, Description: "Annual tuition fee", IsActive: true},
		{Course: "Business Administration", Amount: 38000, DueDate: dueDate, Description: "Annual tuition fee", IsActive: true},
	}

	for _, fee := range fees {
		var count int64
		if err := s.db.Model(&model.Fee{}).Where("course = ?", fee.Course).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&fee).Error; err != nil {
			return err
		}
		log.Printf("Created fee schedule for %s", fee.Course)
	}

	return nil
}

// RunSeeds is the entrypoint used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
