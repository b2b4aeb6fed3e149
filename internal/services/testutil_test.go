// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taqyim/valuation-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.CompanyProfile{},
		&models.BankProfile{},
		&models.CompanyApprovedBank{},
		&models.LoanPolicy{},
		&models.ValuationRequest{},
		&models.RequestDocument{},
		&models.VisitAppointment{},
		&models.LandPrice{},
		&models.CompanyLandPrice{},
		&models.Conversation{},
		&models.Message{},
		&models.ActivityLog{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func floatPtr(v float64) *float64 { return &v }
