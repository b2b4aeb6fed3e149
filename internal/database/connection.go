// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taqyim/valuation-backend/internal/config"
	"github.com/taqyim/valuation-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		}
	}

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	err := db.AutoMigrate(
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
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		"CREATE INDEX IF NOT EXISTS idx_valuation_requests_client ON valuation_requests(client_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_valuation_requests_company ON valuation_requests(company_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_valuation_requests_created ON valuation_requests(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_visit_appointments_request ON visit_appointments(request_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_request_documents_request ON request_documents(request_id)",

		"CREATE INDEX IF NOT EXISTS idx_land_prices_location ON land_prices(wilaya, region)",
		"CREATE INDEX IF NOT EXISTS idx_company_land_prices_location ON company_land_prices(company_id, wilaya, region)",

		"CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_activity_logs_conversation ON activity_logs(conversation_id, created_at)",

		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
		}
	}

	return nil
}

// SeedInitialData creates the default admin account on first boot.
func SeedInitialData(db *gorm.DB) error {
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Name:  "Administrator",
			Email: "admin@taqyim.example",
			Role:  models.RoleAdmin,
		}
		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		logrus.Info("Default admin user created")
	}

	return nil
}

// WithTransaction runs fn inside a transaction with panic-safe rollback.
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
