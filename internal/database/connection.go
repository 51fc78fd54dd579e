// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Province{},
		&models.City{},
		&models.Barangay{},
		&models.Store{},
		&models.Agent{},
		&models.Plan{},
		&models.Device{},
		&models.DeviceConfiguration{},
		&models.Application{},
		&models.CustomerInformation{},
		&models.Address{},
		&models.EmploymentInformation{},
		&models.OrderItem{},
		&models.PrivacyPreferences{},
		&models.OTPVerification{},
		&models.AvailableNumber{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_email_status ON applications(email, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_agent_status ON applications(assigned_agent_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC)",

		// OTP lookup is always newest-unverified-for-email
		"CREATE INDEX IF NOT EXISTS idx_otp_email_verified ON otp_verifications(email, verified, created_at DESC)",

		// Number pool
		"CREATE INDEX IF NOT EXISTS idx_available_numbers_status ON available_numbers(status, created_at)",

		// Audit trail
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_application ON audit_logs(application_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_agent_action ON audit_logs(agent_id, action)",

		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_plans_active ON plans(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_devices_active ON devices(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_device_configurations_device ON device_configurations(device_id, is_active)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default store and admin agent
	var agentCount int64
	db.Model(&models.Agent{}).Count(&agentCount)

	if agentCount == 0 {
		store := &models.Store{
			Name:     "Smartify Flagship Store",
			Address:  "Ayala Avenue, Makati",
			IsActive: true,
		}
		if err := db.Create(store).Error; err != nil {
			return fmt.Errorf("failed to create default store: %w", err)
		}

		admin := &models.Agent{
			Username: "admin",
			Email:    "admin@smartify-sim.com",
			FullName: "System Administrator",
			Role:     models.AgentRoleAdmin,
			StoreID:  &store.ID,
			IsActive: true,
		}
		if err := admin.SetPassword("admin123"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin agent: %w", err)
		}

		log.Println("Default store and admin agent created successfully")
	}

	// Seed the MSISDN pool
	if err := SeedNumberPool(db, "0917", 100); err != nil {
		return fmt.Errorf("failed to seed number pool: %w", err)
	}

	log.Println("Initial data seeding completed")
	return nil
}

// SeedNumberPool bulk-inserts sequential numbers under the given prefix.
// Existing numbers are skipped, so reseeding is idempotent.
func SeedNumberPool(db *gorm.DB, prefix string, count int) error {
	var existing int64
	db.Model(&models.AvailableNumber{}).Count(&existing)
	if existing > 0 {
		return nil
	}

	numbers := make([]models.AvailableNumber, 0, count)
	for i := 0; i < count; i++ {
		numbers = append(numbers, models.AvailableNumber{
			MSISDN: fmt.Sprintf("%s%07d", prefix, 1234000+i),
			Status: models.NumberStatusAvailable,
		})
	}

	if err := db.CreateInBatches(numbers, 100).Error; err != nil {
		return fmt.Errorf("failed to insert numbers: %w", err)
	}

	log.Printf("Seeded %d numbers into the pool", count)
	return nil
}

// Transaction helper
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
