// internal/services/service_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartify/sim-backend/internal/models"
)

var testDBCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named in-memory database so each test gets its own instance
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
		&models.AvailableNumber{},
		&models.OTPVerification{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestAgent(t *testing.T, db *gorm.DB, username string) *models.Agent {
	t.Helper()

	store := &models.Store{Name: "Test Store", IsActive: true}
	require.NoError(t, db.Create(store).Error)

	agent := &models.Agent{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test Agent",
		Role:     models.AgentRoleAgent,
		StoreID:  &store.ID,
		IsActive: true,
	}
	require.NoError(t, agent.SetPassword("secret123"))
	require.NoError(t, db.Create(agent).Error)

	return agent
}

func createTestNumber(t *testing.T, db *gorm.DB, msisdn string) *models.AvailableNumber {
	t.Helper()

	number := &models.AvailableNumber{
		MSISDN: msisdn,
		Status: models.NumberStatusAvailable,
	}
	require.NoError(t, db.Create(number).Error)
	return number
}

func countAuditRows(t *testing.T, db *gorm.DB, applicationID uuid.UUID, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("application_id = ? AND action = ?", applicationID, action).
		Count(&count).Error)
	return count
}
