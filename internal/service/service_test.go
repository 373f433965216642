package service

import (
	"fmt"
	"testing"

	"charitychain/internal/database"
	"charitychain/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// sqlite serializes writers; a single connection avoids lock errors while
	// keeping transactions honest.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, address, email string) *models.User {
	t.Helper()
	u := &models.User{Address: address, Name: "Test User", Email: email}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", address, err)
	}
	return u
}
