package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Supplier{}, &models.Tag{}, &models.Payable{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) (*storage.GormStore, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return storage.NewGormStore(db), db
}

func intPtr(n int) *int    { return &n }
func uintPtr(n uint) *uint { return &n }
