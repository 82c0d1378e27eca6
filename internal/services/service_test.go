package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/repository"
)

// newTestDB opens an in-memory SQLite database migrated with all models.
// The pool is capped at one connection so concurrent test writers serialize
// instead of hitting SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.Click{}))
	return db
}

// newTestServices wires the service layer over a fresh in-memory store.
func newTestServices(t *testing.T) (*LinkService, *AnalyticsService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	clickService := NewClickService(clickRepo, geoip.NewResolver())
	return NewLinkService(linkRepo, clickService), NewAnalyticsService(linkRepo), db
}

// createTestUser inserts a user and returns its id.
func createTestUser(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()

	user := &models.User{Name: "Test User", Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}
