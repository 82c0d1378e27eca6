package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/repository"
)

func TestLinkAnalytics_EmptyLink(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "empty@example.com")

	link, err := linkService.CreateLink(userID, CreateLinkInput{LongURL: "https://example.com"})
	require.NoError(t, err)

	_, analytics, err := analyticsService.LinkAnalytics(link.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 0, analytics.TotalClicks)
	assert.Empty(t, analytics.ClicksByDate)
	assert.Empty(t, analytics.ClicksByDevice)
	assert.Empty(t, analytics.ClicksByBrowser)
	assert.Empty(t, analytics.ClicksByCountry)
}

func TestLinkAnalytics_Aggregation(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "agg@example.com")

	link, err := linkService.CreateLink(userID, CreateLinkInput{LongURL: "https://example.com"})
	require.NoError(t, err)

	clickRepo := repository.NewClickRepository(db)
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)

	clicks := []models.Click{
		{LinkID: link.ID, Timestamp: day1, DeviceType: "mobile", Browser: "Chrome", Country: "FR"},
		{LinkID: link.ID, Timestamp: day1, DeviceType: "mobile", Browser: "Safari", Country: "FR"},
		{LinkID: link.ID, Timestamp: day2, DeviceType: "desktop", Browser: "Chrome", Country: "Unknown"},
	}
	for i := range clicks {
		require.NoError(t, clickRepo.CreateClick(&clicks[i]))
	}

	_, analytics, err := analyticsService.LinkAnalytics(link.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 3, analytics.TotalClicks)
	assert.Equal(t, map[string]int{"2026-03-01": 2, "2026-03-02": 1}, analytics.ClicksByDate)
	assert.Equal(t, map[string]int{"mobile": 2, "desktop": 1}, analytics.ClicksByDevice)
	assert.Equal(t, map[string]int{"Chrome": 2, "Safari": 1}, analytics.ClicksByBrowser)
	assert.Equal(t, map[string]int{"FR": 2, "Unknown": 1}, analytics.ClicksByCountry)
}

func TestLinkAnalytics_IdempotentReads(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "idem@example.com")

	link, err := linkService.CreateLink(userID, CreateLinkInput{LongURL: "https://example.com"})
	require.NoError(t, err)

	_, err = linkService.ResolveRedirect(link.ShortURL, models.ClickMeta{
		UserAgent: "Mozilla/5.0 (Android)",
	})
	require.NoError(t, err)

	_, first, err := analyticsService.LinkAnalytics(link.ID, userID)
	require.NoError(t, err)
	_, second, err := analyticsService.LinkAnalytics(link.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLinkAnalytics_NotFound(t *testing.T) {
	_, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "nf@example.com")

	_, _, err := analyticsService.LinkAnalytics(9999, userID)
	require.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestLinkAnalytics_OwnershipEnforced(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	ownerID := createTestUser(t, db, "owner@example.com")
	otherID := createTestUser(t, db, "other@example.com")

	link, err := linkService.CreateLink(ownerID, CreateLinkInput{LongURL: "https://example.com"})
	require.NoError(t, err)

	_, _, err = analyticsService.LinkAnalytics(link.ID, otherID)
	require.ErrorIs(t, err, apperrors.ErrNotOwner)

	// The owner still reads fine.
	_, _, err = analyticsService.LinkAnalytics(link.ID, ownerID)
	require.NoError(t, err)
}
