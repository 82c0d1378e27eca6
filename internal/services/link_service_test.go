package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/models"
)

func TestCreateLink_URLValidation(t *testing.T) {
	linkService, _, db := newTestServices(t)
	userID := createTestUser(t, db, "urls@example.com")

	tests := []struct {
		name    string
		longURL string
		wantErr bool
	}{
		{"valid http", "http://example.com", false},
		{"valid https", "https://example.com/page?q=1", false},
		{"missing", "", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"no scheme", "example.com/page", true},
		{"no host", "https://", true},
		{"garbage", "not a url at all", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linkService.CreateLink(userID, CreateLinkInput{LongURL: tt.longURL})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateLink_AliasValidation(t *testing.T) {
	linkService, _, db := newTestServices(t)
	userID := createTestUser(t, db, "alias@example.com")

	valid := []string{"my-link", "My_Link_2", "abc123", "A", "a_b-c"}
	for _, alias := range valid {
		link, err := linkService.CreateLink(userID, CreateLinkInput{
			LongURL: "https://example.com",
			Alias:   alias,
		})
		require.NoError(t, err, "alias %q should be accepted", alias)
		assert.Equal(t, alias, link.ShortURL)
		require.NotNil(t, link.Alias)
		assert.Equal(t, alias, *link.Alias)
	}

	invalid := []string{"bad alias", "héllo", "semi;colon", "slash/", "dot.dot", "no!"}
	for _, alias := range invalid {
		_, err := linkService.CreateLink(userID, CreateLinkInput{
			LongURL: "https://example.com",
			Alias:   alias,
		})
		require.Error(t, err, "alias %q should be rejected", alias)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestCreateLink_DuplicateAlias(t *testing.T) {
	linkService, _, db := newTestServices(t)
	userID := createTestUser(t, db, "dup@example.com")

	_, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL: "https://example.com/a",
		Alias:   "taken",
	})
	require.NoError(t, err)

	_, err = linkService.CreateLink(userID, CreateLinkInput{
		LongURL: "https://example.com/b",
		Alias:   "taken",
	})
	require.ErrorIs(t, err, apperrors.ErrAliasTaken)
}

func TestCreateLink_GeneratedCode(t *testing.T) {
	linkService, _, db := newTestServices(t)
	userID := createTestUser(t, db, "gen@example.com")

	link, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL: "https://example.com/page",
	})
	require.NoError(t, err)

	assert.Len(t, link.ShortURL, shortCodeLength)
	assert.Nil(t, link.Alias)
	for _, ch := range link.ShortURL {
		assert.True(t, strings.ContainsRune(charset, ch), "unexpected character %c in short code", ch)
	}
}

func TestGenerateShortCode_Uniqueness(t *testing.T) {
	linkService, _, _ := newTestServices(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := linkService.GenerateShortCode(shortCodeLength)
		require.NoError(t, err)
		require.Len(t, code, shortCodeLength)
		assert.False(t, seen[code], "duplicate code generated: %s", code)
		seen[code] = true
	}
}

func TestResolveRedirect_RoundTrip(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "round@example.com")

	created, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL: "https://example.com/page",
	})
	require.NoError(t, err)

	resolved, err := linkService.ResolveRedirect(created.ShortURL, models.ClickMeta{
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Android)",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", resolved.LongURL)

	_, analytics, err := analyticsService.LinkAnalytics(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalClicks)
	assert.Equal(t, map[string]int{"mobile": 1}, analytics.ClicksByDevice)
}

func TestResolveRedirect_NotFound(t *testing.T) {
	linkService, _, _ := newTestServices(t)

	_, err := linkService.ResolveRedirect("missing", models.ClickMeta{})
	require.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestResolveRedirect_Expired(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "exp@example.com")

	past := time.Now().Add(-time.Hour)
	created, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL:        "https://example.com/gone",
		ExpirationDate: &past,
	})
	require.NoError(t, err)

	_, err = linkService.ResolveRedirect(created.ShortURL, models.ClickMeta{
		UserAgent: "Mozilla/5.0",
	})
	require.ErrorIs(t, err, apperrors.ErrLinkExpired)

	// An expired resolve must record nothing.
	_, analytics, err := analyticsService.LinkAnalytics(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, analytics.TotalClicks)
}

func TestResolveRedirect_FutureExpirationStillValid(t *testing.T) {
	linkService, _, db := newTestServices(t)
	userID := createTestUser(t, db, "future@example.com")

	future := time.Now().Add(time.Hour)
	created, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL:        "https://example.com/still-here",
		ExpirationDate: &future,
	})
	require.NoError(t, err)

	resolved, err := linkService.ResolveRedirect(created.ShortURL, models.ClickMeta{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/still-here", resolved.LongURL)
}

func TestResolveRedirect_ConcurrentClicks(t *testing.T) {
	linkService, analyticsService, db := newTestServices(t)
	userID := createTestUser(t, db, "conc@example.com")

	created, err := linkService.CreateLink(userID, CreateLinkInput{
		LongURL: "https://example.com/hot",
	})
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := linkService.ResolveRedirect(created.ShortURL, models.ClickMeta{
				IP:        "203.0.113.9",
				UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Every concurrent redirect must have retained its click.
	_, analytics, err := analyticsService.LinkAnalytics(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, n, analytics.TotalClicks)
}
