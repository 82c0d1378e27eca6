package services

import (
	"strings"
	"time"

	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/repository"
)

// ClickService derives click metadata from raw request data and appends the
// resulting click event to a link's sequence.
type ClickService struct {
	clickRepo repository.ClickRepository
	geo       geoip.Resolver
}

// NewClickService creates and returns a new ClickService.
func NewClickService(clickRepo repository.ClickRepository, geo geoip.Resolver) *ClickService {
	return &ClickService{
		clickRepo: clickRepo,
		geo:       geo,
	}
}

// Record derives device, browser, country and referrer from the request
// metadata and persists one click event for the link. Every call writes
// exactly one click; there is no deduplication or batching.
func (s *ClickService) Record(linkID uint, meta models.ClickMeta) error {
	referrer := meta.Referrer
	if referrer == "" {
		referrer = "Direct"
	}

	click := &models.Click{
		LinkID:     linkID,
		Timestamp:  time.Now().UTC(),
		IP:         meta.IP,
		DeviceType: DeviceType(meta.UserAgent),
		Browser:    BrowserName(meta.UserAgent),
		Country:    s.geo.Country(meta.IP, meta.Country),
		Referrer:   referrer,
	}

	return s.clickRepo.CreateClick(click)
}

// Count returns the total number of clicks recorded for a link. It counts
// rows in the store instead of loading them, so it stays cheap for links
// with long click histories.
func (s *ClickService) Count(linkID uint) (int, error) {
	return s.clickRepo.CountClicksByLinkID(linkID)
}

// DeviceType classifies a User-Agent as "mobile", "tablet" or "desktop".
// Undetectable agents count as desktop.
func DeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// BrowserName extracts the browser name from a User-Agent, "Unknown" when it
// can't be determined. The Edge/Opera checks come first because their agents
// also contain "Chrome", and Chrome's contains "Safari".
func BrowserName(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}
