package services

import (
	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/repository"
)

// Analytics is the aggregation of a link's click sequence. Maps only hold
// keys that at least one click produced, so an unclicked link serializes as
// empty objects with a zero total.
type Analytics struct {
	TotalClicks     int            `json:"totalClicks"`
	ClicksByDate    map[string]int `json:"clicksByDate"`
	ClicksByDevice  map[string]int `json:"clicksByDevice"`
	ClicksByBrowser map[string]int `json:"clicksByBrowser"`
	ClicksByCountry map[string]int `json:"clicksByCountry"`
}

// AnalyticsService aggregates click events into per-dimension counts.
type AnalyticsService struct {
	linkRepo repository.LinkRepository
}

// NewAnalyticsService creates and returns a new AnalyticsService.
func NewAnalyticsService(linkRepo repository.LinkRepository) *AnalyticsService {
	return &AnalyticsService{linkRepo: linkRepo}
}

// LinkAnalytics loads a link with its clicks and computes the four
// aggregation mappings in a single scan. Only the owning user may read a
// link's analytics.
func (s *AnalyticsService) LinkAnalytics(linkID, userID uint) (*models.Link, *Analytics, error) {
	link, err := s.linkRepo.GetLinkByID(linkID)
	if err != nil {
		return nil, nil, err
	}

	if link.UserID != userID {
		return nil, nil, apperrors.ErrNotOwner
	}

	analytics := &Analytics{
		TotalClicks:     len(link.Clicks),
		ClicksByDate:    make(map[string]int),
		ClicksByDevice:  make(map[string]int),
		ClicksByBrowser: make(map[string]int),
		ClicksByCountry: make(map[string]int),
	}

	for _, click := range link.Clicks {
		date := click.Timestamp.UTC().Format("2006-01-02")
		analytics.ClicksByDate[date]++
		analytics.ClicksByDevice[click.DeviceType]++
		analytics.ClicksByBrowser[click.Browser]++
		analytics.ClicksByCountry[click.Country]++
	}

	return link, analytics, nil
}
