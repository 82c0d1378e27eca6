// Package services contains the business logic layer for the URL shortener.
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/repository"
)

// charset is the character set used for generated short codes. 62 characters
// at length 7 gives ~3.5 trillion combinations; uniqueness is still enforced
// by the store's unique index, not by the generator.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// shortCodeLength is the length of generated short codes.
const shortCodeLength = 7

// aliasPattern restricts custom aliases to URL-safe characters.
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CreateLinkInput carries the validated-later fields of a link creation
// request. Alias and ExpirationDate are optional.
type CreateLinkInput struct {
	LongURL        string
	Alias          string
	ExpirationDate *time.Time
}

// LinkService provides the business logic for creating and resolving links.
type LinkService struct {
	linkRepo repository.LinkRepository
	clicks   *ClickService
}

// NewLinkService creates and returns a new LinkService.
func NewLinkService(linkRepo repository.LinkRepository, clicks *ClickService) *LinkService {
	return &LinkService{
		linkRepo: linkRepo,
		clicks:   clicks,
	}
}

// GenerateShortCode generates a cryptographically secure random short code
// of the given length.
func (s *LinkService) GenerateShortCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateLink validates the input and persists a new link owned by userID.
// When no alias is given a short code is generated, retrying on the rare
// collision with an existing one.
func (s *LinkService) CreateLink(userID uint, in CreateLinkInput) (*models.Link, error) {
	if in.LongURL == "" {
		return nil, apperrors.NewValidation("Please provide a URL")
	}
	if !isValidURL(in.LongURL) {
		return nil, apperrors.NewValidation("Please provide a valid URL starting with http:// or https://")
	}
	if in.Alias != "" && !aliasPattern.MatchString(in.Alias) {
		return nil, apperrors.NewValidation("Alias can only contain letters, numbers, underscores, and hyphens")
	}

	link := &models.Link{
		LongURL:        in.LongURL,
		UserID:         userID,
		ExpirationDate: in.ExpirationDate,
	}

	if in.Alias != "" {
		// Alias-based link: the alias is the short URL, and the store's
		// unique index decides whether it's taken.
		alias := in.Alias
		link.Alias = &alias
		link.ShortURL = alias
		if err := s.linkRepo.CreateLink(link); err != nil {
			return nil, err
		}
		return link, nil
	}

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		code, err := s.GenerateShortCode(shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		link.ShortURL = code
		err = s.linkRepo.CreateLink(link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, apperrors.ErrAliasTaken) {
			return nil, err
		}
		// Collision with an existing code; generate a new one.
		log.Warn().Str("code", code).Int("attempt", i+1).Msg("short code collision, retrying")
	}

	return nil, apperrors.ErrShortCodeGenerationFailed
}

// ResolveRedirect looks up a short URL, checks expiration, records the click
// and returns the link to redirect to. The click write and the redirect are
// one unit: if the write fails no redirect target is returned, and an
// expired or unknown short URL records nothing.
func (s *LinkService) ResolveRedirect(shortURL string, meta models.ClickMeta) (*models.Link, error) {
	link, err := s.linkRepo.GetLinkByShortURL(shortURL)
	if err != nil {
		return nil, err
	}

	if link.IsExpired(time.Now()) {
		return nil, apperrors.ErrLinkExpired
	}

	if err := s.clicks.Record(link.ID, meta); err != nil {
		return nil, fmt.Errorf("failed to record click for link %d: %w", link.ID, err)
	}

	return link, nil
}

// NormalizePagination clamps page and limit to their valid ranges: page
// starts at 1, limit falls back to 10 outside 1..100. Callers computing
// pagination metadata must use the returned values, so the page size in the
// query and in totalPages is the same number.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// GetUserLinks returns one page of the user's links plus the total match
// count. page and limit are normalized to sane values.
func (s *LinkService) GetUserLinks(userID uint, page, limit int, search string) ([]models.Link, int64, error) {
	page, limit = NormalizePagination(page, limit)
	return s.linkRepo.FindLinksByUser(userID, page, limit, search)
}

// isValidURL reports whether raw parses as an absolute http/https URL with a
// non-empty host.
func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
