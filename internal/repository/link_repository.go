package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/models"
	"gorm.io/gorm"
)

// LinkRepository defines the data access methods for links.
type LinkRepository interface {
	CreateLink(link *models.Link) error
	GetLinkByShortURL(shortURL string) (*models.Link, error)
	GetLinkByID(id uint) (*models.Link, error)
	FindLinksByUser(userID uint, page, limit int, search string) ([]models.Link, int64, error)
	FindExpiredLinks(now time.Time) ([]models.Link, error)
}

// GormLinkRepository implements LinkRepository on top of GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates and returns a new GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink inserts a new link. A unique-index violation on the short URL
// or alias surfaces as apperrors.ErrAliasTaken.
func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAliasTaken
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetLinkByShortURL retrieves a link by its short URL, without clicks.
func (r *GormLinkRepository) GetLinkByShortURL(shortURL string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("short_url = ?", shortURL).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by short url: %w", err)
	}
	return &link, nil
}

// GetLinkByID retrieves a link by primary key with its click sequence
// preloaded in insertion order.
func (r *GormLinkRepository) GetLinkByID(id uint) (*models.Link, error) {
	var link models.Link
	err := r.db.
		Preload("Clicks", func(db *gorm.DB) *gorm.DB { return db.Order("clicks.id ASC") }).
		First(&link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by id: %w", err)
	}
	return &link, nil
}

// FindLinksByUser returns one page of a user's links, newest first, plus the
// total number of matches. search filters on long URL, short URL and alias.
func (r *GormLinkRepository) FindLinksByUser(userID uint, page, limit int, search string) ([]models.Link, int64, error) {
	query := r.db.Model(&models.Link{}).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(long_url) LIKE ? OR LOWER(short_url) LIKE ? OR LOWER(alias) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}

	var links []models.Link
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list links: %w", err)
	}
	return links, total, nil
}

// FindExpiredLinks returns all links whose expiration date is before now.
func (r *GormLinkRepository) FindExpiredLinks(now time.Time) ([]models.Link, error) {
	var links []models.Link
	err := r.db.
		Where("expiration_date IS NOT NULL AND expiration_date < ?", now).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired links: %w", err)
	}
	return links, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// GORM translates these for most dialects; the string check covers SQLite
// drivers that don't implement the translator.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
