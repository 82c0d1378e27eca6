package models

import "time"

// Link is a shortened URL owned by a user. ShortURL is the token that
// appears in the redirect path; when the user picked a custom alias,
// Alias is set and ShortURL equals it.
type Link struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	LongURL        string     `gorm:"not null" json:"longUrl"`
	ShortURL       string     `gorm:"uniqueIndex;size:64;not null" json:"shortUrl"`
	Alias          *string    `gorm:"uniqueIndex;size:64" json:"alias,omitempty"`
	UserID         uint       `gorm:"index;not null" json:"userId"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`

	// Clicks is append-only; click rows are never updated or deleted.
	Clicks []Click `gorm:"foreignKey:LinkID" json:"clicks,omitempty"`
}

// IsExpired reports whether the link is past its expiration date at t.
// A link without an expiration date never expires.
func (l *Link) IsExpired(t time.Time) bool {
	return l.ExpirationDate != nil && t.After(*l.ExpirationDate)
}
