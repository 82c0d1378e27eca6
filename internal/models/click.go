package models

import "time"

// Click is one recorded visit to a short URL, with metadata derived from
// the request at insertion time. Rows are immutable once written; keeping
// them in their own table makes the append a single atomic insert, so
// concurrent redirects on the same link never lose a click.
type Click struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	LinkID     uint      `gorm:"index;not null" json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `gorm:"size:50" json:"ip"`
	DeviceType string    `gorm:"size:20" json:"deviceType"` // "mobile", "tablet" or "desktop"
	Browser    string    `gorm:"size:50" json:"browser"`    // "Unknown" when undetectable
	Country    string    `gorm:"size:64" json:"country"`    // "Unknown" when ungeolocatable
	Referrer   string    `gorm:"size:255" json:"referrer"`  // "Direct" when absent
}

// ClickMeta carries the raw request metadata the recorder derives a Click
// from. It keeps HTTP types out of the service layer.
type ClickMeta struct {
	IP        string
	UserAgent string
	Referrer  string
	Country   string // edge-supplied country header, may be empty
}
