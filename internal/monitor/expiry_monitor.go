// Package monitor runs the background expiry sweep. It is observability
// only: it logs links crossing their expiration date and never mutates or
// deletes anything.
package monitor

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mlthieu/linkstats/internal/repository"
)

// ExpiryMonitor periodically scans for links that are past their expiration
// date. A state map remembers which links were already reported so each
// expiration is logged once, when it happens.
type ExpiryMonitor struct {
	linkRepo repository.LinkRepository
	interval time.Duration
	reported map[uint]bool
	mu       sync.Mutex
	stop     chan struct{}
}

// NewExpiryMonitor creates and returns a new ExpiryMonitor. interval
// determines how often the sweep runs.
func NewExpiryMonitor(linkRepo repository.LinkRepository, interval time.Duration) *ExpiryMonitor {
	return &ExpiryMonitor{
		linkRepo: linkRepo,
		interval: interval,
		reported: make(map[uint]bool),
		stop:     make(chan struct{}),
	}
}

// Start launches the periodic sweep loop. It blocks until Stop is called,
// so run it in its own goroutine.
func (m *ExpiryMonitor) Start() {
	log.Info().Dur("interval", m.interval).Msg("starting expiry monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sweep()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

// Stop terminates the sweep loop.
func (m *ExpiryMonitor) Stop() {
	close(m.stop)
}

// sweep finds expired links and logs the ones that expired since the last
// pass. It returns how many links it reported for the first time.
func (m *ExpiryMonitor) sweep() int {
	expired, err := m.linkRepo.FindExpiredLinks(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newlyExpired := 0
	for _, link := range expired {
		if m.reported[link.ID] {
			continue
		}
		m.reported[link.ID] = true
		newlyExpired++
		log.Info().
			Str("short_url", link.ShortURL).
			Time("expired_at", *link.ExpirationDate).
			Msg("link expired")
	}

	if newlyExpired > 0 {
		log.Info().Int("newly_expired", newlyExpired).Int("total_expired", len(expired)).
			Msg("expiry sweep completed")
	}
	return newlyExpired
}
