package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/internal/database"
)

// Collector periodically updates gauge metrics from database state
type Collector struct {
	db       *database.BunDB
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(db *database.BunDB, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 30 * time.Second
	}

	return &Collector{
		db:       db,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start collects immediately and then on every tick until ctx is done or
// Stop is called
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.Collect(ctx)
		}
	}
}

// Stop stops the metrics collector. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// Collect updates all gauges once
func (c *Collector) Collect(ctx context.Context) {
	stats, err := c.db.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to collect catalog metrics")
	} else {
		UsersTotal.Set(float64(stats.Users))
		ProductsTotal.Set(float64(stats.Products))
		MapsTotal.Set(float64(stats.Maps))
	}

	DBConnections.Set(float64(c.db.DB().Stats().OpenConnections))
}
