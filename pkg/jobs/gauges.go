package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/projects"
	"github.com/platinummonkey/workboard/pkg/tasks"
	"github.com/platinummonkey/workboard/pkg/users"
	"github.com/platinummonkey/workboard/pkg/workspaces"
)

// GaugeRefresher copies row counts and connection pool stats into the
// business gauges
type GaugeRefresher struct {
	db         *sqlx.DB
	users      *users.Store
	workspaces *workspaces.Store
	projects   *projects.Store
	tasks      *tasks.Store
	metrics    *observability.Metrics
	logger     *observability.Logger
}

// NewGaugeRefresher creates a refresher over the stores of db
func NewGaugeRefresher(db *sqlx.DB, metrics *observability.Metrics, logger *observability.Logger) *GaugeRefresher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &GaugeRefresher{
		db:         db,
		users:      users.NewStore(db),
		workspaces: workspaces.NewStore(db),
		projects:   projects.NewStore(db),
		tasks:      tasks.NewStore(db),
		metrics:    metrics,
		logger:     logger,
	}
}

// Refresh updates every gauge. Gauges keep their previous value when a
// count fails.
func (g *GaugeRefresher) Refresh(ctx context.Context) error {
	stats := g.db.Stats()
	g.metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	g.metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	g.metrics.DBConnectionsIdle.Set(float64(stats.Idle))

	n, err := g.users.Count(ctx)
	if err != nil {
		return err
	}
	g.metrics.UsersTotal.Set(float64(n))

	if n, err = g.workspaces.Count(ctx); err != nil {
		return err
	}
	g.metrics.WorkspacesTotal.Set(float64(n))

	if n, err = g.projects.Count(ctx); err != nil {
		return err
	}
	g.metrics.ProjectsTotal.Set(float64(n))

	byStatus, err := g.tasks.CountByStatus(ctx)
	if err != nil {
		return err
	}
	for _, st := range tasks.AllStatuses {
		g.metrics.TasksTotal.WithLabelValues(string(st)).Set(float64(byStatus[st]))
	}
	return nil
}

// Schedule registers Refresh on c with the given cron spec. Each run is
// bounded by timeout.
func (g *GaugeRefresher) Schedule(c *cron.Cron, spec string, timeout time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := g.Refresh(ctx); err != nil {
			g.logger.WithError(err).Warn("gauge refresh failed")
			return
		}
		g.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("gauges refreshed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule gauge refresh: %w", err)
	}
	return nil
}
