package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

// DashboardCachePattern matches every cached dashboard payload.
const DashboardCachePattern = "dashboard:*"

const dashboardSummaryKey = "dashboard:summary"

type dashboardRepository interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// DashboardService serves the headline counts, cached for a short TTL.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs a DashboardService. A non-positive ttl falls back to one minute.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger, now: time.Now}
}

// Summary returns the dashboard counts and whether they came from the cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	var cached models.DashboardSummary
	if s.cache.Get(ctx, dashboardSummaryKey, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	summary, err := s.repo.Summary(ctx)
	s.metrics.ObserveDBQuery("dashboard_summary", time.Since(start))
	if err != nil {
		return nil, false, internalError(err, "failed to load dashboard summary")
	}
	summary.GeneratedAt = s.now().UTC()
	s.cache.Set(ctx, dashboardSummaryKey, summary, s.ttl)
	return summary, false, nil
}

// Invalidate drops cached dashboard payloads after a write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, DashboardCachePattern)
}
