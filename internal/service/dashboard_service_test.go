package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type fakeDashboardRepo struct {
	summary *models.DashboardSummary
	err     error
	calls   int
}

func (f *fakeDashboardRepo) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.summary
	return &cp, nil
}

func TestDashboardServiceSummaryCaches(t *testing.T) {
	repo := &fakeDashboardRepo{summary: &models.DashboardSummary{Students: 12, ActiveStudents: 10, Teachers: 3, ActiveEnrollments: 9}}
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewDashboardService(repo, NewCacheService(cacheRepo, metrics, time.Minute, nil, true), metrics, 30*time.Second, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	first, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 12, first.Students)
	assert.Equal(t, 30*time.Second, cacheRepo.ttls[dashboardSummaryKey])

	second, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.ActiveEnrollments, second.ActiveEnrollments)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate(context.Background())
	_, hit, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
	assert.Contains(t, scrapeMetrics(t, metrics), `tuition_db_query_duration_seconds_count{query="dashboard_summary"} 2`)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	repo := &fakeDashboardRepo{summary: &models.DashboardSummary{Subjects: 4}}
	svc := NewDashboardService(repo, nil, nil, 0, nil)

	for i := 0; i < 2; i++ {
		summary, hit, err := svc.Summary(context.Background())
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 4, summary.Subjects)
	}
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardServiceRepoError(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRepo{err: errors.New("db down")}, nil, nil, time.Minute, nil)
	_, _, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
