package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

// DashboardRepository aggregates headline counts.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary counts the main entities in a single round trip.
func (r *DashboardRepository) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM students) AS students,
		(SELECT COUNT(*) FROM students WHERE is_active) AS active_students,
		(SELECT COUNT(*) FROM teachers) AS teachers,
		(SELECT COUNT(*) FROM teachers WHERE is_active) AS active_teachers,
		(SELECT COUNT(*) FROM tuition_classes) AS classes,
		(SELECT COUNT(*) FROM tuition_classes WHERE active) AS active_classes,
		(SELECT COUNT(*) FROM subjects) AS subjects,
		(SELECT COUNT(*) FROM subject_assignments) AS assignments,
		(SELECT COUNT(*) FROM enrollments WHERE active) AS active_enrollments`
	var summary models.DashboardSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &summary, nil
}
