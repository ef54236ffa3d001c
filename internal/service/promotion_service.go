package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

type headcountRepository interface {
	Headcounts(ctx context.Context) ([]models.ClassHeadcount, error)
}

// PromotionReport summarises active students per class. Running it changes nothing.
type PromotionReport struct {
	Examined     int                     `json:"examined"`
	Classes      []models.ClassHeadcount `json:"classes"`
	OverCapacity []string                `json:"over_capacity"`
}

// PromotionService inspects class placement ahead of a yearly promotion.
type PromotionService struct {
	repo   headcountRepository
	logger *zap.Logger
}

// NewPromotionService constructs a PromotionService.
func NewPromotionService(repo headcountRepository, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{repo: repo, logger: logger}
}

// Report counts active students per class and flags classes above capacity.
func (s *PromotionService) Report(ctx context.Context) (*PromotionReport, error) {
	counts, err := s.repo.Headcounts(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count students per class")
	}
	report := &PromotionReport{Classes: counts, OverCapacity: []string{}}
	for _, c := range counts {
		report.Examined += c.ActiveStudents
		if c.Capacity > 0 && c.ActiveStudents > c.Capacity {
			report.OverCapacity = append(report.OverCapacity, c.ClassCode)
		}
	}
	s.logger.Info("promotion report", zap.Int("classes", len(counts)), zap.Int("examined", report.Examined))
	return report, nil
}
