package service

import (
	"context"
	"math/big"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// SuggestNextCode derives the next human code from the previous one. A trailing run of digits is
// incremented and zero padded to its original width ("MATH-007" -> "MATH-008", "MATH-099" ->
// "MATH-100", "A999" -> "A1000"). Codes without trailing digits get "-1" appended. An empty
// previous code yields no suggestion.
func SuggestNextCode(prev string) (string, bool) {
	prev = strings.TrimSpace(prev)
	if prev == "" {
		return "", false
	}
	loc := trailingDigits.FindStringIndex(prev)
	if loc == nil {
		return prev + "-1", true
	}
	digits := prev[loc[0]:]
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return prev + "-1", true
	}
	next := n.Add(n, big.NewInt(1)).String()
	if pad := len(digits) - len(next); pad > 0 {
		next = strings.Repeat("0", pad) + next
	}
	return prev[:loc[0]] + next, true
}

// CodeSource reports the most recently created code of an entity.
type CodeSource interface {
	LatestCode(ctx context.Context) (string, error)
}

// Code hint entities.
const (
	HintAssignments = "subject_assignment"
	HintClasses     = "tuition_class"
	HintSubjects    = "subject"
	HintStudents    = "student"
)

// CodeHintService suggests the next human code for coded entities.
type CodeHintService struct {
	sources map[string]CodeSource
	logger  *zap.Logger
}

// NewCodeHintService constructs a CodeHintService over the entity code sources.
func NewCodeHintService(sources map[string]CodeSource, logger *zap.Logger) *CodeHintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeHintService{sources: sources, logger: logger}
}

// Next returns the latest code of entity and the suggested successor. With no rows both are empty.
func (s *CodeHintService) Next(ctx context.Context, entity string) (*models.CodeHint, error) {
	src, ok := s.sources[entity]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no code sequence for "+entity)
	}
	latest, err := src.LatestCode(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load latest code")
	}
	hint := &models.CodeHint{Entity: entity, Latest: latest}
	if next, ok := SuggestNextCode(latest); ok {
		hint.Suggested = next
	}
	return hint, nil
}
