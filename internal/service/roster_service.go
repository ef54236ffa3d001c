package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
	"github.com/noah-isme/tuition-center-api/pkg/export"
)

// Roster export formats.
const (
	RosterFormatCSV = "csv"
	RosterFormatPDF = "pdf"
)

var rosterHeaders = []string{"No", "Reg No", "Student", "Phone", "Joined", "Primary Guardian", "Guardian Phone"}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.TuitionClass, error)
}

type rosterRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// RosterFile is a rendered class roster.
type RosterFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RosterService renders the active students of a class as CSV or PDF.
type RosterService struct {
	classes   classFinder
	students  classStudentLister
	guardians guardianBatchLoader
	renderers map[string]rosterRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewRosterService constructs a RosterService with the CSV and PDF exporters.
func NewRosterService(classes classFinder, students classStudentLister, guardians guardianBatchLoader, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		classes:   classes,
		students:  students,
		guardians: guardians,
		renderers: map[string]rosterRenderer{
			RosterFormatCSV: export.NewCSVExporter(),
			RosterFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Export renders the roster of classID. An empty format means CSV.
func (s *RosterService) Export(ctx context.Context, classID, format string) (*RosterFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = RosterFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, loadError(err, "class")
	}
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, internalError(err, "failed to load class students")
	}
	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	guardians, err := s.guardians.ListByStudents(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load guardians")
	}

	doc := export.Document{
		Title:    fmt.Sprintf("%s (%s)", class.Name, class.ClassCode),
		Subtitle: rosterSubtitle(class, len(students), s.now()),
		Data:     export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(students))},
	}
	for i, st := range students {
		row := map[string]string{
			"No":      strconv.Itoa(i + 1),
			"Reg No":  st.RegNo,
			"Student": st.FullName(),
			"Phone":   deref(st.Phone),
			"Joined":  st.JoinedDate.String(),
		}
		if g, ok := primaryGuardian(guardians[st.ID]); ok {
			row["Primary Guardian"] = g.Name
			row["Guardian Phone"] = deref(g.Phone)
		}
		doc.Data.Rows = append(doc.Data.Rows, row)
	}

	data, err := renderer.Render(doc)
	if err != nil {
		return nil, internalError(err, "failed to render roster")
	}
	s.logger.Debug("roster exported", zap.String("class_id", classID), zap.String("format", format), zap.Int("students", len(students)))
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s.%s", slug(class.ClassCode), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func rosterSubtitle(class *models.TuitionClass, count int, now time.Time) string {
	parts := []string{fmt.Sprintf("%d active students", count)}
	if class.ClassTeacher != nil {
		parts = append(parts, "Teacher: "+class.ClassTeacher.DisplayName)
	}
	parts = append(parts, "Generated "+now.UTC().Format("2006-01-02 15:04"))
	return strings.Join(parts, " | ")
}

func primaryGuardian(guardians []models.Guardian) (models.Guardian, bool) {
	for _, g := range guardians {
		if g.IsPrimary {
			return g, true
		}
	}
	if len(guardians) > 0 {
		return guardians[0], true
	}
	return models.Guardian{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func slug(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, code)
}
