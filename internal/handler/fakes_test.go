package handler

import (
	"context"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/service"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = tokenTable{
	"admin-token":     {UserID: "admin-1", Role: models.RoleAdmin},
	"staff-token":     {UserID: "staff-1", Role: models.RoleStaff},
	"superuser-token": {UserID: "root-1", Role: models.RoleAdmin, IsSuperuser: true},
}

type fakeTeachers struct{ created int }

func (f *fakeTeachers) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	return []models.Teacher{{ID: "t1", FirstName: "Ruwan"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeTeachers) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	if id != "t1" {
		return nil, appErrors.ErrNotFound
	}
	return &models.TeacherDetail{Teacher: models.Teacher{ID: id}}, nil
}

func (f *fakeTeachers) Create(ctx context.Context, req service.CreateTeacherRequest) (*models.Teacher, error) {
	f.created++
	return &models.Teacher{ID: "t-new", FirstName: req.FirstName}, nil
}

func (f *fakeTeachers) Update(ctx context.Context, id string, req service.UpdateTeacherRequest) (*models.Teacher, error) {
	return &models.Teacher{ID: id, FirstName: req.FirstName}, nil
}

type fakeDeletion struct {
	outcome   *models.DeletionOutcome
	err       error
	calls     int
	lastReq   models.TeacherReassignment
	lastMeta  models.AuditMeta
	lastClass string
}

func (f *fakeDeletion) DeleteTeacher(ctx context.Context, id string, req models.TeacherReassignment, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	f.calls++
	f.lastReq = req
	f.lastMeta = meta
	return f.outcome, f.err
}

func (f *fakeDeletion) DeleteClass(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	f.calls++
	f.lastClass = reassignTo
	f.lastMeta = meta
	return f.outcome, f.err
}

func (f *fakeDeletion) DeleteSubject(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeStaff struct {
	created  int
	lastMeta models.AuditMeta
}

func (f *fakeStaff) ListStaff(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	return []models.User{}, &models.Pagination{}, nil
}

func (f *fakeStaff) CreateStaff(ctx context.Context, req service.CreateStaffRequest, meta models.AuditMeta) (*models.User, error) {
	f.created++
	f.lastMeta = meta
	return &models.User{ID: "u-new", Email: req.Email, Role: models.RoleStaff}, nil
}

func (f *fakeStaff) ChangeStaffPassword(ctx context.Context, id string, req service.SetPasswordRequest, meta models.AuditMeta) error {
	return nil
}

func (f *fakeStaff) DeleteStaff(ctx context.Context, id string, meta models.AuditMeta) error {
	return nil
}

type fakeHints struct{}

func (fakeHints) Next(ctx context.Context, entity string) (*models.CodeHint, error) {
	return &models.CodeHint{Entity: entity, Latest: "C-009", Suggested: "C-010"}, nil
}

type fakeRoster struct{}

func (fakeRoster) Export(ctx context.Context, classID, format string) (*service.RosterFile, error) {
	if format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.RosterFile{Filename: "roster-c1.csv", ContentType: "text/csv", Data: []byte("No,Reg No\n")}, nil
}

type fakeDashboard struct {
	summary *models.DashboardSummary
	hit     bool
}

func (f *fakeDashboard) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	return f.summary, f.hit, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type fakeGuardians struct{}

func (fakeGuardians) List(ctx context.Context, filter models.GuardianFilter) ([]models.Guardian, *models.Pagination, error) {
	return nil, &models.Pagination{}, nil
}

func (fakeGuardians) Get(ctx context.Context, id string) (*models.Guardian, error) {
	return &models.Guardian{ID: id}, nil
}

func (fakeGuardians) Create(ctx context.Context, req service.GuardianRequest) (*models.Guardian, error) {
	return &models.Guardian{ID: "g-new", StudentID: req.StudentID, Name: req.Name}, nil
}

func (fakeGuardians) Update(ctx context.Context, id string, req service.GuardianRequest) (*models.Guardian, error) {
	return &models.Guardian{ID: id, StudentID: req.StudentID, Name: req.Name}, nil
}

func (fakeGuardians) Delete(ctx context.Context, id string) error {
	if id == "last" {
		return appErrors.Clone(appErrors.ErrGuardianRequired, "a student must keep at least one guardian")
	}
	return nil
}
