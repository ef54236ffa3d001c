package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/repository"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

const (
	oldTeacherUUID = "0b4f6c1e-1111-4a2b-9c3d-000000000001"
	newTeacherUUID = "0b4f6c1e-1111-4a2b-9c3d-000000000002"
	missingUUID    = "0b4f6c1e-1111-4a2b-9c3d-0000000000ff"
)

// fakeTeacherStore keeps classes and assignments keyed by their teacher and applies the same
// all-or-nothing rules as the transactional repository.
type fakeTeacherStore struct {
	teachers    map[string]bool
	classes     map[string]string
	assignments map[string]string
	deleteCalls int
}

func newFakeTeacherStore() *fakeTeacherStore {
	return &fakeTeacherStore{
		teachers:    map[string]bool{oldTeacherUUID: true, newTeacherUUID: true},
		classes:     map[string]string{"CLS-001": oldTeacherUUID},
		assignments: map[string]string{"MATH-007": oldTeacherUUID},
	}
}

func (f *fakeTeacherStore) referenced(id string) bool {
	for _, owner := range f.classes {
		if owner == id {
			return true
		}
	}
	for _, owner := range f.assignments {
		if owner == id {
			return true
		}
	}
	return false
}

func (f *fakeTeacherStore) Delete(ctx context.Context, id string) error {
	f.deleteCalls++
	if !f.teachers[id] {
		return fmt.Errorf("delete teachers: %w", sql.ErrNoRows)
	}
	if f.referenced(id) {
		return fmt.Errorf("delete teachers: %w", &pq.Error{Code: "23503", Constraint: "tuition_classes_class_teacher_id_fkey"})
	}
	delete(f.teachers, id)
	return nil
}

func (f *fakeTeacherStore) Dependents(ctx context.Context, id string) ([]models.Dependent, error) {
	var deps []models.Dependent
	for code, owner := range f.classes {
		if owner == id {
			deps = append(deps, models.Dependent{Relation: models.RelationClasses, Code: code})
		}
	}
	for code, owner := range f.assignments {
		if owner == id {
			deps = append(deps, models.Dependent{Relation: models.RelationAssignments, Code: code})
		}
	}
	return deps, nil
}

func (f *fakeTeacherStore) Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error) {
	var alts []models.DeletionCandidate
	for tid := range f.teachers {
		if tid != id {
			alts = append(alts, models.DeletionCandidate{ID: tid})
		}
	}
	return alts, nil
}

func (f *fakeTeacherStore) ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error) {
	for relation, target := range targets {
		if !f.teachers[target] {
			return nil, &repository.TargetError{Relation: relation, TargetID: target}
		}
	}
	classes := copyOwners(f.classes)
	assignments := copyOwners(f.assignments)
	moved := map[string]int{}
	if target := targets[models.RelationClasses]; target != "" {
		moved[models.RelationClasses] = reassignOwners(classes, id, target)
	}
	if target := targets[models.RelationAssignments]; target != "" {
		moved[models.RelationAssignments] = reassignOwners(assignments, id, target)
	}
	for _, owner := range classes {
		if owner == id {
			return nil, &pq.Error{Code: "23503", Constraint: "tuition_classes_class_teacher_id_fkey"}
		}
	}
	for _, owner := range assignments {
		if owner == id {
			return nil, &pq.Error{Code: "23503", Constraint: "subject_assignments_teacher_id_fkey"}
		}
	}
	f.classes, f.assignments = classes, assignments
	delete(f.teachers, id)
	return moved, nil
}

func copyOwners(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func reassignOwners(owners map[string]string, from, to string) int {
	n := 0
	for k, v := range owners {
		if v == from {
			owners[k] = to
			n++
		}
	}
	return n
}

func newDeletionService(store *fakeTeacherStore, audit *mockAuditWriter) *DeletionService {
	return NewDeletionService(store, store, store, audit, NewMetricsService(), nil)
}

func TestDeleteTeacherBlockedListsDependents(t *testing.T) {
	store := newFakeTeacherStore()
	audit := &mockAuditWriter{}
	svc := newDeletionService(store, audit)

	out, err := svc.DeleteTeacher(context.Background(), oldTeacherUUID, models.TeacherReassignment{}, models.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.DeletionBlocked, out.State)
	assert.Len(t, out.Dependents, 2)
	require.Len(t, out.Alternatives, 1)
	assert.Equal(t, newTeacherUUID, out.Alternatives[0].ID)
	assert.True(t, store.teachers[oldTeacherUUID])
	assert.Empty(t, audit.logs)
}

func TestDeleteTeacherReassignsBothRelations(t *testing.T) {
	store := newFakeTeacherStore()
	audit := &mockAuditWriter{}
	svc := newDeletionService(store, audit)

	out, err := svc.DeleteTeacher(context.Background(), oldTeacherUUID, models.TeacherReassignment{
		ClassesTo:     newTeacherUUID,
		AssignmentsTo: newTeacherUUID,
	}, models.AuditMeta{ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, models.DeletionDeleted, out.State)
	assert.Equal(t, map[string]int{models.RelationClasses: 1, models.RelationAssignments: 1}, out.Moved)
	assert.False(t, store.teachers[oldTeacherUUID])
	assert.Equal(t, newTeacherUUID, store.classes["CLS-001"])
	assert.Equal(t, newTeacherUUID, store.assignments["MATH-007"])

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionReassignDelete, audit.logs[0].Action)
}

func TestDeleteTeacherMissingTargetChangesNothing(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newDeletionService(store, &mockAuditWriter{})

	out, err := svc.DeleteTeacher(context.Background(), oldTeacherUUID, models.TeacherReassignment{
		ClassesTo:     missingUUID,
		AssignmentsTo: newTeacherUUID,
	}, models.AuditMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrReassignTarget)
	require.NotNil(t, out)
	assert.Equal(t, models.DeletionBlocked, out.State)
	assert.True(t, store.teachers[oldTeacherUUID])
	assert.Equal(t, oldTeacherUUID, store.classes["CLS-001"])
	assert.Equal(t, oldTeacherUUID, store.assignments["MATH-007"])
}

func TestDeleteTeacherRejectsSelfTarget(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newDeletionService(store, &mockAuditWriter{})

	out, err := svc.DeleteTeacher(context.Background(), oldTeacherUUID, models.TeacherReassignment{ClassesTo: oldTeacherUUID}, models.AuditMeta{})
	assert.ErrorIs(t, err, appErrors.ErrReassignTarget)
	require.NotNil(t, out)
	assert.Equal(t, models.DeletionBlocked, out.State)
	assert.True(t, store.teachers[oldTeacherUUID])
}

func TestDeleteTeacherPartialTargetStaysBlocked(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newDeletionService(store, &mockAuditWriter{})

	out, err := svc.DeleteTeacher(context.Background(), oldTeacherUUID, models.TeacherReassignment{ClassesTo: newTeacherUUID}, models.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.DeletionBlocked, out.State)
	assert.True(t, store.teachers[oldTeacherUUID])
	assert.Equal(t, oldTeacherUUID, store.classes["CLS-001"])
	require.Len(t, out.Dependents, 2)
}

func TestDeleteTeacherDirectDeleteWithoutDependents(t *testing.T) {
	store := newFakeTeacherStore()
	audit := &mockAuditWriter{}
	svc := newDeletionService(store, audit)

	out, err := svc.DeleteTeacher(context.Background(), newTeacherUUID, models.TeacherReassignment{}, models.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.DeletionDeleted, out.State)
	assert.Nil(t, out.Moved)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDelete, audit.logs[0].Action)
}

func TestDeleteUnknownOrMalformedID(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newDeletionService(store, &mockAuditWriter{})

	_, err := svc.DeleteTeacher(context.Background(), missingUUID, models.TeacherReassignment{}, models.AuditMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.DeleteSubject(context.Background(), "not-a-uuid", "", models.AuditMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 1, store.deleteCalls)
}

func TestDeleteSubjectConflictOnReassign(t *testing.T) {
	repo := &stubDeletable{reassignErr: &pq.Error{Code: "23505", Constraint: "subject_assignments_subject_teacher_key"}}
	svc := NewDeletionService(repo, repo, repo, nil, nil, nil)

	out, err := svc.DeleteSubject(context.Background(), oldTeacherUUID, newTeacherUUID, models.AuditMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Contains(t, err.Error(), "already exists")
	require.NotNil(t, out)
	assert.Equal(t, models.DeletionBlocked, out.State)
	assert.Equal(t, models.ReassignmentTargets{models.RelationAssignments: newTeacherUUID}, repo.targets)
}

type stubDeletable struct {
	reassignErr error
	targets     models.ReassignmentTargets
}

func (s *stubDeletable) Delete(ctx context.Context, id string) error { return nil }
func (s *stubDeletable) Dependents(ctx context.Context, id string) ([]models.Dependent, error) {
	return []models.Dependent{{Relation: models.RelationAssignments, Code: "MATH-007"}}, nil
}
func (s *stubDeletable) Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error) {
	return nil, nil
}
func (s *stubDeletable) ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error) {
	s.targets = targets
	return nil, s.reassignErr
}
