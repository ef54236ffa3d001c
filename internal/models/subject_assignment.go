package models

import "time"

// SubjectAssignment links a teacher to a subject. A (subject, teacher) pair is unique.
type SubjectAssignment struct {
	ID         string          `db:"id" json:"id"`
	AssignCode string          `db:"assign_code" json:"assign_code"`
	SubjectID  string          `db:"subject_id" json:"subject_id"`
	TeacherID  string          `db:"teacher_id" json:"teacher_id"`
	StartDate  *Date           `db:"start_date" json:"start_date"`
	EndDate    *Date           `db:"end_date" json:"end_date"`
	Notes      string          `db:"notes" json:"notes"`
	Subject    *SubjectSummary `db:"-" json:"subject,omitempty"`
	Teacher    *TeacherSummary `db:"-" json:"teacher,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// SubjectAssignmentFilter captures filtering options for listing assignments.
type SubjectAssignmentFilter struct {
	Search    string
	SubjectID string
	TeacherID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
