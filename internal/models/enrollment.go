package models

import "time"

// Enrollment places a student in a class for a date range. (student, class, start_date) is unique.
type Enrollment struct {
	ID             string          `db:"id" json:"id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	TuitionClassID string          `db:"tuition_class_id" json:"tuition_class_id"`
	StartDate      Date            `db:"start_date" json:"start_date"`
	EndDate        *Date           `db:"end_date" json:"end_date"`
	Active         bool            `db:"active" json:"active"`
	FeeOverride    *float64        `db:"fee_override" json:"fee_override"`
	Student        *StudentSummary `db:"-" json:"student,omitempty"`
	TuitionClass   *ClassSummary   `db:"-" json:"tuition_class,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// EnrollmentFilter captures filtering options for listing enrollments.
type EnrollmentFilter struct {
	Search         string
	StudentID      string
	TuitionClassID string
	Active         *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
