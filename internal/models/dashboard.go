package models

import "time"

// DashboardSummary holds the headline counts shown on the dashboard.
type DashboardSummary struct {
	Students          int       `db:"students" json:"students"`
	ActiveStudents    int       `db:"active_students" json:"active_students"`
	Teachers          int       `db:"teachers" json:"teachers"`
	ActiveTeachers    int       `db:"active_teachers" json:"active_teachers"`
	Classes           int       `db:"classes" json:"classes"`
	ActiveClasses     int       `db:"active_classes" json:"active_classes"`
	Subjects          int       `db:"subjects" json:"subjects"`
	Assignments       int       `db:"assignments" json:"assignments"`
	ActiveEnrollments int       `db:"active_enrollments" json:"active_enrollments"`
	GeneratedAt       time.Time `db:"-" json:"generated_at"`
}

// ClassHeadcount is the number of active students placed in a class.
type ClassHeadcount struct {
	ClassID        string `db:"class_id" json:"class_id"`
	ClassCode      string `db:"class_code" json:"class_code"`
	Name           string `db:"name" json:"name"`
	Capacity       int    `db:"capacity" json:"capacity"`
	ActiveStudents int    `db:"active_students" json:"active_students"`
}

// CodeHint is a suggested next human code derived from the latest one.
type CodeHint struct {
	Entity    string `json:"entity"`
	Latest    string `json:"latest,omitempty"`
	Suggested string `json:"suggested,omitempty"`
}
