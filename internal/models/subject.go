package models

import "time"

// Subject is a taught subject.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Summary projects the subject for nested representations.
func (s Subject) Summary() SubjectSummary {
	return SubjectSummary{ID: s.ID, SubjectCode: s.SubjectCode, Name: s.Name}
}

// SubjectSummary is the nested read representation of a subject.
type SubjectSummary struct {
	ID          string `json:"id"`
	SubjectCode string `json:"subject_code"`
	Name        string `json:"name"`
}

// SubjectDetail embeds the subject's assignments.
type SubjectDetail struct {
	Subject
	Assignments []SubjectAssignment `json:"assignments"`
}

// SubjectFilter captures filtering options for listing subjects.
type SubjectFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
