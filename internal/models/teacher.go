package models

import (
	"strings"
	"time"
)

// TeacherTitle is the honorific shown before a teacher's name.
type TeacherTitle string

const (
	TitleMr  TeacherTitle = "mr"
	TitleMs  TeacherTitle = "ms"
	TitleMrs TeacherTitle = "mrs"
	TitleRev TeacherTitle = "rev"
)

// Teacher represents an instructor record.
type Teacher struct {
	ID        string       `db:"id" json:"id"`
	Title     TeacherTitle `db:"title" json:"title"`
	FirstName string       `db:"first_name" json:"first_name"`
	LastName  string       `db:"last_name" json:"last_name"`
	DOB       *Date        `db:"dob" json:"dob"`
	Phone     *string      `db:"phone" json:"phone,omitempty"`
	WhatsApp  *string      `db:"whatsapp" json:"whatsapp,omitempty"`
	Email     *string      `db:"email" json:"email,omitempty"`
	UserID    *string      `db:"user_id" json:"user_id,omitempty"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// DisplayName renders "Mr. First Last".
func (t Teacher) DisplayName() string {
	return displayName(t.Title, t.FirstName, t.LastName)
}

// Summary projects the teacher for nested representations.
func (t Teacher) Summary() TeacherSummary {
	return TeacherSummary{ID: t.ID, Title: t.Title, FirstName: t.FirstName, LastName: t.LastName, DisplayName: t.DisplayName()}
}

// TeacherSummary is the nested read representation of a teacher.
type TeacherSummary struct {
	ID          string       `json:"id"`
	Title       TeacherTitle `json:"title"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DisplayName string       `json:"display_name"`
}

// TeacherDetail is a teacher with the classes and assignments that reference it.
type TeacherDetail struct {
	Teacher
	Classes     []TuitionClass      `json:"classes"`
	Assignments []SubjectAssignment `json:"assignments"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

func displayName(title TeacherTitle, first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if title == "" {
		return name
	}
	t := string(title)
	return strings.ToUpper(t[:1]) + t[1:] + ". " + name
}
