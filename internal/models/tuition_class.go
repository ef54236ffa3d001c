package models

import "time"

// ClassMode describes how a class is delivered.
type ClassMode string

const (
	ClassModeGroup    ClassMode = "group"
	ClassModeOneToOne ClassMode = "one_to_one"
	ClassModeOnline   ClassMode = "online"
	ClassModeHome     ClassMode = "home"
)

// FeeType describes how a class is billed.
type FeeType string

const (
	FeeTypePerSession FeeType = "per_session"
	FeeTypeMonthly    FeeType = "monthly"
	FeeTypeTerm       FeeType = "term"
)

// DefaultClassCapacity applies when a class is created without a capacity.
const DefaultClassCapacity = 10

// TuitionClass is a class offered by the center.
type TuitionClass struct {
	ID             string          `db:"id" json:"id"`
	ClassCode      string          `db:"class_code" json:"class_code"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	ClassMode      ClassMode       `db:"class_mode" json:"class_mode"`
	FeeType        FeeType         `db:"fee_type" json:"fee_type"`
	PerSessionFee  float64         `db:"per_session_fee" json:"per_session_fee"`
	MonthlyFee     float64         `db:"monthly_fee" json:"monthly_fee"`
	ClassTeacherID *string         `db:"class_teacher_id" json:"class_teacher_id"`
	ClassTeacher   *TeacherSummary `db:"-" json:"class_teacher,omitempty"`
	Capacity       int             `db:"capacity" json:"capacity"`
	Active         bool            `db:"active" json:"active"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Summary projects the class for nested representations.
func (c TuitionClass) Summary() ClassSummary {
	return ClassSummary{ID: c.ID, ClassCode: c.ClassCode, Name: c.Name}
}

// ClassSummary is the nested read representation of a class.
type ClassSummary struct {
	ID        string `json:"id"`
	ClassCode string `json:"class_code"`
	Name      string `json:"name"`
}

// TuitionClassDetail embeds the students currently placed in the class.
type TuitionClassDetail struct {
	TuitionClass
	Students []Student `json:"students"`
}

// TuitionClassFilter captures filtering options for listing classes.
type TuitionClassFilter struct {
	Search         string
	Active         *bool
	ClassTeacherID string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
