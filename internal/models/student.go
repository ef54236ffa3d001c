package models

import "time"

// Gender values accepted for students.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Student is an enrolled learner.
type Student struct {
	ID             string        `db:"id" json:"id"`
	RegNo          string        `db:"reg_no" json:"reg_no"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	DOB            *Date         `db:"dob" json:"dob"`
	JoinedDate     Date          `db:"joined_date" json:"joined_date"`
	NIC            *string       `db:"nic" json:"nic,omitempty"`
	School         *string       `db:"school" json:"school,omitempty"`
	Gender         *Gender       `db:"gender" json:"gender,omitempty"`
	CurrentClassID *string       `db:"current_class_id" json:"current_class_id"`
	CurrentClass   *ClassSummary `db:"-" json:"current_class,omitempty"`
	Address        string        `db:"address" json:"address"`
	Phone          *string       `db:"phone" json:"phone,omitempty"`
	WhatsApp       *string       `db:"whatsapp" json:"whatsapp,omitempty"`
	Email          *string       `db:"email" json:"email,omitempty"`
	IsActive       bool          `db:"is_active" json:"is_active"`
	Guardians      []Guardian    `db:"-" json:"guardians,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Summary projects the student for nested representations.
func (s Student) Summary() StudentSummary {
	return StudentSummary{ID: s.ID, RegNo: s.RegNo, FirstName: s.FirstName, LastName: s.LastName}
}

// StudentSummary is the nested read representation of a student.
type StudentSummary struct {
	ID        string `json:"id"`
	RegNo     string `json:"reg_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// StudentFilter captures filtering options for listing students.
type StudentFilter struct {
	Search         string
	Active         *bool
	CurrentClassID string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
