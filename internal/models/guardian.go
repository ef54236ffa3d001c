package models

import (
	"sort"
	"time"
)

// Relationship describes how a guardian relates to the student.
type Relationship string

const (
	RelationshipMother   Relationship = "mother"
	RelationshipFather   Relationship = "father"
	RelationshipGuardian Relationship = "guardian"
	RelationshipOther    Relationship = "other"
)

// Guardian is a contact person owned by exactly one student.
type Guardian struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	Name         string       `db:"name" json:"name"`
	Relationship Relationship `db:"relationship" json:"relationship"`
	Phone        *string      `db:"phone" json:"phone,omitempty"`
	WhatsApp     *string      `db:"whatsapp" json:"whatsapp,omitempty"`
	Email        *string      `db:"email" json:"email,omitempty"`
	IsPrimary    bool         `db:"is_primary" json:"is_primary"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// GuardianFilter captures filtering options for listing guardians.
type GuardianFilter struct {
	Search    string
	StudentID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PrimaryFixup describes the flag changes needed so exactly one guardian is primary.
type PrimaryFixup struct {
	PrimaryID string
	Promoted  bool
	Demoted   []string
}

// Changed reports whether applying the fixup would touch any row.
func (f PrimaryFixup) Changed() bool {
	return f.Promoted || len(f.Demoted) > 0
}

// Apply sets IsPrimary on guardians so only PrimaryID is flagged.
func (f PrimaryFixup) Apply(guardians []Guardian) {
	for i := range guardians {
		guardians[i].IsPrimary = guardians[i].ID == f.PrimaryID
	}
}

// ResolvePrimaryGuardian picks the single primary guardian of a set. When none is flagged the
// earliest created guardian is promoted; when several are flagged the earliest flagged one is kept.
// Ties on CreatedAt fall back to ID. An empty set yields a zero fixup.
func ResolvePrimaryGuardian(guardians []Guardian) PrimaryFixup {
	if len(guardians) == 0 {
		return PrimaryFixup{}
	}

	ordered := make([]Guardian, len(guardians))
	copy(ordered, guardians)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var flagged []Guardian
	for _, g := range ordered {
		if g.IsPrimary {
			flagged = append(flagged, g)
		}
	}

	switch len(flagged) {
	case 0:
		return PrimaryFixup{PrimaryID: ordered[0].ID, Promoted: true}
	case 1:
		return PrimaryFixup{PrimaryID: flagged[0].ID}
	default:
		fix := PrimaryFixup{PrimaryID: flagged[0].ID}
		for _, g := range flagged[1:] {
			fix.Demoted = append(fix.Demoted, g.ID)
		}
		return fix
	}
}
