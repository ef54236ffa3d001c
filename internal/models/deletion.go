package models

// DeletionState is the state of a delete request for a protected entity.
type DeletionState string

const (
	DeletionRequested   DeletionState = "requested"
	DeletionBlocked     DeletionState = "blocked"
	DeletionReassigning DeletionState = "reassigning"
	DeletionDeleted     DeletionState = "deleted"
)

// Entities that support reassign-then-delete.
const (
	EntityTeacher      = "teacher"
	EntityTuitionClass = "tuition_class"
	EntitySubject      = "subject"
)

// Relations holding protected references.
const (
	RelationClasses     = "classes"
	RelationAssignments = "assignments"
	RelationStudents    = "students"
)

// Dependent is a record that blocks deletion of the entity it references.
type Dependent struct {
	Relation string `db:"relation" json:"relation"`
	ID       string `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Label    string `db:"label" json:"label"`
}

// DeletionCandidate is a same-type record that can receive reassigned dependents.
type DeletionCandidate struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Label string `db:"label" json:"label"`
}

// ReassignmentTargets maps a relation to the record that should receive its dependents.
type ReassignmentTargets map[string]string

// Empty reports whether no target was supplied.
func (t ReassignmentTargets) Empty() bool {
	for _, id := range t {
		if id != "" {
			return false
		}
	}
	return true
}

// DeletionOutcome is the terminal view of a delete request. Blocked outcomes carry the dependents
// and the eligible alternatives; deleted outcomes carry moved counts when a reassignment ran.
type DeletionOutcome struct {
	Entity       string              `json:"entity"`
	EntityID     string              `json:"entity_id"`
	State        DeletionState       `json:"state"`
	Dependents   []Dependent         `json:"dependents,omitempty"`
	Alternatives []DeletionCandidate `json:"alternatives,omitempty"`
	Moved        map[string]int      `json:"moved,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// TeacherReassignment names independent targets for a teacher's classes and assignments.
type TeacherReassignment struct {
	ClassesTo     string
	AssignmentsTo string
}

// Targets converts the request into relation keyed targets.
func (r TeacherReassignment) Targets() ReassignmentTargets {
	targets := ReassignmentTargets{}
	if r.ClassesTo != "" {
		targets[RelationClasses] = r.ClassesTo
	}
	if r.AssignmentsTo != "" {
		targets[RelationAssignments] = r.AssignmentsTo
	}
	return targets
}
