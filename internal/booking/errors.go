package booking

import "fmt"

// Rule identifies a booking invariant checked at creation time.
// The values double as machine-readable error codes in API responses.
type Rule string

const (
	RulePastDate            Rule = "past_date"
	RulePerDayDuplicate     Rule = "per_day_duplicate"
	RulePatientTimeConflict Rule = "patient_time_conflict"
	RuleDoctorTimeConflict  Rule = "doctor_time_conflict"
	RuleOutsideHours        Rule = "outside_hours"
	RuleDoctorInactive      Rule = "doctor_inactive"
)

// RuleError reports which booking invariant a request violated. Every
// rule violation is a user-correctable input error, never a system one.
type RuleError struct {
	Rule    Rule
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// PermissionError reports that the acting user may not perform the
// requested appointment action.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// StateError reports that the requested transition is incompatible with
// the appointment's current status.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// NotFoundError reports a missing referenced record.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
