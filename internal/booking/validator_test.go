package booking

import (
	"errors"
	"testing"
	"time"

	"clinic-app-server/internal/models"
)

type fakeConflictStore struct {
	perDayDuplicate bool
	patientSlot     bool
	doctorSlot      bool
	err             error
}

func (f *fakeConflictStore) ActivePatientDoctorDateExists(patientID, doctorID, date string) (bool, error) {
	return f.perDayDuplicate, f.err
}

func (f *fakeConflictStore) ActivePatientSlotExists(patientID, date, timeOfDay string) (bool, error) {
	return f.patientSlot, f.err
}

func (f *fakeConflictStore) ActiveDoctorSlotExists(doctorID, date, timeOfDay string) (bool, error) {
	return f.doctorSlot, f.err
}

func fixedNow() time.Time {
	// Tuesday 2025-06-10 10:30
	return time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)
}

func testDoctor() *models.Doctor {
	d := &models.Doctor{
		UserID:         "user-doc",
		Specialization: "Cardiology",
		AvailableFrom:  "09:00",
		AvailableTo:    "17:00",
		IsActive:       true,
	}
	d.ID = "doc-1"
	d.User = models.User{FirstName: "Asha", LastName: "Sharma"}
	return d
}

func newTestValidator(store ConflictStore) *Validator {
	return NewValidator(store, fixedNow)
}

func assertRule(t *testing.T, err error, want Rule) {
	t.Helper()
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleError, got %v", err)
	}
	if ruleErr.Rule != want {
		t.Fatalf("expected rule %q, got %q (%s)", want, ruleErr.Rule, ruleErr.Message)
	}
}

func TestValidateAcceptsOpenSlot(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	if err := v.Validate("patient-1", testDoctor(), "2025-06-11", "10:00"); err != nil {
		t.Fatalf("expected slot to be bookable, got %v", err)
	}
}

func TestValidateRejectsPastDate(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-09", "10:00"), RulePastDate)
}

func TestValidateRejectsEarlierTimeToday(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-10", "10:29"), RulePastDate)
}

func TestValidateAllowsCurrentMinuteToday(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	if err := v.Validate("patient-1", testDoctor(), "2025-06-10", "10:30"); err != nil {
		t.Fatalf("expected the current minute to be bookable, got %v", err)
	}
}

func TestValidateRejectsPerDayDuplicate(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{perDayDuplicate: true})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-11", "10:00"), RulePerDayDuplicate)
}

func TestValidateRejectsPatientSlotConflict(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{patientSlot: true})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-11", "10:00"), RulePatientTimeConflict)
}

func TestValidateRejectsDoctorSlotConflict(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{doctorSlot: true})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-11", "10:00"), RuleDoctorTimeConflict)
}

func TestValidateRejectsOutsideHours(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-11", "17:30"), RuleOutsideHours)
	assertRule(t, v.Validate("patient-1", testDoctor(), "2025-06-11", "08:30"), RuleOutsideHours)
}

func TestValidateAcceptsHourBoundaries(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{})
	if err := v.Validate("patient-1", testDoctor(), "2025-06-11", "09:00"); err != nil {
		t.Fatalf("expected opening boundary to be bookable, got %v", err)
	}
	if err := v.Validate("patient-1", testDoctor(), "2025-06-11", "17:00"); err != nil {
		t.Fatalf("expected closing boundary to be bookable, got %v", err)
	}
}

func TestValidateRejectsInactiveDoctor(t *testing.T) {
	doctor := testDoctor()
	doctor.IsActive = false
	v := newTestValidator(&fakeConflictStore{})
	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "10:00"), RuleDoctorInactive)
}

// The first failing rule wins: a past slot with every conflict present
// still reports past_date, and conflicts outrank working hours.
func TestValidateRuleOrder(t *testing.T) {
	store := &fakeConflictStore{perDayDuplicate: true, patientSlot: true, doctorSlot: true}
	doctor := testDoctor()
	doctor.IsActive = false
	v := newTestValidator(store)

	assertRule(t, v.Validate("patient-1", doctor, "2025-06-09", "10:00"), RulePastDate)
	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "18:00"), RulePerDayDuplicate)

	store.perDayDuplicate = false
	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "18:00"), RulePatientTimeConflict)

	store.patientSlot = false
	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "18:00"), RuleDoctorTimeConflict)

	store.doctorSlot = false
	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "18:00"), RuleOutsideHours)

	assertRule(t, v.Validate("patient-1", doctor, "2025-06-11", "10:00"), RuleDoctorInactive)
}

func TestValidateStoreErrorIsNotARuleError(t *testing.T) {
	v := newTestValidator(&fakeConflictStore{err: errors.New("connection refused")})
	err := v.Validate("patient-1", testDoctor(), "2025-06-11", "10:00")
	if err == nil {
		t.Fatal("expected an error")
	}
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		t.Fatalf("store failures must not surface as rule errors, got %v", err)
	}
}
