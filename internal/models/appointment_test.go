package models

import (
	"testing"
	"time"
)

func testClock() time.Time {
	return time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)
}

func TestStatusIsActive(t *testing.T) {
	if !StatusScheduled.IsActive() || !StatusCompleted.IsActive() {
		t.Fatal("scheduled and completed must count toward conflicts")
	}
	if StatusCancelled.IsActive() || StatusNoShow.IsActive() {
		t.Fatal("cancelled and no-show must free their slot")
	}
}

func TestIsPast(t *testing.T) {
	now := testClock()
	cases := []struct {
		date, timeOfDay string
		want            bool
	}{
		{"2025-06-09", "23:00", true},
		{"2025-06-10", "10:29", true},
		{"2025-06-10", "10:30", false},
		{"2025-06-10", "10:31", false},
		{"2025-06-11", "00:01", false},
	}
	for _, tc := range cases {
		appt := Appointment{Date: tc.date, Time: tc.timeOfDay}
		if got := appt.IsPast(now); got != tc.want {
			t.Errorf("IsPast(%s %s) = %v, want %v", tc.date, tc.timeOfDay, got, tc.want)
		}
		if appt.IsUpcoming(now) == appt.IsPast(now) {
			t.Errorf("IsUpcoming must be the complement of IsPast for %s %s", tc.date, tc.timeOfDay)
		}
	}
}

func TestIsCancellable(t *testing.T) {
	now := testClock()

	future := Appointment{Date: "2025-06-11", Time: "10:00", Status: StatusScheduled}
	if !future.IsCancellable(now) {
		t.Fatal("a future scheduled appointment must be cancellable")
	}

	past := Appointment{Date: "2025-06-09", Time: "10:00", Status: StatusScheduled}
	if past.IsCancellable(now) {
		t.Fatal("a past appointment must not be cancellable")
	}

	completed := Appointment{Date: "2025-06-11", Time: "10:00", Status: StatusCompleted}
	if completed.IsCancellable(now) {
		t.Fatal("a completed appointment must not be cancellable")
	}
}

func TestSlotKeysForActiveStatus(t *testing.T) {
	appt := Appointment{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      "2025-06-11",
		Time:      "10:00",
		Status:    StatusScheduled,
	}
	doctorSlot, patientSlot, patientDay := appt.SlotKeys()
	if doctorSlot == nil || *doctorSlot != "d1|2025-06-11|10:00" {
		t.Fatalf("unexpected doctor slot key %v", doctorSlot)
	}
	if patientSlot == nil || *patientSlot != "p1|2025-06-11|10:00" {
		t.Fatalf("unexpected patient slot key %v", patientSlot)
	}
	if patientDay == nil || *patientDay != "p1|d1|2025-06-11" {
		t.Fatalf("unexpected patient day key %v", patientDay)
	}
}

func TestSlotKeysClearForInactiveStatus(t *testing.T) {
	appt := Appointment{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      "2025-06-11",
		Time:      "10:00",
		Status:    StatusCancelled,
	}
	appt.ApplySlotKeys()
	if appt.DoctorSlotKey != nil || appt.PatientSlotKey != nil || appt.PatientDayKey != nil {
		t.Fatal("inactive appointments must not hold slot keys")
	}
}

func TestDoctorWorksAtBoundariesInclusive(t *testing.T) {
	doctor := Doctor{AvailableFrom: "09:00", AvailableTo: "17:00"}
	for _, slot := range []string{"09:00", "12:30", "17:00"} {
		if !doctor.WorksAt(slot) {
			t.Errorf("expected %s to be inside working hours", slot)
		}
	}
	for _, slot := range []string{"08:59", "17:01"} {
		if doctor.WorksAt(slot) {
			t.Errorf("expected %s to be outside working hours", slot)
		}
	}
}

func TestDoctorHasValidHours(t *testing.T) {
	if !(&Doctor{AvailableFrom: "09:00", AvailableTo: "17:00"}).HasValidHours() {
		t.Fatal("expected a normal window to be valid")
	}
	if (&Doctor{AvailableFrom: "17:00", AvailableTo: "09:00"}).HasValidHours() {
		t.Fatal("expected an inverted window to be invalid")
	}
	if (&Doctor{AvailableFrom: "09:00", AvailableTo: "09:00"}).HasValidHours() {
		t.Fatal("expected an empty window to be invalid")
	}
}

func TestUserFullName(t *testing.T) {
	u := User{Username: "sita99", FirstName: "Sita", LastName: "Rai"}
	if got := u.FullName(); got != "Sita Rai" {
		t.Fatalf("unexpected full name %q", got)
	}
	u = User{Username: "sita99"}
	if got := u.FullName(); got != "sita99" {
		t.Fatalf("expected username fallback, got %q", got)
	}
}
