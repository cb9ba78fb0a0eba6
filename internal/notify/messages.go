package notify

import (
	"fmt"
	"strings"
	"time"

	"clinic-app-server/internal/models"
)

// clock renders a "15:04" slot time as "03:04 PM" for message bodies.
// Unparseable input is passed through untouched.
func clock(t string) string {
	parsed, err := time.Parse(models.TimeLayout, t)
	if err != nil {
		return t
	}
	return parsed.Format("03:04 PM")
}

// ConfirmationMessage is sent to the patient right after booking.
func ConfirmationMessage(patientFirstName, doctorName, date, timeOfDay string) string {
	return fmt.Sprintf("Dear %s, your appointment with Dr. %s is confirmed for %s at %s.",
		patientFirstName, doctorName, date, clock(timeOfDay))
}

// CancellationMessage is sent to the doctor when a patient cancels.
func CancellationMessage(patientName, date, timeOfDay string) string {
	return fmt.Sprintf("%s has cancelled their appointment for %s at %s. The slot is open again.",
		patientName, date, clock(timeOfDay))
}

// MorningReminderMessage is the morning-of reminder for the patient.
func MorningReminderMessage(doctorFirstName, timeOfDay string) string {
	return fmt.Sprintf("Reminder: You have an appointment with Dr. %s today at %s.",
		doctorFirstName, clock(timeOfDay))
}

// ThirtyMinReminderMessage is the short-notice reminder for the patient.
func ThirtyMinReminderMessage(doctorFirstName string) string {
	return fmt.Sprintf("Alert: Your appointment with Dr. %s is in about 30 minutes.", doctorFirstName)
}

// NoShowAlertMessage tells a doctor about a single missed appointment.
func NoShowAlertMessage(patientName, date, timeOfDay string) string {
	return fmt.Sprintf("No-show alert: %s missed their appointment on %s at %s.",
		patientName, date, clock(timeOfDay))
}

// NoShowSummaryMessage tells a doctor about several missed appointments
// at once, listing at most three patient names.
func NoShowSummaryMessage(patientNames []string) string {
	listed := patientNames
	suffix := ""
	if len(listed) > 3 {
		listed = listed[:3]
		suffix = "..."
	}
	return fmt.Sprintf("No-show alert: %d patients missed appointments today: %s%s",
		len(patientNames), strings.Join(listed, ", "), suffix)
}
