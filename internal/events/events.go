// Package events carries domain events between the components that mutate
// records and the side effects that follow (SMS, search-index sync, the
// optional Kafka stream). Mutating code publishes explicitly after commit;
// nothing here hooks into the storage layer.
package events

// Appointment event types.
const (
	AppointmentBooked    = "booked"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
	AppointmentNoShow    = "no_show"
)

// Doctor event types.
const (
	DoctorUpserted = "upserted"
	DoctorDeleted  = "deleted"
)

// AppointmentEvent describes a committed appointment mutation. The fields
// are denormalized so handlers can act without further store reads.
type AppointmentEvent struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointmentId"`
	PatientID     string `json:"patientId"`
	PatientName   string `json:"patientName"`
	PatientPhone  string `json:"patientPhone"`
	DoctorID      string `json:"doctorId"`
	DoctorName    string `json:"doctorName"`
	DoctorPhone   string `json:"doctorPhone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// DoctorEvent describes a committed doctor-profile mutation, consumed by
// the search-index sync handler.
type DoctorEvent struct {
	Type     string `json:"type"`
	DoctorID string `json:"doctorId"`
}
