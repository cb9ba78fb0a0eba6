package events

import (
	"github.com/sirupsen/logrus"
)

// AppointmentHandler consumes a committed appointment event.
type AppointmentHandler func(AppointmentEvent) error

// DoctorHandler consumes a committed doctor event.
type DoctorHandler func(DoctorEvent) error

// Dispatcher fans committed domain events out to registered handlers.
// Handlers run synchronously in registration order; a failing handler is
// logged and never fails the publishing operation, and never stops the
// remaining handlers.
type Dispatcher struct {
	logger              *logrus.Logger
	appointmentHandlers []AppointmentHandler
	doctorHandlers      []DoctorHandler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// OnAppointment registers a handler for appointment events.
func (d *Dispatcher) OnAppointment(h AppointmentHandler) {
	d.appointmentHandlers = append(d.appointmentHandlers, h)
}

// OnDoctor registers a handler for doctor events.
func (d *Dispatcher) OnDoctor(h DoctorHandler) {
	d.doctorHandlers = append(d.doctorHandlers, h)
}

// PublishAppointment delivers an appointment event to every handler.
func (d *Dispatcher) PublishAppointment(ev AppointmentEvent) {
	for _, h := range d.appointmentHandlers {
		if err := h(ev); err != nil {
			d.logger.WithFields(logrus.Fields{
				"event":         ev.Type,
				"appointmentId": ev.AppointmentID,
				"error":         err,
			}).Warn("appointment event handler failed")
		}
	}
}

// PublishDoctor delivers a doctor event to every handler.
func (d *Dispatcher) PublishDoctor(ev DoctorEvent) {
	for _, h := range d.doctorHandlers {
		if err := h(ev); err != nil {
			d.logger.WithFields(logrus.Fields{
				"event":    ev.Type,
				"doctorId": ev.DoctorID,
				"error":    err,
			}).Warn("doctor event handler failed")
		}
	}
}
