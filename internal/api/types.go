package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/schedule"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

type BookAppointmentRequest struct {
	PatientName      string `json:"patient_name"`
	PatientPhone     string `json:"patient_phone"`
	PatientBirthDate string `json:"patient_birth_date"`
	Date             string `json:"date"` // DD/MM/YYYY
	Time             string `json:"time"` // HH:MM
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientName     string     `json:"patient_name"`
	PatientPhone    string     `json:"patient_phone"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	ReminderSentAt  *time.Time `json:"reminder_sent_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelledReason *string    `json:"cancelled_reason,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientName:     a.PatientName,
		PatientPhone:    a.PatientPhone,
		Date:            a.Date.Display(),
		Time:            a.Time.String(),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		ReminderSentAt:  a.ReminderSentAt,
		CancelledAt:     a.CancelledAt,
		CancelledReason: a.CancelledReason,
	}
}

type SlotResponse struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type SlotRangeResponse struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type AvailabilityResponse struct {
	Date   string              `json:"date"`
	Slots  []SlotResponse      `json:"slots"`
	Ranges []SlotRangeResponse `json:"ranges"`
}

func toSlotResponses(slots []time.Time) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Date: timeops.DateOf(s).Display(),
			Time: timeops.TimeOfDayOf(s).String(),
		})
	}
	return out
}

func toRangeResponses(ranges []schedule.SlotRange) []SlotRangeResponse {
	out := make([]SlotRangeResponse, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, SlotRangeResponse{
			Date:  timeops.DateOf(r.Start).Display(),
			Start: timeops.TimeOfDayOf(r.Start).String(),
			End:   timeops.TimeOfDayOf(r.End).String(),
		})
	}
	return out
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
