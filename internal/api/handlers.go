package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/appointment"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/schedule"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

const (
	defaultNextLimit = 3
	maxNextLimit     = 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func availabilityHandler(svc *appointment.Service, schedules *clinic.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := timeops.ParseDisplayDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be in DD/MM/YYYY format")
			return
		}

		slots, err := svc.Availability(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not check availability")
			return
		}

		// Adjacent menu times merge into display ranges; the slot grid step
		// is the consultation length.
		ranges := schedule.GroupConsecutive(slots, schedules.Current().ConsultationDuration())

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			Date:   date.Display(),
			Slots:  toSlotResponses(slots),
			Ranges: toRangeResponses(ranges),
		})
	}
}

func nextSlotsHandler(svc *appointment.Service, schedules *clinic.Holder, clock timeops.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := defaultNextLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			if n > maxNextLimit {
				n = maxNextLimit
			}
			limit = n
		}

		after := clock.Now()
		if rawDate := q.Get("after_date"); rawDate != "" {
			date, err := timeops.ParseDisplayDate(rawDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "after_date must be in DD/MM/YYYY format")
				return
			}
			tod := timeops.TimeOfDay{}
			if rawTime := q.Get("after_time"); rawTime != "" {
				tod, err = timeops.ParseTimeOfDay(rawTime)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_time", "after_time must be in HH:MM format")
					return
				}
			}
			after = timeops.Combine(date, tod, schedules.Current().Location)
		}

		slots, err := svc.NextSlots(r.Context(), after, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not search for slots")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"slots": toSlotResponses(slots),
		})
	}
}

func bookAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := timeops.ParseDisplayDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be in DD/MM/YYYY format")
			return
		}
		tod, err := timeops.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be in HH:MM format")
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookingRequest{
			PatientName:      req.PatientName,
			PatientPhone:     req.PatientPhone,
			PatientBirthDate: req.PatientBirthDate,
			Date:             date,
			Time:             tod,
		})
		if err != nil {
			handleBookError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CancelAppointmentRequest
		if r.Body != nil {
			// Reason is optional; an empty body cancels without one.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		if err := svc.Cancel(r.Context(), id, req.Reason); err != nil {
			handleCancelError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func reloadScheduleHandler(schedules *clinic.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := schedules.Reload(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid_schedule", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	var notBookable *appointment.NotBookableError

	switch {
	case errors.Is(err, appointment.ErrMissingPatient):
		writeError(w, http.StatusBadRequest, "missing_patient", err.Error())
	case errors.As(err, &notBookable):
		// The reason code lets the conversational layer phrase a specific
		// message for the patient.
		writeError(w, http.StatusUnprocessableEntity, string(notBookable.Reason), err.Error())
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, appointment.ErrDateBeingBooked):
		writeError(w, http.StatusConflict, "date_being_booked", "another booking is in progress, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
