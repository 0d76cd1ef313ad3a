package reminder

import (
	"fmt"
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// FormatPreAppointmentReminder builds the reminder text sent the day before.
func FormatPreAppointmentReminder(patientName string, start time.Time, clinicAddress string) string {
	date := timeops.DateOf(start).Display()
	hour := timeops.TimeOfDayOf(start).String()

	msg := fmt.Sprintf(
		"Hello, %s! This is a reminder of your appointment on %s at %s.",
		patientName, date, hour,
	)
	if clinicAddress != "" {
		msg += fmt.Sprintf("\nAddress: %s.", clinicAddress)
	}
	msg += "\n\nThis is an automated message, please do not reply."
	return msg
}
