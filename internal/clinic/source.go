package clinic

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

// scheduleFile is the on-disk JSON shape. Times are HH:MM, closed dates are
// the compact persisted form, min_advance_notice is a Go duration string.
type scheduleFile struct {
	Timezone            string              `json:"timezone"`
	ConsultationMinutes int                 `json:"consultation_minutes"`
	MinAdvanceNotice    string              `json:"min_advance_notice"`
	WeeklyHours         map[string][]string `json:"weekly_hours"`
	ClosedDates         []string            `json:"closed_dates"`
}

// FileSource loads the clinic schedule from a JSON file. Load may be called
// again at any time to pick up edits without a restart.
type FileSource struct {
	Path string
}

func (src FileSource) Load() (*Schedule, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}

	var f scheduleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse schedule file: %w", err)
	}

	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, f.Timezone)
	}

	sched := &Schedule{
		WeeklyHours:         make(map[time.Weekday][]timeops.TimeOfDay, len(f.WeeklyHours)),
		ClosedDates:         make(map[timeops.Date]struct{}, len(f.ClosedDates)),
		ConsultationMinutes: f.ConsultationMinutes,
		Location:            loc,
	}

	if f.MinAdvanceNotice != "" {
		notice, err := time.ParseDuration(f.MinAdvanceNotice)
		if err != nil {
			return nil, fmt.Errorf("parse min_advance_notice: %w", err)
		}
		sched.MinAdvanceNotice = notice
	}

	for name, entries := range f.WeeklyHours {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		hours := make([]timeops.TimeOfDay, 0, len(entries))
		for _, entry := range entries {
			tod, err := timeops.ParseTimeOfDay(entry)
			if err != nil {
				return nil, fmt.Errorf("weekly_hours[%s]: %w", name, err)
			}
			hours = append(hours, tod)
		}
		sched.WeeklyHours[day] = hours
	}

	for _, entry := range f.ClosedDates {
		d, err := timeops.ParseCompactDate(entry)
		if err != nil {
			return nil, fmt.Errorf("closed_dates: %w", err)
		}
		sched.ClosedDates[d] = struct{}{}
	}

	sched.normalize()
	if err := sched.validate(); err != nil {
		return nil, err
	}
	return sched, nil
}

// Source abstracts where the schedule comes from.
type Source interface {
	Load() (*Schedule, error)
}

// Holder keeps the current schedule and supports swapping it on demand.
// Readers always see a complete schedule, never a half-reloaded one.
type Holder struct {
	source Source

	mu      sync.RWMutex
	current *Schedule
}

// NewHolder performs the initial load; an invalid schedule at startup is
// fatal to the caller.
func NewHolder(source Source) (*Holder, error) {
	sched, err := source.Load()
	if err != nil {
		return nil, err
	}
	return &Holder{source: source, current: sched}, nil
}

// Current returns the schedule in effect.
func (h *Holder) Current() *Schedule {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-reads the source. On error the previous schedule stays in effect.
func (h *Holder) Reload() error {
	sched, err := h.source.Load()
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.current = sched
	h.mu.Unlock()
	return nil
}
