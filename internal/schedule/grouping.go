package schedule

import "time"

// SlotRange is a contiguous run of slot start times, for display as
// "08:00–08:10" instead of one line per slot. A single slot has Start == End.
type SlotRange struct {
	Start time.Time
	End   time.Time
}

// GroupConsecutive merges a chronologically sorted slot list into display
// ranges. Two slots join the same range when they are exactly one step apart;
// the step is a parameter because it depends on the clinic's slot grid.
func GroupConsecutive(slots []time.Time, step time.Duration) []SlotRange {
	if len(slots) == 0 {
		return nil
	}

	ranges := []SlotRange{{Start: slots[0], End: slots[0]}}
	for _, slot := range slots[1:] {
		last := &ranges[len(ranges)-1]
		if slot.Equal(last.End.Add(step)) {
			last.End = slot
			continue
		}
		ranges = append(ranges, SlotRange{Start: slot, End: slot})
	}
	return ranges
}
