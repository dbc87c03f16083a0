package slotgrid

import "time"

type TimeRange struct {
	Earliest time.Time
	Latest   time.Time
}

// FindTimeRange returns the earliest and the latest time-of-day reported
// by any day. Closed days are considered as well as long as they carry
// records. ok is false if no day reports a single record.
func FindTimeRange(days []DaySchedule) (tr TimeRange, ok bool, err error) {
	for _, day := range days {
		if day.Timeslots == nil {
			continue
		}

		for _, rec := range day.Timeslots {
			if rec == nil {
				continue
			}

			t, err := ParseClock(rec.Time)
			if err != nil {
				return TimeRange{}, false, err
			}

			if !ok {
				tr = TimeRange{Earliest: t, Latest: t}
				ok = true

				continue
			}

			if t.Before(tr.Earliest) {
				tr.Earliest = t
			}

			if t.After(tr.Latest) {
				tr.Latest = t
			}
		}
	}

	return tr, ok, nil
}
