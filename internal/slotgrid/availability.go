package slotgrid

import (
	"fmt"
	"time"
)

// CloseDay marks every slot of the grid as unavailable.
func CloseDay(grid Grid, date string) ([]FormattedSlot, error) {
	slots := make([]FormattedSlot, 0, grid.Len())

	for _, clock := range grid.Master {
		slot, err := FormatSlot(clock, false, date)
		if err != nil {
			return nil, err
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// ResolveDay returns one slot per grid position for day. Slots of open days
// are available if the provider reports them and they start after
// deliveryDate.
//
// Records are matched by time instead of by position. A record belongs to
// grid position i if its time equals grid.Master[i] or, failing that,
// grid.Offset[i].
//
// NOTE: records matching the offset grid are available even if they start
// before deliveryDate. Product still has to confirm whether that is
// intended, keep it as is until then.
func ResolveDay(grid Grid, day DaySchedule, deliveryDate time.Time) ([]FormattedSlot, error) {
	if day.IsClosed || day.Timeslots == nil {
		return CloseDay(grid, day.Date)
	}

	date, err := parseDate(day.Date)
	if err != nil {
		return nil, err
	}

	byTime := make(map[string]*TimeslotRecord, len(day.Timeslots))
	for _, rec := range day.Timeslots {
		if rec == nil {
			continue
		}

		key, err := normalizeClock(rec.Time)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", day.Date, err)
		}

		// first record wins
		if _, ok := byTime[key]; !ok {
			byTime[key] = rec
		}
	}

	inMaster, inOffset := grid.sets()

	slots := make([]FormattedSlot, 0, grid.Len())
	for idx, clock := range grid.Master {
		key := clock
		rec, ok := byTime[key]
		if !ok && idx < len(grid.Offset) {
			key = grid.Offset[idx]
			rec, ok = byTime[key]
		}

		if !ok {
			slot, err := FormatSlot(clock, false, day.Date)
			if err != nil {
				return nil, err
			}

			slots = append(slots, slot)

			continue
		}

		gridTime, err := ParseClock(clock)
		if err != nil {
			return nil, err
		}

		startsAt := time.Date(date.Year(), date.Month(), date.Day(), gridTime.Hour(), gridTime.Minute(), 0, 0, time.UTC).
			Add(-time.Duration(rec.Offset) * time.Hour)

		_, isAvailMaster := inMaster[key]
		_, isAvailOffset := inOffset[key]

		isAvail := (isAvailMaster && startsAt.After(deliveryDate)) || isAvailOffset

		display := clock
		if isAvail {
			display = key
		}

		slot, err := FormatSlot(display, isAvail, day.Date)
		if err != nil {
			return nil, err
		}

		slots = append(slots, slot)
	}

	return slots, nil
}
