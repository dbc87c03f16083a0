package slotgrid

import (
	"fmt"
	"time"
)

// Timeslots builds the slot grid for days and resolves the availability of
// every day against it. The returned days keep the input order.
func Timeslots(days []DaySchedule, interval int, deliveryDate time.Time) ([]Day, Grid, error) {
	if interval <= 0 {
		return nil, Grid{}, fmt.Errorf("%w (got %d)", ErrInvalidInterval, interval)
	}

	tr, ok, err := FindTimeRange(days)
	if err != nil {
		return nil, Grid{}, err
	}

	grid := Grid{Interval: interval, Master: []string{}, Offset: []string{}}
	if ok {
		grid, err = BuildGrid(tr, interval)
		if err != nil {
			return nil, Grid{}, err
		}
	}

	result := make([]Day, 0, len(days))
	for _, day := range days {
		slots, err := ResolveDay(grid, day, deliveryDate)
		if err != nil {
			return nil, Grid{}, err
		}

		result = append(result, Day{
			Date:      day.Date,
			Timeslots: slots,
		})
	}

	return result, grid, nil
}

// Transpose turns the per-day slot lists into rows of slots. Every day must
// have exactly slotCount slots.
func Transpose(days []Day, slotCount int) (Table, error) {
	headers := make([]string, len(days))
	for col, day := range days {
		if len(day.Timeslots) != slotCount {
			return Table{}, fmt.Errorf("%w: day %s has %d slots, expected %d", ErrSlotCount, day.Date, len(day.Timeslots), slotCount)
		}

		headers[col] = day.Date
	}

	body := make([][]FormattedSlot, slotCount)
	for row := range body {
		body[row] = make([]FormattedSlot, len(days))

		for col, day := range days {
			body[row][col] = day.Timeslots[row]
		}
	}

	return Table{
		Body:    body,
		Headers: headers,
	}, nil
}

// Offset returns the timezone offset of the provider. It is taken from the
// first record of the first day that reports a non-empty list of records.
// Later days are not considered, even if all entries of that day are nil.
func Offset(days []DaySchedule) (int, error) {
	for _, day := range days {
		if len(day.Timeslots) == 0 {
			continue
		}

		for _, rec := range day.Timeslots {
			if rec != nil {
				return rec.Offset, nil
			}
		}

		return 0, fmt.Errorf("%w: day %s has no usable record", ErrNoTimeslots, day.Date)
	}

	return 0, ErrNoTimeslots
}

// Assemble converts a raw schedule snapshot into a calendar.
func Assemble(schedule Schedule, deliveryDate time.Time) (*Calendar, error) {
	days, grid, err := Timeslots(schedule.Dates, schedule.Interval, deliveryDate)
	if err != nil {
		return nil, err
	}

	offset, err := Offset(schedule.Dates)
	if err != nil {
		return nil, err
	}

	table, err := Transpose(days, grid.Len())
	if err != nil {
		return nil, err
	}

	return &Calendar{
		Offset:                offset,
		Provider:              schedule.Provider,
		TransportationOptions: schedule.TransportationOptions,
		Dates:                 days,
		TableFormat:           table,
	}, nil
}
