package slotgrid

import "encoding/json"

// TimeslotRecord is a single slot as reported by the provider.
type TimeslotRecord struct {
	// Time is the time-of-day in HH:MM format.
	Time string `json:"time"`

	// Offset is the provider's timezone offset in hours from UTC.
	Offset int `json:"offset"`
}

// DaySchedule holds the raw availability of a provider for a single day.
// Timeslots is nil if the provider did not report any slots. Individual
// entries may be nil as well.
type DaySchedule struct {
	Date      string            `json:"date"`
	IsClosed  bool              `json:"isClosed"`
	Timeslots []*TimeslotRecord `json:"timeslots"`
}

// Schedule is the snapshot returned by a data source.
type Schedule struct {
	Interval              int             `json:"interval"`
	Provider              json.RawMessage `json:"provider"`
	TransportationOptions json.RawMessage `json:"transportationOptions"`
	Dates                 []DaySchedule   `json:"dates"`
}

// FormattedSlot is a single, display ready slot.
type FormattedSlot struct {
	AmPM         string `json:"amPM"`
	Time         string `json:"time"`
	CivilianTime string `json:"civilianTime"`
	IsAvail      bool   `json:"isAvail"`
	Date         string `json:"date"`
}

type Day struct {
	Date      string          `json:"date"`
	Timeslots []FormattedSlot `json:"timeslots"`
}

// Table is the transposed view of all days. Body[row][col] is the slot at
// grid position row on the day Headers[col].
type Table struct {
	Body    [][]FormattedSlot `json:"body"`
	Headers []string          `json:"headers"`
}

// Calendar is the final result handed to callers.
type Calendar struct {
	Offset                int             `json:"offset"`
	Provider              json.RawMessage `json:"provider"`
	TransportationOptions json.RawMessage `json:"transportationOptions"`
	Dates                 []Day           `json:"dates"`
	TableFormat           Table           `json:"tableFormat"`
}
