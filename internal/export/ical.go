package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

const productID = "-//tierklinik-dobersberg//cis-slotgrid//EN"

// slotNamespace is used to derive stable event UIDs from slot start times.
var slotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tierklinik-dobersberg/cis-slotgrid"))

// SlotStart returns the absolute start time of slot using the provider's
// timezone offset in hours. gridTime is the time of the grid row the slot
// belongs to. A slot shown earlier than its row wrapped past midnight and
// starts on the following day.
func SlotStart(slot slotgrid.FormattedSlot, offset int, gridTime string) (time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", slot.Date+" "+slot.Time, time.FixedZone("", offset*60*60))
	if err != nil {
		return time.Time{}, err
	}

	if gridTime != "" && slot.Time < gridTime {
		start = start.AddDate(0, 0, 1)
	}

	return start, nil
}

// gridTimes returns the grid time of every table row. Unavailable slots
// always show the grid time; rows without one are left empty.
func gridTimes(cal *slotgrid.Calendar) []string {
	times := make([]string, len(cal.TableFormat.Body))

	for row, slots := range cal.TableFormat.Body {
		for _, slot := range slots {
			if !slot.IsAvail {
				times[row] = slot.Time
				break
			}
		}
	}

	return times
}

// ICal renders every available slot of cal as an event lasting slotLength.
func ICal(cal *slotgrid.Calendar, slotLength time.Duration) (string, error) {
	out := ical.NewCalendar()
	out.SetMethod(ical.MethodPublish)
	out.SetProductId(productID)

	stamp := time.Now()

	rows := gridTimes(cal)

	for _, day := range cal.Dates {
		prev := ""

		for row, slot := range day.Timeslots {
			gridTime := prev
			if row < len(rows) && rows[row] != "" {
				gridTime = rows[row]
			}

			prev = slot.Time

			if !slot.IsAvail {
				continue
			}

			start, err := SlotStart(slot, cal.Offset, gridTime)
			if err != nil {
				return "", fmt.Errorf("slot %s %s: %w", slot.Date, slot.Time, err)
			}

			id := uuid.NewSHA1(slotNamespace, []byte(start.UTC().Format(time.RFC3339))).String()

			event := out.AddEvent(id)
			event.SetDtStampTime(stamp)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(slotLength))
			event.SetSummary(fmt.Sprintf("Available %s %s", slot.CivilianTime, slot.AmPM))
		}
	}

	return out.Serialize(), nil
}
