package export

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// unavailable is printed for slots that cannot be booked.
const unavailable = "-"

// WriteTable prints the transposed calendar with one column per day.
func WriteTable(w io.Writer, cal *slotgrid.Calendar) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeader(cal.TableFormat.Headers)

	for _, row := range cal.TableFormat.Body {
		cells := make([]string, len(row))

		for col, slot := range row {
			if slot.IsAvail {
				cells[col] = slot.CivilianTime + " " + slot.AmPM
			} else {
				cells[col] = unavailable
			}
		}

		table.Append(cells)
	}

	table.Render()
}
