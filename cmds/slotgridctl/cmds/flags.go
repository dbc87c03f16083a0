package cmds

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/datasource"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// requestFlags are shared by all commands that address a provider schedule.
type requestFlags struct {
	days                 int
	transportationOption string
	startDate            string
	year                 int
	make                 string
	model                string
}

func (rf *requestFlags) register(f *pflag.FlagSet) {
	f.IntVar(&rf.days, "days", 14, "Number of days to return")
	f.StringVar(&rf.transportationOption, "transport", "", "The transportation option")
	f.StringVar(&rf.startDate, "start", time.Now().Format("2006-01-02"), "The first day in YYYY-MM-DD")
	f.IntVar(&rf.year, "year", 0, "The vehicle year")
	f.StringVar(&rf.make, "make", "", "The vehicle make")
	f.StringVar(&rf.model, "model", "", "The vehicle model")
}

func (rf *requestFlags) request() (datasource.Request, error) {
	start, err := time.Parse("2006-01-02", rf.startDate)
	if err != nil {
		return datasource.Request{}, fmt.Errorf("invalid value for --start: %w", err)
	}

	return datasource.Request{
		DaysToReturn:         rf.days,
		TransportationOption: rf.transportationOption,
		StartDate:            start,
		Year:                 rf.year,
		Make:                 rf.make,
		Model:                rf.model,
	}, nil
}

// slotInterval derives the grid interval from two neighbouring rows.
// Available slots may display the shifted offset time, so only rows where
// both slots are unavailable, and thus show the grid time, are used. It
// returns 0 if there is no such pair.
func slotInterval(cal *slotgrid.Calendar) time.Duration {
	body := cal.TableFormat.Body

	for row := 0; row+1 < len(body); row++ {
		for col := range body[row] {
			if col >= len(body[row+1]) {
				break
			}

			first, second := body[row][col], body[row+1][col]
			if first.IsAvail || second.IsAvail {
				continue
			}

			start, err := slotgrid.ParseClock(first.Time)
			if err != nil {
				return 0
			}

			end, err := slotgrid.ParseClock(second.Time)
			if err != nil {
				return 0
			}

			d := end.Sub(start)
			if d <= 0 {
				// the grid wrapped at midnight
				d += 24 * time.Hour
			}

			return d
		}
	}

	return 0
}
