package slotgrid

import (
	"fmt"
	"time"
)

// Grid is the canonical list of slot times shared by all days.
//
// Offset holds the same slots shifted by half the interval. Some providers
// open at 7:00 on weekdays but at 7:30 on weekends; their slots never match
// Master but do match Offset.
type Grid struct {
	Interval int
	Master   []string
	Offset   []string
}

func (g Grid) Len() int { return len(g.Master) }

// BuildGrid creates the slot grid from tr.Earliest up to and including
// tr.Latest. If the interval does not evenly divide the range the last
// slot is the last one that is not after tr.Latest.
func BuildGrid(tr TimeRange, interval int) (Grid, error) {
	if interval <= 0 {
		return Grid{}, fmt.Errorf("%w (got %d)", ErrInvalidInterval, interval)
	}

	step := time.Duration(interval) * time.Minute
	half := step / 2

	grid := Grid{
		Interval: interval,
		Master:   []string{},
		Offset:   []string{},
	}

	for cursor := tr.Earliest; !cursor.After(tr.Latest); cursor = cursor.Add(step) {
		grid.Master = append(grid.Master, cursor.Format(clockLayout))
		grid.Offset = append(grid.Offset, cursor.Add(half).Format(clockLayout))
	}

	return grid, nil
}

func (g Grid) sets() (master, offset map[string]struct{}) {
	master = make(map[string]struct{}, len(g.Master))
	for _, s := range g.Master {
		master[s] = struct{}{}
	}

	offset = make(map[string]struct{}, len(g.Offset))
	for _, s := range g.Offset {
		offset[s] = struct{}{}
	}

	return master, offset
}
