package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// Request holds the parameters sent to the timeslot provider.
type Request struct {
	DaysToReturn         int
	TransportationOption string
	StartDate            time.Time
	Year                 int
	Make                 string
	Model                string
}

// Query returns the request as URL query parameters.
func (r Request) Query() url.Values {
	q := url.Values{}

	q.Set("daysToReturn", strconv.Itoa(r.DaysToReturn))
	q.Set("transportationOption", r.TransportationOption)
	q.Set("startDate", r.StartDate.Format("2006-01-02"))
	q.Set("year", strconv.Itoa(r.Year))
	q.Set("make", r.Make)
	q.Set("model", r.Model)

	return q
}

// Key returns a stable identifier for the request. Requests with the same
// key yield the same schedule snapshot.
func (r Request) Key() string {
	return strings.Join([]string{
		r.StartDate.Format("2006-01-02"),
		strconv.Itoa(r.DaysToReturn),
		r.TransportationOption,
		strconv.Itoa(r.Year),
		strings.ToLower(r.Make),
		strings.ToLower(r.Model),
	}, "|")
}

func (r Request) String() string {
	return r.Key()
}

// Source fetches raw schedule snapshots.
type Source interface {
	Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error)
}

type SourceFunc func(ctx context.Context, req Request) (*slotgrid.Schedule, error)

func (fn SourceFunc) Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
	return fn(ctx, req)
}

// sourceError wraps err with slotgrid.ErrDataSource. err may be nil.
func sourceError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	if err == nil {
		return fmt.Errorf("%w: %s", slotgrid.ErrDataSource, msg)
	}

	return fmt.Errorf("%w: %s: %w", slotgrid.ErrDataSource, msg, err)
}
