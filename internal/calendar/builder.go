package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/datasource"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tierklinik-dobersberg/cis-slotgrid/internal/calendar"

// Builder fetches a schedule snapshot and turns it into a calendar.
type Builder struct {
	source datasource.Source
	tracer trace.Tracer
}

func NewBuilder(source datasource.Source) *Builder {
	return &Builder{
		source: source,
		tracer: otel.Tracer(tracerName),
	}
}

// Result is delivered by BuildAsync. Exactly one of Calendar and Err is set.
type Result struct {
	Calendar *slotgrid.Calendar
	Err      error
}

// Build validates opts, fetches the schedule and assembles the calendar.
func (b *Builder) Build(ctx context.Context, opts Options) (cal *slotgrid.Calendar, err error) {
	ctx, span := b.tracer.Start(ctx, "calendar.Build", trace.WithAttributes(
		attribute.Int("days_to_return", opts.DaysToReturn),
		attribute.String("transportation_option", opts.TransportationOption),
		attribute.String("start_date", opts.StartDate.Format("2006-01-02")),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	schedule, err := b.source.Fetch(ctx, opts.Request())
	if err != nil {
		if !errors.Is(err, slotgrid.ErrDataSource) {
			err = fmt.Errorf("%w: %w", slotgrid.ErrDataSource, err)
		}

		return nil, err
	}

	if schedule == nil {
		return nil, fmt.Errorf("%w: empty response", slotgrid.ErrDataSource)
	}

	span.SetAttributes(
		attribute.Int("interval", schedule.Interval),
		attribute.Int("days", len(schedule.Dates)),
	)

	return slotgrid.Assemble(*schedule, opts.DeliveryDate)
}

// BuildAsync runs Build in the background. The returned channel receives
// exactly one result, successful or not, and is closed afterwards.
func (b *Builder) BuildAsync(ctx context.Context, opts Options) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)

		cal, err := b.Build(ctx, opts)
		ch <- Result{Calendar: cal, Err: err}
	}()

	return ch
}
