package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bufbuild/connect-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tierklinik-dobersberg/apis/pkg/log"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/calendar"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/datasource"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T, source datasource.Source) *connect.Client[structpb.Struct, structpb.Struct] {
	t.Helper()

	mux := http.NewServeMux()
	path, handler := NewHandler(New(calendar.NewBuilder(source)), connect.WithInterceptors(log.NewLoggingInterceptor()))
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return connect.NewClient[structpb.Struct, structpb.Struct](srv.Client(), srv.URL+BuildCalendarProcedure)
}

func newRequest(t *testing.T, fields map[string]any) *connect.Request[structpb.Struct] {
	t.Helper()

	base := map[string]any{
		"daysToReturn":         2,
		"transportationOption": "SHUTTLE",
		"startDate":            "2018-05-01",
		"deliveryDate":         "2018-04-30T12:00:00Z",
		"make":                 "Honda",
		"model":                "Civic",
		"year":                 2016,
	}

	for key, value := range fields {
		if value == nil {
			delete(base, key)
			continue
		}

		base[key] = value
	}

	msg, err := structpb.NewStruct(base)
	require.NoError(t, err)

	return connect.NewRequest(msg)
}

func Test_BuildCalendar(t *testing.T) {
	var got datasource.Request

	cli := newTestClient(t, datasource.SourceFunc(func(ctx context.Context, req datasource.Request) (*slotgrid.Schedule, error) {
		got = req

		return &slotgrid.Schedule{
			Interval: 60,
			Dates: []slotgrid.DaySchedule{
				{Date: "2018-05-01", Timeslots: []*slotgrid.TimeslotRecord{
					{Time: "08:00", Offset: -5},
					{Time: "09:00", Offset: -5},
				}},
				{Date: "2018-05-02", IsClosed: true},
			},
		}, nil
	}))

	res, err := cli.CallUnary(context.Background(), newRequest(t, nil))
	require.NoError(t, err)

	assert.Equal(t, "2018-05-01", got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "Civic", got.Model)

	result := res.Msg.AsMap()
	assert.Equal(t, -5.0, result["offset"])

	table := result["tableFormat"].(map[string]any)
	assert.Equal(t, []any{"2018-05-01", "2018-05-02"}, table["headers"])

	body := table["body"].([]any)
	require.Len(t, body, 2)

	firstRow := body[0].([]any)
	require.Len(t, firstRow, 2)
	assert.Equal(t, map[string]any{
		"amPM":         "AM",
		"time":         "08:00",
		"civilianTime": "8:00",
		"isAvail":      true,
		"date":         "2018-05-01",
	}, firstRow[0])
	assert.Equal(t, false, firstRow[1].(map[string]any)["isAvail"])
}

func Test_BuildCalendar_Errors(t *testing.T) {
	cases := []struct {
		Name   string
		Fields map[string]any
		Source datasource.SourceFunc
		Code   connect.Code
	}{
		{
			Name:   "missing field",
			Fields: map[string]any{"make": nil},
			Code:   connect.CodeInvalidArgument,
		},
		{
			Name:   "invalid start date",
			Fields: map[string]any{"startDate": "01.05.2018"},
			Code:   connect.CodeInvalidArgument,
		},
		{
			Name: "data source failure",
			Source: func(ctx context.Context, req datasource.Request) (*slotgrid.Schedule, error) {
				return nil, errors.New("connection refused")
			},
			Code: connect.CodeUnavailable,
		},
		{
			Name: "no timeslots",
			Source: func(ctx context.Context, req datasource.Request) (*slotgrid.Schedule, error) {
				return &slotgrid.Schedule{Interval: 30, Dates: []slotgrid.DaySchedule{{Date: "2018-05-01", IsClosed: true}}}, nil
			},
			Code: connect.CodeFailedPrecondition,
		},
	}

	for _, c := range cases {
		source := c.Source
		if source == nil {
			source = func(ctx context.Context, req datasource.Request) (*slotgrid.Schedule, error) {
				t.Errorf("%s: data source must not be called", c.Name)
				return nil, nil
			}
		}

		cli := newTestClient(t, source)

		_, err := cli.CallUnary(context.Background(), newRequest(t, c.Fields))
		require.Error(t, err, c.Name)
		assert.Equal(t, c.Code, connect.CodeOf(err), c.Name)
	}
}
