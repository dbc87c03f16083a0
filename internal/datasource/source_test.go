package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

var testRequest = Request{
	DaysToReturn:         2,
	TransportationOption: "SHUTTLE",
	StartDate:            time.Date(2018, time.May, 1, 15, 30, 0, 0, time.UTC),
	Year:                 2016,
	Make:                 "Honda",
	Model:                "Civic",
}

const testPayload = `{
	"interval": 60,
	"provider": {"name": "Dealer"},
	"transportationOptions": ["SHUTTLE"],
	"dates": [
		{"date": "2018-05-01", "isClosed": false, "timeslots": [{"time": "08:00", "offset": -5}, null]},
		{"date": "2018-05-02", "isClosed": true, "timeslots": null}
	]
}`

func Test_Request_Query(t *testing.T) {
	q := testRequest.Query()

	assert.Equal(t, "2", q.Get("daysToReturn"))
	assert.Equal(t, "SHUTTLE", q.Get("transportationOption"))
	assert.Equal(t, "2018-05-01", q.Get("startDate"))
	assert.Equal(t, "2016", q.Get("year"))
	assert.Equal(t, "Honda", q.Get("make"))
	assert.Equal(t, "Civic", q.Get("model"))
}

func Test_HTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/service/timeslots", r.URL.Path)
		assert.Equal(t, testRequest.Query(), r.URL.Query())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testPayload))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/api/", "", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	schedule, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, 60, schedule.Interval)
	assert.JSONEq(t, `{"name": "Dealer"}`, string(schedule.Provider))
	require.Len(t, schedule.Dates, 2)

	assert.Equal(t, []*slotgrid.TimeslotRecord{{Time: "08:00", Offset: -5}, nil}, schedule.Dates[0].Timeslots)
	assert.True(t, schedule.Dates[1].IsClosed)
	assert.Nil(t, schedule.Dates[1].Timeslots)
}

func Test_HTTPSource_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("make") == "broken" {
			_, _ = w.Write([]byte(`{"interval": "sixty"}`))
			return
		}

		http.Error(w, "dealer not found", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, DefaultPath, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), testRequest)
	assert.ErrorIs(t, err, slotgrid.ErrDataSource)
	assert.ErrorContains(t, err, "404")

	broken := testRequest
	broken.Make = "broken"

	_, err = src.Fetch(context.Background(), broken)
	assert.ErrorIs(t, err, slotgrid.ErrDataSource)

	// nothing listens here anymore
	srv.Close()

	_, err = src.Fetch(context.Background(), testRequest)
	assert.ErrorIs(t, err, slotgrid.ErrDataSource)
}

func Test_HTTPSource_RateLimitCancelled(t *testing.T) {
	src, err := NewHTTPSource("http://127.0.0.1:1", "", WithRateLimit(0.001, 1))
	require.NoError(t, err)

	// consume the only token
	src.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Fetch(ctx, testRequest)
	assert.ErrorIs(t, err, slotgrid.ErrDataSource)
}

func Test_NewHTTPSource_InvalidURL(t *testing.T) {
	_, err := NewHTTPSource("not a url", "")
	assert.Error(t, err)
}

func countingSource(calls *int32) Source {
	return SourceFunc(func(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
		atomic.AddInt32(calls, 1)

		var s slotgrid.Schedule
		if err := json.Unmarshal([]byte(testPayload), &s); err != nil {
			return nil, err
		}

		return &s, nil
	})
}

func Test_CachedSource(t *testing.T) {
	var calls int32

	src := NewCachedSource(countingSource(&calls), time.Minute)

	first, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)

	// same day, different time-of-day
	sameDay := testRequest
	sameDay.StartDate = time.Date(2018, time.May, 1, 8, 0, 0, 0, time.UTC)

	second, err := src.Fetch(context.Background(), sameDay)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	other := testRequest
	other.DaysToReturn = 5

	_, err = src.Fetch(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type fakeRedis struct {
	values map[string]string
	getErr error
	sets   int
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}

	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.sets++
	f.values[key] = string(value.([]byte))

	return redis.NewStatusResult("OK", nil)
}

func Test_RedisSource(t *testing.T) {
	var calls int32

	rdb := &fakeRedis{values: make(map[string]string)}
	src := NewRedisSource(rdb, time.Minute, countingSource(&calls))

	first, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 1, rdb.sets)

	second, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Dates, second.Dates)
	assert.JSONEq(t, string(first.Provider), string(second.Provider))
}

func Test_RedisSource_Unavailable(t *testing.T) {
	var calls int32

	rdb := &fakeRedis{values: make(map[string]string), getErr: errors.New("connection refused")}
	src := NewRedisSource(rdb, time.Minute, countingSource(&calls))

	schedule, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 60, schedule.Interval)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func Test_RedisSource_Malformed(t *testing.T) {
	var calls int32

	rdb := &fakeRedis{values: map[string]string{
		"slotgrid:schedule:" + testRequest.Key(): "{not json",
	}}
	src := NewRedisSource(rdb, time.Minute, countingSource(&calls))

	_, err := src.Fetch(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func Test_ScheduleDocument(t *testing.T) {
	var s slotgrid.Schedule
	require.NoError(t, json.Unmarshal([]byte(testPayload), &s))

	doc := newScheduleDocument(testRequest.Key(), &s)
	assert.Equal(t, testRequest.Key(), doc.Key)

	back := doc.toSchedule()
	assert.Equal(t, s.Interval, back.Interval)
	assert.Equal(t, s.Dates, back.Dates)

	// closed days without records must stay distinguishable from days
	// with an empty record list
	assert.Nil(t, back.Dates[1].Timeslots)
}
