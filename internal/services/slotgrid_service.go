package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/tierklinik-dobersberg/apis/pkg/log"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/calendar"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified name of the slot-grid service.
	ServiceName = "tkd.slotgrid.v1.SlotGridService"

	// BuildCalendarProcedure is the fully-qualified name of the
	// BuildCalendar RPC.
	BuildCalendarProcedure = "/" + ServiceName + "/BuildCalendar"
)

// BuildCalendarRequest is the JSON body of a BuildCalendar call.
type BuildCalendarRequest struct {
	DaysToReturn         int    `json:"daysToReturn"`
	TransportationOption string `json:"transportationOption"`
	// StartDate is either YYYY-MM-DD or RFC3339.
	StartDate string `json:"startDate"`
	// DeliveryDate is RFC3339.
	DeliveryDate string `json:"deliveryDate"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
}

// Options converts the request into calendar options. Empty dates are left
// zero so validation reports them as missing.
func (req BuildCalendarRequest) Options() (calendar.Options, error) {
	opts := calendar.Options{
		DaysToReturn:         req.DaysToReturn,
		TransportationOption: req.TransportationOption,
		Make:                 req.Make,
		Model:                req.Model,
		Year:                 req.Year,
	}

	if req.StartDate != "" {
		var err error

		if strings.Contains(req.StartDate, "T") {
			opts.StartDate, err = time.Parse(time.RFC3339, req.StartDate)
		} else {
			opts.StartDate, err = time.Parse("2006-01-02", req.StartDate)
		}

		if err != nil {
			return opts, fmt.Errorf("%w: invalid format for startDate, expected YYYY-MM-DD", slotgrid.ErrValidation)
		}
	}

	if req.DeliveryDate != "" {
		var err error

		opts.DeliveryDate, err = time.Parse(time.RFC3339, req.DeliveryDate)
		if err != nil {
			return opts, fmt.Errorf("%w: invalid format for deliveryDate, expected %s", slotgrid.ErrValidation, time.RFC3339)
		}
	}

	return opts, nil
}

type SlotGridService struct {
	builder *calendar.Builder
}

func New(builder *calendar.Builder) *SlotGridService {
	return &SlotGridService{
		builder: builder,
	}
}

// NewHandler returns the path and the handler serving svc.
func NewHandler(svc *SlotGridService, opts ...connect.HandlerOption) (string, http.Handler) {
	return BuildCalendarProcedure, connect.NewUnaryHandler(BuildCalendarProcedure, svc.BuildCalendar, opts...)
}

func (svc *SlotGridService) BuildCalendar(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	blob, err := protojson.Marshal(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var payload BuildCalendarRequest
	if err := json.Unmarshal(blob, &payload); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %w", err))
	}

	opts, err := payload.Options()
	if err != nil {
		return nil, toConnectError(err)
	}

	res := <-svc.builder.BuildAsync(ctx, opts)
	if res.Err != nil {
		log.L(ctx).Warn("failed to build calendar",
			"make", opts.Make,
			"model", opts.Model,
			"startDate", payload.StartDate,
			"error", res.Err,
		)

		return nil, toConnectError(res.Err)
	}

	blob, err = json.Marshal(res.Calendar)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	msg := new(structpb.Struct)
	if err := protojson.Unmarshal(blob, msg); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(msg), nil
}

func toConnectError(err error) error {
	var code connect.Code

	switch {
	case errors.Is(err, slotgrid.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, slotgrid.ErrDataSource):
		code = connect.CodeUnavailable
	case errors.Is(err, slotgrid.ErrInvariant):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}

	return connect.NewError(code, err)
}
