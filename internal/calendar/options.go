package calendar

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/datasource"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// Options configures a single calendar build. All fields are required.
type Options struct {
	DaysToReturn         int       `json:"daysToReturn" validate:"required,gt=0"`
	TransportationOption string    `json:"transportationOption" validate:"required"`
	StartDate            time.Time `json:"startDate" validate:"required"`
	// DeliveryDate is the cutoff. Slots starting at or before it are
	// unavailable.
	DeliveryDate time.Time `json:"deliveryDate" validate:"required"`
	Make         string    `json:"make" validate:"required"`
	Model        string    `json:"model" validate:"required"`
	Year         int       `json:"year" validate:"required,gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	return v
}

// Validate reports all missing or invalid fields as a single error
// wrapping slotgrid.ErrValidation.
func (opts Options) Validate() error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %w", slotgrid.ErrValidation, err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}

	return fmt.Errorf("%w: %s", slotgrid.ErrValidation, strings.Join(messages, ", "))
}

// Request returns the parameters sent to the data source.
func (opts Options) Request() datasource.Request {
	return datasource.Request{
		DaysToReturn:         opts.DaysToReturn,
		TransportationOption: opts.TransportationOption,
		StartDate:            opts.StartDate,
		Year:                 opts.Year,
		Make:                 opts.Make,
		Model:                opts.Model,
	}
}
