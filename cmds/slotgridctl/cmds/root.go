package cmds

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tierklinik-dobersberg/apis/pkg/cli"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/export"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

// outputOptions holds the persistent flags shared by all commands that
// print a calendar.
type outputOptions struct {
	BaseURL    string
	Output     string
	SlotLength time.Duration
}

func PrepareRootCommand(root *cli.Root) {
	opts := &outputOptions{}

	baseURL := os.Getenv("SLOTGRID_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	f := root.PersistentFlags()
	{
		f.StringVar(&opts.BaseURL, "url", baseURL, "The base URL of the slot-grid service")
		f.StringVarP(&opts.Output, "output", "o", "json", "Output format, one of json, table or ical")
		f.DurationVar(&opts.SlotLength, "slot-length", 0, "Length of exported iCal events, defaults to the slot interval")
	}

	root.AddCommand(
		GetCalendarCommand(root, opts),
		GetRenderCommand(root, opts),
		GetImportCommand(root),
	)
}

// print writes cal in the configured output format. JSON goes through the
// root's print function so --yaml and --format keep working. interval is
// used as the iCal event length if --slot-length is not set.
func (opts *outputOptions) print(root *cli.Root, w io.Writer, cal *slotgrid.Calendar, interval time.Duration) error {
	switch opts.Output {
	case "json":
		root.Print(cal)

		return nil

	case "table":
		export.WriteTable(w, cal)

		return nil

	case "ical":
		length := opts.SlotLength
		if length <= 0 {
			length = interval
		}

		if length <= 0 {
			return fmt.Errorf("unknown slot length, please specify --slot-length")
		}

		ics, err := export.ICal(cal, length)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(w, ics)

		return err

	default:
		return fmt.Errorf("unsupported output format %q", opts.Output)
	}
}
