package cmds

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tierklinik-dobersberg/apis/pkg/cli"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
)

func readSchedule(path string, stdin io.Reader) (*slotgrid.Schedule, error) {
	var (
		content []byte
		err     error
	)

	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, err
	}

	var schedule slotgrid.Schedule
	if err := json.Unmarshal(content, &schedule); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	return &schedule, nil
}

func GetRenderCommand(root *cli.Root, out *outputOptions) *cobra.Command {
	var delivery string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Build a slot calendar from a schedule snapshot on disk",
		Long:  "Reads a provider schedule snapshot from a file (or stdin if file is - or omitted) and prints the resulting calendar.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			deliveryDate, err := time.Parse(time.RFC3339, delivery)
			if err != nil {
				return fmt.Errorf("invalid value for --delivery: %w", err)
			}

			schedule, err := readSchedule(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cal, err := slotgrid.Assemble(*schedule, deliveryDate)
			if err != nil {
				return err
			}

			return out.print(root, cmd.OutOrStdout(), cal, time.Duration(schedule.Interval)*time.Minute)
		},
	}

	cmd.Flags().StringVar(&delivery, "delivery", time.Now().Format(time.RFC3339), "The booking cutoff in RFC3339")

	return cmd
}
