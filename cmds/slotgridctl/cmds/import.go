package cmds

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tierklinik-dobersberg/apis/pkg/cli"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/app"
)

func GetImportCommand(root *cli.Root) *cobra.Command {
	var (
		rf       requestFlags
		mongoURL string
		database string
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a schedule snapshot into MongoDB",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mongoURL == "" {
				return fmt.Errorf("--mongo-url or MONGO_URL must be set")
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			req, err := rf.request()
			if err != nil {
				return err
			}

			schedule, err := readSchedule(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := root.Context()

			source, cli, err := app.ConnectMongo(ctx, mongoURL, database)
			if err != nil {
				return err
			}
			defer func() {
				if err := cli.Disconnect(ctx); err != nil {
					logrus.Errorf("failed to disconnect from mongodb: %s", err)
				}
			}()

			if err := source.Store(ctx, req, schedule); err != nil {
				return fmt.Errorf("failed to store schedule: %w", err)
			}

			logrus.Infof("imported schedule with %d days for %s", len(schedule.Dates), req)

			return nil
		},
	}

	f := cmd.Flags()
	{
		rf.register(f)
		f.StringVar(&mongoURL, "mongo-url", os.Getenv("MONGO_URL"), "The MongoDB connection URL")
		f.StringVar(&database, "database", "cis-slotgrid", "The MongoDB database name")
	}

	return cmd
}
