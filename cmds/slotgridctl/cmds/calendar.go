package cmds

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/spf13/cobra"
	"github.com/tierklinik-dobersberg/apis/pkg/cli"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/services"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func GetCalendarCommand(root *cli.Root, out *outputOptions) *cobra.Command {
	var (
		rf       requestFlags
		delivery string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Build a slot calendar using the slot-grid service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := services.BuildCalendarRequest{
				DaysToReturn:         rf.days,
				TransportationOption: rf.transportationOption,
				StartDate:            rf.startDate,
				DeliveryDate:         delivery,
				Make:                 rf.make,
				Model:                rf.model,
				Year:                 rf.year,
			}

			blob, err := json.Marshal(req)
			if err != nil {
				return err
			}

			msg := new(structpb.Struct)
			if err := protojson.Unmarshal(blob, msg); err != nil {
				return err
			}

			client := connect.NewClient[structpb.Struct, structpb.Struct](
				root.HttpClient,
				out.BaseURL+services.BuildCalendarProcedure,
				connect.WithProtoJSON(),
			)

			res, err := client.CallUnary(root.Context(), connect.NewRequest(msg))
			if err != nil {
				return fmt.Errorf("failed to build calendar: %w", err)
			}

			blob, err = protojson.Marshal(res.Msg)
			if err != nil {
				return err
			}

			var cal slotgrid.Calendar
			if err := json.Unmarshal(blob, &cal); err != nil {
				return fmt.Errorf("failed to decode calendar: %w", err)
			}

			return out.print(root, cmd.OutOrStdout(), &cal, slotInterval(&cal))
		},
	}

	f := cmd.Flags()
	{
		rf.register(f)
		f.StringVar(&delivery, "delivery", time.Now().Format(time.RFC3339), "The booking cutoff in RFC3339")
	}

	return cmd
}
