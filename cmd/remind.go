package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gateworks-backend/utils"
)

func newRemindCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the maintenance reminder job once",
		Long: `Sends the maintenance reminders due today and prints the JSON summary.
Use --date to run the job as if it were another day.`,
		Example: "  gateworks remind --date 2024-04-15",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemind(cmd.Context(), date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Run as of this date (YYYY-MM-DD)")
	return cmd
}

func runRemind(ctx context.Context, date string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if date != "" {
		d, err := utils.ParseDate(date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", date, err)
		}
		asOf := time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, a.location)
		a.reminders.WithClock(func() time.Time { return asOf })
	}

	if ctx == nil {
		ctx = context.Background()
	}
	summary, err := a.reminders.SendDueReminders(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
