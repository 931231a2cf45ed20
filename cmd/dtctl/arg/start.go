package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/DayTracker/internal/ipc"
)

var startCmd = &cobra.Command{
	Use:   "start <category>",
	Short: "Start a stopwatch, stopping whatever is running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			if err := c.StartCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s\n", args[0])
			return nil
		})
	},
}

var timerCmd = &cobra.Command{
	Use:   "timer <category> <duration>",
	Short: "Start a countdown, e.g. dtctl timer Work 25m",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := parseTimerDuration(args[1])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			if err := c.StartTimer(ctx, args[0], secs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Timer on %s for %s\n", args[0], formatSeconds(secs))
			return nil
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running stopwatch or timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			if err := c.Stop(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(startCmd, timerCmd, stopCmd)
}
