package arg

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/DayTracker/internal/engine"
	"github.com/SoarinFerret/DayTracker/internal/ipc"
)

var callTimeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "dtctl",
	Short: "dtctl is the command line tool for DayTracker",
	Long: `dtctl talks to the daytrackerd daemon over the D-Bus session bus.
Use it to manage categories, start and stop stopwatches and timers,
and read today's totals, the history and reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 5*time.Second, "timeout for each call to the daemon")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connectSessionBus() (*dbus.Conn, error) {
	conn, err := engine.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return conn, nil
}

// withClient connects to the daemon and runs fn with a per-call timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *ipc.Client) error) error {
	conn, err := connectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()
	return fn(ctx, ipc.NewClient(conn))
}
