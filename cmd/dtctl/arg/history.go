package arg

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/DayTracker/internal/ipc"
	"github.com/SoarinFerret/DayTracker/internal/report"
	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

var (
	historyDays int
	reportDays  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived days, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			days, err := c.History(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderHistory(days, historyDays))
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the last days and today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			s, err := c.Report(ctx, reportDays)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderReport(s))
			return nil
		})
	},
}

func renderHistory(days []tracker.DayData, limit int) string {
	if len(days) == 0 {
		return idleStyle.Render("no archived days") + "\n"
	}
	var b strings.Builder
	shown := 0
	for i := len(days) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		day := days[i]
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s · %s", day.Date, formatSeconds(day.TotalTime()))))
		b.WriteString("\n")
		for _, line := range categoryLines(day.Categories, "") {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		shown++
	}
	return b.String()
}

func renderReport(s report.Summary) string {
	var b strings.Builder
	header := fmt.Sprintf("Report %s to %s", s.From, s.To)
	if s.From == s.To {
		header = "Report " + s.From
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, c := range s.Categories {
		bar := strings.Repeat("█", int(c.Share*30+0.5))
		b.WriteString(fmt.Sprintf("%s %s %5.1f%%  %s\n",
			swatch(c.Color).Render(fmt.Sprintf("%-16s", c.Name)),
			swatch(c.Color).Render(fmt.Sprintf("%-30s", bar)),
			c.Share*100,
			formatSeconds(c.Seconds),
		))
	}

	summary := fmt.Sprintf("Total %s over %d active day(s), average %s",
		formatSeconds(s.TotalSeconds), s.ActiveDays, formatSeconds(s.AverageSeconds))
	if s.Top != "" {
		summary += "\nMost tracked: " + s.Top
	}
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n")
	return b.String()
}

func init() {
	historyCmd.Flags().IntVarP(&historyDays, "days", "n", 7, "number of days to show (0 for all)")
	reportCmd.Flags().IntVarP(&reportDays, "days", "n", 7, "archived days to include besides today (0 for all)")
	rootCmd.AddCommand(historyCmd, reportCmd)
}
