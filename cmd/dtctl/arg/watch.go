package arg

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/DayTracker/internal/ipc"
	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

const watchInterval = time.Second

type statusFetcher func(ctx context.Context) (tracker.Status, error)

type (
	tickMsg   time.Time
	statusMsg struct {
		status tracker.Status
		err    error
	}
)

type watchModel struct {
	fetch   statusFetcher
	timeout time.Duration
	status  *tracker.Status
	err     error
	width   int
}

func tickCmd() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		st, err := m.fetch(ctx)
		return statusMsg{status: st, err: err}
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd())
	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			st := msg.status
			m.status = &st
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	footer := idleStyle.Render("q to quit")
	if m.err != nil {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
		return warn.Render(fmt.Sprintf("daemon unreachable: %v", m.err)) + "\n\n" + footer + "\n"
	}
	if m.status == nil {
		return "Loading...\n"
	}
	body := boxStyle.Render(renderStatus(*m.status))
	return lipgloss.JoinVertical(lipgloss.Left, body, footer) + "\n"
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of today's totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := connectSessionBus()
		if err != nil {
			return err
		}
		defer conn.Close()
		client := ipc.NewClient(conn)

		m := watchModel{fetch: client.Status, timeout: callTimeout}
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
