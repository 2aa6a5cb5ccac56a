package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// sessionRow is one line of the sessions table
type sessionRow struct {
	Session  chat.Session
	Messages int
}

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"list"},
	Short:   "List chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		controller := chat.NewController(chat.Options{Store: database})
		rows, err := loadSessionRows(cmd.Context(), controller)
		if err != nil {
			return err
		}

		displaySessions(cmd.OutOrStdout(), rows, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func loadSessionRows(ctx context.Context, controller *chat.Controller) ([]sessionRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sessions, err := chat.NewSessions(controller).List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		messages, err := controller.Messages(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages for %s: %w", s.ID, err)
		}
		rows = append(rows, sessionRow{Session: s, Messages: len(messages)})
	}
	return rows, nil
}

func displaySessions(out io.Writer, rows []sessionRow, now time.Time) {
	if len(rows) == 0 {
		fmt.Fprintln(out, headerStyle.Render("No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(rows))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, row := range rows {
		title := row.Session.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:37]) + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(row.Session.ID),
			title,
			countStyle.Render(strconv.Itoa(row.Messages)),
			dateStyle.Render(formatWhen(row.Session.UpdatedAt, now)),
		)
	}
	_ = w.Flush()
}

func formatWhen(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
