package cfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"tubegrab/internal/contracts"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"

	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

var errNoHistory = errors.New("history database is not available")

// initHistoryCmds is the entrypoint for session history commands.
func initHistoryCmds(app *App) *cobra.Command {
	histCmd := &cobra.Command{
		Use:   "history",
		Short: "Session history commands",
		Long:  "List past download sessions, show their jobs or delete them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(cmd, app.History)
		},
	}
	histCmd.Flags().Int(keys.HistoryLimit, defaultHistoryLimit, "Number of sessions to list (0 for all)")
	histCmd.Flags().Bool(keys.JSONOutput, false, "Print as JSON")

	histCmd.AddCommand(showSessionCmd(app.History))
	histCmd.AddCommand(deleteSessionCmd(app.History))
	return histCmd
}

func listSessions(cmd *cobra.Command, hs contracts.HistoryStore) error {
	if hs == nil {
		return errNoHistory
	}
	limit, err := cmd.Flags().GetInt(keys.HistoryLimit)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool(keys.JSONOutput)
	if err != nil {
		return err
	}

	sessions, err := hs.ListSessions(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tOUTCOME\tOK/FAIL/CANCEL\tURL")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d/%d\t%s\n",
			s.ID, formatTime(s.StartedAt), outcomeOrState(s), s.Succeeded, s.Failed, s.Cancelled, s.URL)
	}
	return w.Flush()
}

// showSessionCmd prints one session with its jobs.
func showSessionCmd(hs contracts.HistoryStore) *cobra.Command {
	var asJSON bool

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a session and its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hs == nil {
				return errNoHistory
			}
			rec, err := hs.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rec)
			}

			fmt.Fprintf(out, "Session:   %s\n", rec.ID)
			fmt.Fprintf(out, "URL:       %s\n", rec.URL)
			if rec.Title != "" {
				fmt.Fprintf(out, "Title:     %s\n", rec.Title)
			}
			fmt.Fprintf(out, "Options:   %s, %s into %s\n", rec.Quality, rec.Format, rec.Directory)
			fmt.Fprintf(out, "Started:   %s\n", formatTime(rec.StartedAt))
			fmt.Fprintf(out, "Finished:  %s\n", formatTime(rec.FinishedAt))
			fmt.Fprintf(out, "Outcome:   %s\n", outcomeOrState(rec))
			if rec.Error != "" {
				fmt.Fprintf(out, "Error:     %s\n", rec.Error)
			}
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSTATUS\tATTEMPTS\tTITLE\tDETAIL")
			for _, j := range rec.Jobs {
				detail := j.OutputPath
				if j.Error != "" {
					detail = j.Error
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", j.JobID, j.Status, j.Attempts, j.Title, detail)
			}
			return w.Flush()
		},
	}

	showCmd.Flags().BoolVar(&asJSON, keys.JSONOutput, false, "Print as JSON")
	return showCmd
}

// deleteSessionCmd deletes a session from the database.
func deleteSessionCmd(hs contracts.HistoryStore) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a session entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hs == nil {
				return errNoHistory
			}
			if err := hs.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			logger.Pl.S("Successfully deleted session %q", args[0])
			return nil
		},
	}
}

func outcomeOrState(rec models.SessionRecord) string {
	if rec.Outcome != "" {
		return string(rec.Outcome)
	}
	return string(rec.State)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
