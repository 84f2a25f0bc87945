package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gitpanel.dev/gitpanel/internal/cli/common"
	"gitpanel.dev/gitpanel/internal/config"
	"gitpanel.dev/gitpanel/internal/journal"
	"gitpanel.dev/gitpanel/internal/tui"
)

// openJournal opens the journal named by the configuration without starting
// a session, so history works while a panel holds the repository.
func openJournal(cmd *cobra.Command) (*journal.Store, *config.Config, error) {
	cfg, err := common.LoadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, nil, fmt.Errorf("the journal is disabled (set %s to true)", config.KeyJournalEnabled)
	}
	store, err := journal.Open(cfg.Journal.Path, journal.Options{})
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		failed bool
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the operations recorded for this repository, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			q := journal.Query{Limit: limit, FailedOnly: failed}
			if !all {
				if q.RepoPath, err = common.RepoRoot(cmd); err != nil {
					return err
				}
			}
			records, err := store.List(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				_, err := fmt.Fprintln(out, "No operations recorded.")
				return err
			}

			headers := []string{"started", "op", "arg", "outcome", "duration"}
			if all {
				headers = append(headers, "repository")
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				outcome := r.Outcome
				if !r.Succeeded() {
					outcome = fmt.Sprintf("%s: %s", r.Outcome, r.Error)
				}
				row := []string{
					r.StartedAt.Local().Format(time.DateTime),
					r.Op,
					r.Arg,
					outcome,
					r.Duration().String(),
				}
				if all {
					row = append(row, r.RepoPath)
				}
				rows = append(rows, row)
			}
			return tui.RenderTable(out, headers, rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultListLimit, "Maximum number of operations to show")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show refused and failed operations")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show operations of every repository")

	cmd.AddCommand(newHistoryPruneCmd())

	return cmd
}

// newHistoryPruneCmd creates the history prune command
func newHistoryPruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, _, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d operations.\n", removed)
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove entries started before now minus this duration")

	return cmd
}
