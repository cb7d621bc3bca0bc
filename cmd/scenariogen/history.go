package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dusk-indust/scenariogen/internal/export"
	"github.com/dusk-indust/scenariogen/internal/history"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const featureColumnWidth = 40

func newHistoryCommand(global *globalFlags) *cobra.Command {
	var (
		path  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(global, path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&path, "history", "", "history database path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")

	cmd.AddCommand(newHistoryShowCommand(global, &path))
	return cmd
}

func newHistoryShowCommand(global *globalFlags, path *string) *cobra.Command {
	var (
		out    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show <request-id>",
		Short: "Print a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(global, *path)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no run with request id %q", args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				if err := export.WriteJSON(cmd.OutOrStdout(), run.Result); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), run.Result.RenderedText)
			}
			if out != "" {
				return export.WriteFile(out, run.Result)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the run to a file (.feature, .txt, .md or .json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func openStore(global *globalFlags, path string) (*history.Store, error) {
	e, err := loadEnv(global)
	if err != nil {
		return nil, err
	}
	store, err := e.openHistory(path)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("run history is disabled in scenariogen.yml")
	}
	return store, nil
}

func printRuns(w io.Writer, runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		fmt.Fprintln(w, "Run 'scenariogen generate' to create one.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-16s  %-11s  %-9s  %s\n", "REQUEST", "CREATED", "MODE", "SCENARIOS", "FEATURE")
	for _, r := range runs {
		count := strconv.Itoa(r.Achieved) + "/" + strconv.Itoa(r.Requested)
		if !r.CountSatisfied {
			count += "!"
		}
		feature := runewidth.Truncate(r.FeatureName, featureColumnWidth, "...")
		fmt.Fprintf(w, "%-36s  %-16s  %-11s  %-9s  %s\n",
			r.RequestID, r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, count, feature)
	}
}
