package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/gateway"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPersonasCommand(global *globalFlags) *cobra.Command {
	var (
		mode  string
		count int
	)

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List the reviewer personas and how a scenario count is split between them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(global)
			if err != nil {
				return err
			}

			roster := persona.Single()
			switch bdd.Mode(mode) {
			case bdd.ModeMultiAgent:
				if roster, err = e.cfg.Roster(); err != nil {
					return err
				}
			case bdd.ModeSingle:
			default:
				return fmt.Errorf("unknown mode %q", mode)
			}

			if count == 0 {
				count = e.cfg.Generation().RequestedCount
			}
			printPersonas(cmd.OutOrStdout(), persona.Budgets(roster, count, 0), roster, count)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(bdd.ModeMultiAgent), "generation mode: single or multi_agent")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "scenario count to split")
	return cmd
}

func printPersonas(w io.Writer, assignments []persona.Assignment, roster persona.Roster, count int) {
	shares := make(map[string]int, len(assignments))
	for _, a := range assignments {
		shares[a.Persona.ID] = a.Share
	}

	width := 100
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}

	specs := roster.Specs()
	nameWidth := len("NAME")
	for _, s := range specs {
		nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
	}
	focusWidth := max(width-nameWidth-len("RANK  SHARE  ")-4, 20)

	fmt.Fprintf(w, "Split of %d %s:\n\n", count, bdd.Plural(count, "scenario", "scenarios"))
	fmt.Fprintf(w, "%-4s  %s  %-5s  %s\n", "RANK", runewidth.FillRight("NAME", nameWidth), "SHARE", "FOCUS")
	for _, s := range specs {
		fmt.Fprintf(w, "%-4s  %s  %-5d  %s\n",
			strconv.Itoa(s.Rank),
			runewidth.FillRight(s.Name, nameWidth),
			shares[s.ID],
			runewidth.Truncate(s.Focus, focusWidth, "..."))
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models in the built-in catalog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-14s  %-14s  %s\n", "ID", "NAME", "MAX TOKENS")
			for _, m := range gateway.Models() {
				fmt.Fprintf(w, "%-14s  %-14s  %d\n", m.ID, m.Name, m.MaxTokens)
			}
		},
	}
}
