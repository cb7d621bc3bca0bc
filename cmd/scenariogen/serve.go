package main

import (
	"log"
	"os"
	"os/signal"

	"github.com/dusk-indust/scenariogen/internal/mcptools"
	"github.com/spf13/cobra"
)

func newServeMCPCommand(global *globalFlags) *cobra.Command {
	var (
		addr        string
		baseURL     string
		historyPath string
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(global)
			if err != nil {
				return err
			}
			completer, err := e.completer(baseURL)
			if err != nil {
				return err
			}
			pipeline, err := e.pipeline(completer)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			// Nobody watches progress in server mode.
			go func() {
				for range pipeline.Progress() {
				}
			}()

			roster, err := e.cfg.Roster()
			if err != nil {
				return err
			}
			svc := mcptools.NewScenarioService(pipeline, e.cfg.Generation(), roster)

			if !noHistory {
				store, err := e.openHistory(historyPath)
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					svc.SetHistory(store)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			server := mcptools.NewScenarioMCPServer(svc)
			if addr != "" {
				log.Printf("serve-mcp: listening on %s", addr)
				return mcptools.RunHTTP(ctx, server, addr)
			}
			return mcptools.RunStdio(ctx, server)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&historyPath, "history", "", "history database path")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record runs")
	return cmd
}
