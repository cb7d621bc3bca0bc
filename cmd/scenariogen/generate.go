package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/export"
	"github.com/dusk-indust/scenariogen/internal/orchestrator"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	Story       string
	StoryFile   string
	Count       int
	Negative    bool
	EdgeCases   bool
	Mode        string
	Model       string
	Temperature float64
	Timeout     int
	Headroom    int
	Out         string
	JSON        bool
	NoHistory   bool
	HistoryPath string
	BaseURL     string
	Quiet       bool
}

func newGenerateCommand(global *globalFlags) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [story]",
		Short: "Generate scenarios for a user story",
		Long: "Generate Given/When/Then scenarios for a user story given as an argument, with --story, " +
			"with --story-file, or on stdin (--story-file -).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if flags.Story != "" {
					return fmt.Errorf("story given both as argument and --story")
				}
				flags.Story = args[0]
			}
			return runGenerate(cmd, global, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Story, "story", "", "user story text")
	f.StringVarP(&flags.StoryFile, "story-file", "f", "", "read the user story from a file (- for stdin)")
	f.IntVarP(&flags.Count, "count", "n", 0, "number of scenarios (1-20)")
	f.BoolVar(&flags.Negative, "negative", false, "ensure at least one negative scenario")
	f.BoolVar(&flags.EdgeCases, "edge-cases", false, "ensure at least one edge case scenario")
	f.StringVarP(&flags.Mode, "mode", "m", "", "generation mode: single or multi_agent")
	f.StringVar(&flags.Model, "model", "", "model identifier")
	f.Float64Var(&flags.Temperature, "temperature", 0, "sampling temperature (0-1)")
	f.IntVar(&flags.Timeout, "timeout", 0, "per-persona timeout in seconds")
	f.IntVar(&flags.Headroom, "headroom", 0, "extra scenarios asked of each persona to cover duplicates")
	f.StringVarP(&flags.Out, "out", "o", "", "also write the result to a file (.feature, .txt, .md or .json)")
	f.BoolVar(&flags.JSON, "json", false, "print the result as JSON")
	f.BoolVar(&flags.NoHistory, "no-history", false, "do not record the run")
	f.StringVar(&flags.HistoryPath, "history", "", "history database path")
	f.StringVar(&flags.BaseURL, "base-url", "", "OpenAI-compatible API base URL")
	f.BoolVarP(&flags.Quiet, "quiet", "q", false, "do not print progress")

	return cmd
}

func runGenerate(cmd *cobra.Command, global *globalFlags, flags *generateFlags) error {
	e, err := loadEnv(global)
	if err != nil {
		return err
	}

	story, err := readStory(cmd.InOrStdin(), flags)
	if err != nil {
		return err
	}

	cfg := generationConfig(cmd, e.cfg.Generation(), flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := bdd.ValidateStory(story); err != nil {
		return err
	}

	completer, err := e.completer(flags.BaseURL)
	if err != nil {
		return err
	}
	pipeline, err := e.pipeline(completer)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	printer := newProgressPrinter(stderr, string(cfg.Mode), cfg.RequestedCount)
	done := make(chan struct{})
	if flags.Quiet {
		go func() {
			defer close(done)
			for range pipeline.Progress() {
			}
		}()
	} else {
		go printer.drain(pipeline.Progress(), done)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, genErr := pipeline.Generate(ctx, story, cfg)
	pipeline.Close()
	<-done
	if genErr != nil {
		return genErr
	}

	if !res.CountSatisfied {
		printer.warn("%d of %d scenarios produced", res.Achieved, res.Requested)
	}
	if len(res.PersonaFailures) > 0 {
		printer.warn("%d %s failed:\n%s", len(res.PersonaFailures), bdd.Plural(len(res.PersonaFailures), "persona", "personas"),
			strings.TrimRight(orchestrator.DescribeFailures(res.PersonaFailures), "\n"))
	}

	stdout := cmd.OutOrStdout()
	if flags.JSON {
		if err := export.WriteJSON(stdout, res); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, res.RenderedText)
	}

	if flags.Out != "" {
		if err := export.WriteFile(flags.Out, res); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %s\n", flags.Out)
	}

	if !flags.NoHistory {
		recordRun(ctx, e, flags.HistoryPath, story, res, printer)
	}
	return nil
}

// recordRun stores res in the history database. Failures are reported but
// never fail the command.
func recordRun(ctx context.Context, e *env, path, story string, res *bdd.Result, printer *progressPrinter) {
	store, err := e.openHistory(path)
	if err != nil {
		printer.warn("history: %v", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, story, res); err != nil {
		printer.warn("history: %v", err)
	}
}

func readStory(stdin io.Reader, flags *generateFlags) (string, error) {
	switch {
	case flags.Story != "" && flags.StoryFile != "":
		return "", fmt.Errorf("use either --story or --story-file, not both")
	case flags.Story != "":
		return flags.Story, nil
	case flags.StoryFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read story: %w", err)
		}
		return string(data), nil
	case flags.StoryFile != "":
		data, err := os.ReadFile(flags.StoryFile)
		if err != nil {
			return "", fmt.Errorf("read story: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no story: pass it as an argument, with --story or with --story-file")
	}
}

// generationConfig applies the flags the user actually set on top of base.
func generationConfig(cmd *cobra.Command, base bdd.GenerationConfig, flags *generateFlags) bdd.GenerationConfig {
	f := cmd.Flags()
	if f.Changed("count") {
		base.RequestedCount = flags.Count
	}
	if f.Changed("negative") {
		base.IncludeNegative = flags.Negative
	}
	if f.Changed("edge-cases") {
		base.IncludeEdgeCases = flags.EdgeCases
	}
	if f.Changed("mode") {
		base.Mode = bdd.Mode(flags.Mode)
	}
	if f.Changed("model") {
		base.Model = flags.Model
	}
	if f.Changed("temperature") {
		base.Temperature = flags.Temperature
	}
	if f.Changed("timeout") {
		base.TimeoutSeconds = flags.Timeout
	}
	if f.Changed("headroom") {
		base.Headroom = flags.Headroom
	}
	return base
}
