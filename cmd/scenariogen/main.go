package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dusk-indust/scenariogen/internal/config"
	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// globalFlags are shared by every command.
type globalFlags struct {
	ProjectRoot string
	Verbose     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "scenariogen",
		Short: "Generate BDD scenarios from user stories",
		Long: "scenariogen turns a user story into Given/When/Then scenarios. In multi_agent mode " +
			"several reviewer personas draft scenarios in parallel and the drafts are merged " +
			"into one deduplicated list of the requested size.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Library warnings only reach the terminal in verbose mode.
			if verbose(&flags) {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.ProjectRoot, "project-root", ".", "directory containing scenariogen.yml")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newGenerateCommand(&flags))
	root.AddCommand(newHistoryCommand(&flags))
	root.AddCommand(newPersonasCommand(&flags))
	root.AddCommand(newModelsCommand())
	root.AddCommand(newServeMCPCommand(&flags))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

// verbose reports whether the flag or scenariogen.yml turns on verbose
// output. A config that fails to load is reported by the command itself.
func verbose(flags *globalFlags) bool {
	if flags.Verbose {
		return true
	}
	cfg, err := config.Load(flags.ProjectRoot)
	return err == nil && cfg.Verbose
}
