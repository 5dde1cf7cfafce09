/*
Package cli implements the orbit command-line interface.

Every command shares the persistent --config, --db, --debug and --json
flags. Configuration is resolved through the config package, so flags
override environment variables, which override orbit.yaml.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/orbit/internal/version"
)

// NewRootCmd creates the top-level orbit command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbit",
		Short: "Adaptive interview and archetype matching service",
		Long: `orbit runs a short adaptive interview over HTTP and matches the
respondent against a set of reference archetypes.

A session asks catalog questions in order until the time budget runs out,
the question ceiling is reached, or the catalog is exhausted. The result is
the top archetypes ranked by cosine similarity, each with a short
explanation of the closest preference dimensions.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default is orbit.yaml in current directory)")
	rootCmd.PersistentFlags().String("db", "", "database path or sqlite:/// URL (default ~/.orbit/orbit.db)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSeedCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewQuestionsCmd())
	rootCmd.AddCommand(NewArchetypesCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command and returns its error.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		return fmt.Errorf("orbit: %w", err)
	}
	return nil
}
