package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/orbit/internal/seed"
)

// NewSeedCmd creates the 'seed' command for loading the catalog.
func NewSeedCmd() *cobra.Command {
	var questionsFile, archetypesFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions and archetypes into the database",
		Long: `Insert questions and archetypes that are not already present.

Without file flags the built-in catalog is used. Existing rows with the same
id are left untouched, so seeding twice is safe.`,
		Example: `  orbit seed
  orbit seed --questions questions.json --archetypes archetypes.json
  orbit seed --output-json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, questionsFile, archetypesFile, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&questionsFile, "questions", "q", "", "questions JSON file (default built-in)")
	cmd.Flags().StringVarP(&archetypesFile, "archetypes", "a", "", "archetypes JSON file (default built-in)")
	cmd.Flags().BoolVar(&jsonOutput, "output-json", false, "Output result as JSON")

	return cmd
}

func runSeed(cmd *cobra.Command, questionsFile, archetypesFile string, jsonOutput bool) error {
	qs, as, err := seed.Defaults()
	if err != nil {
		return err
	}
	if questionsFile != "" {
		if qs, err = loadFile(questionsFile, seed.LoadQuestions); err != nil {
			return err
		}
	}
	if archetypesFile != "" {
		if as, err = loadFile(archetypesFile, seed.LoadArchetypes); err != nil {
			return err
		}
	}

	rt, err := loadRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := seed.Run(contextOrBackground(cmd), rt.store, qs, as, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, res)
	}

	fmt.Fprintf(out, "Questions:  %d inserted, %d already present\n", res.QuestionsInserted, res.QuestionsSkipped)
	fmt.Fprintf(out, "Archetypes: %d inserted, %d already present\n", res.ArchetypesInserted, res.ArchetypesSkipped)
	return nil
}

func loadFile[T any](path string, load func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	items, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
