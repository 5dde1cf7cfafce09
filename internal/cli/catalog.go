package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/orbit/internal/search"
	"github.com/khanglvm/orbit/internal/selector"
)

// NewQuestionsCmd creates the 'questions' command group.
func NewQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"q"},
		Short:   "Inspect the question catalog",
	}

	cmd.AddCommand(newQuestionsListCmd())
	cmd.AddCommand(newSearchCmd(search.KindQuestion))

	return cmd
}

// NewArchetypesCmd creates the 'archetypes' command group.
func NewArchetypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "archetypes",
		Aliases: []string{"a"},
		Short:   "Inspect the archetype set",
	}

	cmd.AddCommand(newArchetypesListCmd())
	cmd.AddCommand(newSearchCmd(search.KindArchetype))

	return cmd
}

func newQuestionsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List questions in the order sessions ask them",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			qs, err := rt.store.ListQuestions(contextOrBackground(cmd))
			if err != nil {
				return err
			}
			qs = selector.Order(qs)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, qs)
			}
			if len(qs) == 0 {
				fmt.Fprintln(out, "No questions found.")
				fmt.Fprintln(out, "Run 'orbit seed' to load the built-in catalog.")
				return nil
			}

			fmt.Fprintf(out, "Questions (%d):\n\n", len(qs))
			for _, q := range qs {
				fmt.Fprintf(out, "  %s [%s]\n", q.ID, q.Type)
				fmt.Fprintf(out, "    %s\n", q.Text)
				if len(q.Options) > 0 {
					fmt.Fprintf(out, "    Options: %v\n", q.Options)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "output-json", false, "Output as JSON")

	return cmd
}

func newArchetypesListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archetypes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			as, err := rt.store.ListArchetypes(contextOrBackground(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, as)
			}
			if len(as) == 0 {
				fmt.Fprintln(out, "No archetypes found.")
				fmt.Fprintln(out, "Run 'orbit seed' to load the built-in catalog.")
				return nil
			}

			fmt.Fprintf(out, "Archetypes (%d):\n\n", len(as))
			for _, a := range as {
				fmt.Fprintf(out, "  %s  %s\n", a.ID, a.Name)
				fmt.Fprintf(out, "    Vector: %v\n", a.Vector)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "output-json", false, "Output as JSON")

	return cmd
}

// newSearchCmd builds a full-text search subcommand scoped to kind.
func newSearchCmd(kind search.Kind) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: fmt.Sprintf("Full-text search over %ss", kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			indexer, err := search.NewIndexer(rt.logger)
			if err != nil {
				return err
			}
			defer indexer.Close()

			ctx := contextOrBackground(cmd)
			switch kind {
			case search.KindQuestion:
				qs, err := rt.store.ListQuestions(ctx)
				if err != nil {
					return err
				}
				err = indexer.IndexQuestions(qs)
				if err != nil {
					return err
				}
			case search.KindArchetype:
				as, err := rt.store.ListArchetypes(ctx)
				if err != nil {
					return err
				}
				err = indexer.IndexArchetypes(as)
				if err != nil {
					return err
				}
			}

			results, err := indexer.Search(strings.Join(args, " "), kind, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "  %-10s %6.3f  %s\n", r.ID, r.Score, r.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "output-json", false, "Output as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
