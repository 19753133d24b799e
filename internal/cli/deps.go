package cli

import (
	"fmt"

	"github.com/forumkit/extkit/internal/extension"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps <id>",
	Short: "Show the dependency tree of an extension",
	Long: `Show which installed extensions an extension depends on, following
"require" entries recursively. Dependencies are reported, not enforced.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	exts, err := m.List()
	if err != nil {
		return err
	}
	tree, err := extension.BuildDependencyTree(args[0], exts)
	if err != nil {
		return err
	}
	st, err := m.State()
	if err != nil {
		return err
	}
	extension.MarkEnabled(tree, st)
	extension.PrintTree(cmd.OutOrStdout(), tree, "", true)

	missing, err := m.MissingDependencies(args[0])
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nNot enabled: %v\n", missing)
	}
	return nil
}
