package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forumkit/extkit/internal/descriptor"
	"github.com/forumkit/extkit/internal/identity"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate an extension descriptor",
	Long: `Validate a composer.json, or the composer.json inside a directory, against
the descriptor schema and check that its name resolves to an extension id.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, descriptor.FileName)
	}

	result, err := descriptor.ValidateFile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !result.Valid {
		fmt.Fprintf(out, "%s is invalid:\n", path)
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		return fmt.Errorf("%d validation issue(s) in %s", len(result.Issues), path)
	}

	desc, err := descriptor.ParseFile(path)
	if err != nil {
		return err
	}
	id, err := identity.ResolveID(desc.Name())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is valid (id: %s)\n", path, id)
	if !desc.IsExtension() {
		fmt.Fprintf(out, "warning: type is %q, not %q\n", desc.Type(), descriptor.ExtensionType)
	}
	return nil
}
