package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var uninstallYes bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <id>",
	Short: "Disable an extension and roll back its migrations",
	Long: `Disable the extension if needed, roll back its migrations and forget its
recorded state. The extension's files are left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	id := args[0]

	if !uninstallYes {
		fmt.Fprintf(cmd.OutOrStdout(), "? Roll back all migrations of %s? (y/N) ", id)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		answer := ""
		if scanner.Scan() {
			answer = strings.TrimSpace(strings.ToLower(scanner.Text()))
		}
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Uninstall cancelled.")
			return nil
		}
	}

	m, err := newManager()
	if err != nil {
		return err
	}
	if err := m.Uninstall(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s\n", id)
	return nil
}
