package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List enabled extensions updated since they were enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		updates, err := m.Outdated()
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All enabled extensions are up to date.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tRECORDED\tINSTALLED")
		for _, u := range updates {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Recorded, u.Available)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(outdatedCmd)
}
