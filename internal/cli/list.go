package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/forumkit/extkit/internal/extension"
	"github.com/spf13/cobra"
)

var (
	listEnabledOnly bool
	listJSON        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed extensions",
	Long:  `List every extension found under the extensions directory.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listEnabledOnly, "enabled", false, "Only show enabled extensions")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry is one row of the list output.
type listEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	exts, err := m.List()
	if err != nil {
		return fmt.Errorf("discovering extensions: %w", err)
	}
	st, err := m.State()
	if err != nil {
		return err
	}

	entries := listEntries(exts, st, listEnabledOnly)
	if len(entries) == 0 {
		if listEnabledOnly {
			fmt.Fprintln(cmd.OutOrStdout(), "No extensions enabled.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No extensions installed.")
		}
		return nil
	}

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVERSION\tSTATUS")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		status := "disabled"
		if e.Enabled {
			status = "enabled"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Title, version, status)
	}
	return w.Flush()
}

func listEntries(exts []*extension.Extension, st *extension.State, enabledOnly bool) []listEntry {
	extension.SortByName(exts)
	var entries []listEntry
	for _, ext := range exts {
		enabled := st.IsEnabled(ext.ID())
		if enabledOnly && !enabled {
			continue
		}
		version, _ := ext.InstalledVersion()
		entries = append(entries, listEntry{
			ID:      ext.ID(),
			Name:    ext.Name(),
			Title:   ext.Title(),
			Version: version,
			Enabled: enabled,
		})
	}
	return entries
}
