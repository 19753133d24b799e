package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/forumkit/extkit/internal/extension"
	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show details of an extension",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print the serialized extension as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	ext, err := m.Find(args[0])
	if err != nil {
		return err
	}

	if infoJSON {
		data, err := json.MarshalIndent(ext, "", "  ")
		if err != nil {
			return fmt.Errorf("serializing %s: %w", ext.ID(), err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	st, err := m.State()
	if err != nil {
		return err
	}
	return printInfo(cmd.OutOrStdout(), ext, st.IsEnabled(ext.ID()))
}

func printInfo(w io.Writer, ext *extension.Extension, enabled bool) error {
	desc := ext.Descriptor()
	version, ok := ext.InstalledVersion()
	if !ok {
		version = "-"
	}
	status := "disabled"
	if enabled {
		status = "enabled"
	}
	deps, _ := ext.DependencyIDs()

	fmt.Fprintf(w, "ID:           %s\n", ext.ID())
	fmt.Fprintf(w, "Name:         %s\n", ext.Name())
	fmt.Fprintf(w, "Title:        %s\n", ext.Title())
	if d := desc.Description(); d != "" {
		fmt.Fprintf(w, "Description:  %s\n", d)
	}
	fmt.Fprintf(w, "Version:      %s\n", version)
	fmt.Fprintf(w, "Status:       %s\n", status)
	fmt.Fprintf(w, "Path:         %s\n", ext.Path())
	if lic := desc.License(); len(lic) > 0 {
		fmt.Fprintf(w, "License:      %s\n", strings.Join(lic, ", "))
	}
	if kw := desc.Keywords(); len(kw) > 0 {
		fmt.Fprintf(w, "Keywords:     %s\n", strings.Join(kw, ", "))
	}
	if len(deps) > 0 {
		fmt.Fprintf(w, "Dependencies: %s\n", strings.Join(deps, ", "))
	}
	fmt.Fprintf(w, "Assets:       %s\n", yesNo(ext.HasAssets()))
	fmt.Fprintf(w, "Migrations:   %s\n", yesNo(ext.HasMigrations()))

	if _, _, err := ext.Icon(); err != nil {
		fmt.Fprintf(w, "Icon:         %v\n", err)
	}

	links := ext.Links()
	first := true
	for _, key := range links.Keys() {
		value, _ := links.Get(key)
		switch v := value.(type) {
		case string:
			if first {
				fmt.Fprintln(w, "Links:")
				first = false
			}
			fmt.Fprintf(w, "  %-14s %s\n", key+":", v)
		case []extension.AuthorLink:
			if len(v) == 0 {
				continue
			}
			fmt.Fprintln(w, "Authors:")
			for _, a := range v {
				if a.Link != "" {
					fmt.Fprintf(w, "  %s <%s>\n", a.Name, a.Link)
				} else {
					fmt.Fprintf(w, "  %s\n", a.Name)
				}
			}
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
