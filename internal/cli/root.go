package cli

import (
	"github.com/forumkit/extkit/internal/branding"
	"github.com/forumkit/extkit/internal/config"
	"github.com/forumkit/extkit/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` inspects the extensions installed for a forum, reports their
dependencies, and enables or disables them against the application container.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		logging.ConfigureRuntime(config.Get(config.KeyLogLevel))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("extensions-dir", "", "Directory scanned for extensions")
	flags.String("public-dir", "", "Directory receiving published extension assets")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	_ = config.BindFlag(config.KeyExtensionsDir, flags.Lookup("extensions-dir"))
	_ = config.BindFlag(config.KeyPublicDir, flags.Lookup("public-dir"))
	_ = config.BindFlag(config.KeyLogLevel, flags.Lookup("log-level"))
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
