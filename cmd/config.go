package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdash/internal/config"
	"github.com/matheuskafuri/newsdash/internal/session"
)

var flagConfigPaths bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file and NEWSDASH_*
environment overrides have been applied. Use --paths to list the files
newsdash reads and writes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		if flagConfigPaths {
			path := flagConfig
			if path == "" {
				path = config.DefaultConfigPath()
			}
			fmt.Fprintf(out, "config:      %s\n", path)
			fmt.Fprintf(out, "credentials: %s\n", session.DefaultPath())
			fmt.Fprintf(out, "cache:       %s\n", config.CachePath())
			fmt.Fprintf(out, "log:         %s\n", cfg.LogPath())
			return nil
		}

		b, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigPaths, "paths", false, "list file locations instead")
}
