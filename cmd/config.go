// file: cmd/config.go
// version: 1.0.0
// guid: 0b5d8e2f-3a61-4c97-8e14-6f2a9c7d1b40

package cmd

import (
	"fmt"

	"github.com/jdfalk/petmatch/internal/config"
	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.MarshalConfig()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := config.ConfigFilePath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.SaveConfigToFile(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
)

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
