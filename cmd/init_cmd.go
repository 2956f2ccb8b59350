package cmd

import (
	"fmt"

	"github.com/dzjyyds666/cwq/config"
	"github.com/dzjyyds666/cwq/pkg"
	"github.com/spf13/cobra"
)

var initForce bool

// initCmd: cwq init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	// an existing, possibly invalid, configuration must not block init
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		exist, err := pkg.CheckFileExist(cfgFile)
		if err != nil {
			return err
		}
		if exist && !initForce {
			return fmt.Errorf("configuration file %s already exists, use --force to overwrite", cfgFile)
		}
		if err := config.Write(cfgFile, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}
