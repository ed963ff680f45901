// Package cmd contains the command line applications for the project.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           configs.AppName,
		Short:         "A self-hosted service for storing and streaming audio files",
		Version:       configs.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log.Init()

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerBlobCommands()
	registerKVCommands()
	registerMQCommands()
	registerReconcileCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
