// Package commands implements the tipsplit command line.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/tipsplit/internal/config"
	"github.com/mmynk/tipsplit/pkg/logging"
)

// New builds the root command. Settings resolve from flags, then
// TIPSPLIT_* variables, then .tipsplit.yaml, then defaults.
func New() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:          "tipsplit",
		Short:        "Split a bill and tip between people.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("rules", "",
		"Validation rules, one of 'lenient' or 'strict'.")
	cmd.PersistentFlags().String("log-level", "",
		"Log level: debug, info, warn or error.")
	bindFlag(v, cmd.PersistentFlags().Lookup("rules"), config.KeyRules)
	bindFlag(v, cmd.PersistentFlags().Lookup("log-level"), config.KeyLogLevel)

	AddCommands(cmd, v)
	return cmd
}

// AddCommands registers every subcommand on topLevel.
func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addCalc(topLevel, v)
	addPresets(topLevel)
	addServe(topLevel, v)
	addVersion(topLevel)
}
