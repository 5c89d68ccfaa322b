package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-heatmap/internal/config"
	"github.com/contactkeval/option-heatmap/internal/logger"
)

var (
	configPath string
	verbosity  int
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:           "option-heatmap",
	Short:         "Price European options over a spot/strike grid and draw the result as heatmaps",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("verbosity") {
			cfg.Verbosity = verbosity
		}
		logger.SetVerbosity(cfg.Verbosity)
		logger.Debugf("config loaded from %q palette=%s tau_unit=%s", configPath, cfg.Palette, cfg.TauUnit)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "option-heatmap.yaml", "path to YAML config")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 1, "0=errors, 1=info, 2=debug, 3=trace")

	rootCmd.AddCommand(newPriceCmd(), newHeatmapCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
