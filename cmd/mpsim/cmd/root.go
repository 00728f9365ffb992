// Package cmd contains the mpsim commands.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-microplastic-inspector/internal/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mpsim",
	Short: "Simulated microplastic detection for image files",
	Long: `mpsim runs the simulated microplastic detector over local files and
prints the resulting history table. It can also write the CSV export,
the printable report and the two chart images.

Detections are random and never depend on file content. Use --seed
for reproducible output.

Every flag can also be set through an MPSIM_ environment variable,
e.g. MPSIM_SEED=42.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		if viper.GetBool("verbose") {
			logger.SetLevel("debug")
		} else {
			logger.SetLevel("warn")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("verbose", false, "log every detection to stderr")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed; 0 seeds from the clock")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

// initConfig reads ENV variables if set, e.g. MPSIM_CHART_WIDTH for --chart-width.
func initConfig() {
	viper.SetEnvPrefix("MPSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
