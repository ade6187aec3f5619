// Package cmd implements the cook command line interface.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "cook",
	Short: "Command-driven multi-agent task orchestration",
	Long: `Cook turns a "/cook" command into a plan of agent work items and runs
them in bounded, stage-ordered rounds, reporting progress as it goes.

  cook run architecture "Design the billing API" --team mini --parallel
  cook plan '/cook testing "checkout" --template test-suite'`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// printError reports a command failure. Errors meant for the user are
// printed as-is; anything else is flagged as unexpected with a pointer to
// the log file.
func printError(w io.Writer, err error) {
	if errors.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintln(w, "Run 'cook run help' for the command grammar.")
		}
		return
	}
	fmt.Fprintf(w, "Error (%s): %v\n", errors.GetSeverity(err), err)
	fmt.Fprintln(w, "Run with --help for usage, or check the log file for details.")
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/cook/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults first so they apply even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("COOK")
	// COOK_SCHEDULER_MAX_CONCURRENT_AGENTS for scheduler.max_concurrent_agents
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine
	_ = viper.ReadInConfig()
}
