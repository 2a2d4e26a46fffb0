package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/csapi/cmd/csapi/commands"
	"github.com/fivetwenty-io/csapi/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "csapi",
	Short: "CloudStack API CLI",
	Long: `A command-line interface for the CloudStack API.

Every call is signed with your API key and secret key. Asynchronous
operations such as VM deployment are polled until they complete.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringP("config", "c", "", "config file (default is $HOME/.csapi/config.yml)")
	flags.StringP("api", "a", "", "API endpoint URL")
	flags.String("api-key", "", "API key")
	flags.String("secret-key", "", "secret key used to sign requests")
	flags.String("output", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.Duration("http-timeout", constants.DefaultHTTPTimeout, "timeout of a single API request")
	flags.Duration("poll-interval", constants.DefaultPollInterval, "pause between two job status queries")
	flags.Duration("poll-timeout", constants.DefaultJobPollTimeout, "time to wait for an asynchronous job")
	flags.String("catalog", "", "TOML file with additional operations")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":        "config",
		"api":           "api",
		"api_key":       "api-key",
		"secret_key":    "secret-key",
		"output":        "output",
		"verbose":       "verbose",
		"no_color":      "no-color",
		"http_timeout":  "http-timeout",
		"poll_interval": "poll-interval",
		"poll_timeout":  "poll-timeout",
		"catalog_file":  "catalog",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewConfigureCommand())
	rootCmd.AddCommand(commands.NewZonesCommand())
	rootCmd.AddCommand(commands.NewTemplatesCommand())
	rootCmd.AddCommand(commands.NewOfferingsCommand())
	rootCmd.AddCommand(commands.NewVMsCommand())
	rootCmd.AddCommand(commands.NewSystemVMsCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewCallCommand())
	rootCmd.AddCommand(commands.NewOperationsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.csapi/config.yml
		viper.AddConfigPath(filepath.Join(home, ".csapi"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("CSAPI")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
