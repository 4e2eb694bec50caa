// Package cmd implements the mailfix command line.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailfix/internal/config"
	"github.com/zostay/go-mailfix/internal/logging"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
	logger  = zerolog.Nop()

	rootCmd = &cobra.Command{
		Use:               "mailfix",
		Short:             "Normalize the headers of email messages",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path to a YAML configuration file")
	flags.String("log-level", "info", "log level: debug, info, warn, or error")
	flags.String("log-format", "console", "log format: json or console")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
}

// setup loads the configuration and builds the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	logger = logging.New(cfg.Log)
	return nil
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}
