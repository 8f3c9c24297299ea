// Package main implements the procvalidity CLI.
package main

import (
	"os"

	"github.com/gofhir/procvalidity/internal/config"
	"github.com/gofhir/procvalidity/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// app holds what the persistent flags resolve to.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "procvalidity",
		Short:         "Reconcile procedure validity windows of hospital cases",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (YAML or JSON)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: console, json (overrides config)")

	rootCmd.AddCommand(reconcileCmd(a))
	rootCmd.AddCommand(streamCmd(a))
	rootCmd.AddCommand(catalogCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	format := cfg.Log.Format
	if a.logFormat != "" {
		format = a.logFormat
	}

	a.log, err = logger.New(cmd.ErrOrStderr(), level, format)
	return err
}
