// Package cmd provides the CLI commands for break-even.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/break-even/internal/config"
	"github.com/iwvelando/break-even/internal/widget"
	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/iwvelando/break-even/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath   string
	outputFormat string
	logLevel     string
}

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree with fresh flag state.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "break-even",
		Short: "Compare manufacturing cost options by profit and break-even volume",
		Long: `break-even evaluates a set of manufacturing cost options that share a
selling price. It reports profit at a production volume, break-even volumes,
the best option per demand scenario and a short narrative insight.

Examples:
  break-even evaluate --volume 650000
  break-even scenarios --output-format csv
  break-even insight --volume 350,000
  break-even serve --address :9090`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newReportCommands(opts)...)
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "break-even version %s\n", version)
		},
	})

	return rootCmd
}

// loadConfiguration reads the configuration file. A missing file at the
// default location yields the built-in dataset.
func (o *rootOptions) loadConfiguration() (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err == nil {
		return conf, nil
	}
	if o.configPath == constants.DefaultConfigFile {
		if _, statErr := os.Stat(o.configPath); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
}

// resolveOutputFormat applies the CLI override over the configured format.
func (o *rootOptions) resolveOutputFormat(conf *config.Configuration) (string, error) {
	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

// openSession loads the configuration, builds the logger and starts a
// calculator session. The caller owns the returned logger and session.
func (o *rootOptions) openSession() (*zap.Logger, *widget.Session, *config.Configuration, error) {
	conf, err := o.loadConfiguration()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	conf.Normalize()
	session, err := widget.NewSession(logger, conf)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("op", "cmd.openSession"),
		zap.String("config", o.configPath),
		zap.Int("options", len(conf.Options)),
	)

	return logger, session, conf, nil
}
