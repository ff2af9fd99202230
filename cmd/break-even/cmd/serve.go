package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/break-even/internal/server"
	"github.com/iwvelando/break-even/internal/widget"
	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	serverConfigPath string
	address          string
	maxUploadSize    string
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	serveOpts := &serveOptions{}

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, serveOpts)
		},
	}

	c.Flags().StringVar(&serveOpts.serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	c.Flags().StringVar(&serveOpts.address, "address", "", "listen address override")
	c.Flags().StringVar(&serveOpts.maxUploadSize, "max-upload-size", "", "maximum request body size override (e.g. 256K, 1M)")

	return c
}

func runServe(ctx context.Context, opts *rootOptions, serveOpts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	serverCfg, err := server.LoadConfig(serveOpts.serverConfigPath)
	if err != nil {
		return err
	}
	if serveOpts.address != "" {
		serverCfg.Address = serveOpts.address
	}
	if serveOpts.maxUploadSize != "" {
		size, err := server.ParseSize(serveOpts.maxUploadSize)
		if err != nil {
			return err
		}
		serverCfg.SetUploadSizeBytes(size)
	}

	conf, err := opts.loadConfiguration()
	if err != nil {
		return err
	}

	// Server logging settings take precedence over the calculator's.
	loggingConfig := conf.Logging
	if serverCfg.Logging.Level != "" || serverCfg.Logging.Format != "" || serverCfg.Logging.OutputFile != "" {
		loggingConfig = serverCfg.Logging
	}
	logger, err := initializeLogger(loggingConfig, opts.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	session, err := widget.NewSession(logger, conf)
	if err != nil {
		logger.Error("failed to start session",
			zap.String("op", "cmd.runServe"),
			zap.Error(err),
		)
		return err
	}
	defer func() {
		_ = session.Close()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := server.NewHandler(logger, session, serverCfg.UploadSizeBytes(), version)
	return server.Run(ctx, logger, serverCfg, handler)
}
