package cmd

import (
	"context"
	"log/slog"

	"github.com/ostafen/pnglet/internal/config"
	"github.com/ostafen/pnglet/internal/env"
	"github.com/ostafen/pnglet/internal/logger"
	"github.com/spf13/cobra"
)

type appKey struct{}

// app carries what every command needs: the loaded configuration and the
// logger built from the persistent flags.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error
}

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               env.AppName,
		Short:             env.AppName + " - PNG encoder, decoder and carver",
		PersistentPreRunE: setupApp,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).closeLog()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path of the configuration file (default $XDG_CONFIG_HOME/pnglet/config.yml)")
	flags.String("log-level", "", "minimum log level: DEBUG, INFO, WARN or ERROR")
	flags.String("log-file", "", "additionally write JSON logs to this file")
	flags.BoolP("quiet", "q", false, "do not log to the console")

	rootCmd.AddCommand(
		DefineEncodeCommand(),
		DefineDecodeCommand(),
		DefineInfoCommand(),
		DefineChunksCommand(),
		DefineDumpCommand(),
		DefineVerifyCommand(),
		DefineScanCommand(),
		DefineRecoverCommand(),
		DefineMountCommand(),
	)
	return rootCmd
}

func setupApp(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level, _ = cmd.Flags().GetString("log-level")
	}
	logFile, _ := cmd.Flags().GetString("log-file")
	quiet, _ := cmd.Flags().GetBool("quiet")

	log, closeLog, err := logger.New(logger.Options{
		Level:   logger.ParseLevel(level),
		Console: cmd.ErrOrStderr(),
		File:    logFile,
		Quiet:   quiet,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, &app{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
	}))
	return nil
}

func appFrom(cmd *cobra.Command) *app {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a
		}
	}
	return &app{
		cfg:      config.Default(),
		log:      logger.Discard(),
		closeLog: func() error { return nil },
	}
}
