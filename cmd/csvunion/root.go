package main

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvunion/internal/config"
	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/csvread"
	"github.com/JonMunkholm/csvunion/internal/logging"
	"github.com/JonMunkholm/csvunion/internal/source"
)

// options are the flags shared by every subcommand.
type options struct {
	envFile  string
	logLevel string
	noFiles  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "csvunion",
		Short:         "Infer CSV column types and merge tables over a union schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load if present")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&opts.noFiles, "no-files", false, "refuse local paths and file:// locators")

	root.AddCommand(newMergeCmd(opts), newInferCmd(opts))
	return root
}

// newService loads configuration and wires a Service. Logs go to stderr so
// stdout carries only results.
func (o *options) newService(stderr io.Writer) (*core.Service, error) {
	// The dotenv file is optional.
	_ = godotenv.Load(o.envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(stderr, o.logLevel, cfg.Logging.Format))

	fetch := cfg.Fetch
	fetch.AllowFiles = !o.noFiles
	router, err := source.NewRouter(fetch, cfg.S3)
	if err != nil {
		return nil, err
	}

	return core.NewService(router, csvread.Reader{}, core.ServiceConfig{
		MaxTables:   cfg.Merge.MaxTables,
		MaxParallel: cfg.Merge.MaxParallel,
	}), nil
}
