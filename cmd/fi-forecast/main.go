package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/fi-forecast/internal/config"
	"github.com/iwvelando/fi-forecast/internal/host"
	"github.com/iwvelando/fi-forecast/internal/optimizer"
	"github.com/iwvelando/fi-forecast/internal/server"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/output"
	"github.com/iwvelando/fi-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	// Stdout carries the report.
	zapConfig.OutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

type cliOptions struct {
	configPath       string
	serverConfigPath string
	outputFormat     string
	logLevel         string
	address          string
	maxBodySize      string
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "fi-forecast",
		Short:         "Project and optimize the age of financial independence",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	project := &cobra.Command{
		Use:   "project",
		Short: "Print the baseline FI age and the per-age breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, false)
		},
	}
	project.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, yaml")

	optimize := &cobra.Command{
		Use:   "optimize",
		Short: "Search investment scenarios that reach FI sooner and recommend one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, true)
		},
	}
	optimize.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, yaml")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serve.Flags().StringVar(&opts.address, "address", "", "listen address override")
	serve.Flags().StringVar(&opts.maxBodySize, "max-body-size", "", "request body limit override (e.g. 512K)")

	root.AddCommand(project, optimize, serve)
	return root
}

func runPlan(ctx context.Context, opts *cliOptions, optimizeRun bool) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	runner, err := optimizer.NewRunner(logger, conf.OptimizerOptions(), conf.AdvisoryChain(logger))
	if err != nil {
		return err
	}

	inputs, warnings := conf.Plan.Inputs()
	report := output.Report{
		Inputs:        inputs,
		BaselineFIAge: runner.BaselineFIAge(inputs),
		Breakdown:     runner.Breakdown(inputs),
		Warnings:      warnings,
	}

	if optimizeRun {
		result, err := runOptimization(ctx, logger, conf, runner, report)
		if err != nil {
			return err
		}
		report.Optimization = &result
	}

	return output.Write(os.Stdout, outputFormat, report)
}

func runOptimization(ctx context.Context, logger *zap.Logger, conf *config.Configuration, runner *optimizer.Runner, report output.Report) (optimization.Result, error) {
	h := host.New(logger, conf.Optimizer.MaxConcurrentRuns)
	defer h.Close()

	session := h.Session()
	defer session.Close()

	run := session.Submit(ctx, func(ctx context.Context) optimization.Result {
		return runner.Run(ctx, report.Inputs)
	})
	result, err := run.Wait(ctx)
	if err != nil {
		return optimization.Result{}, fmt.Errorf("optimization failed: %w", err)
	}

	logger.Info("optimization finished",
		zap.String("op", "main"),
		zap.Uint64("runId", run.ID),
		zap.Bool("synchronous", run.Synchronous()),
		zap.Int("solutions", len(result.Solutions)),
	)
	return result, nil
}

func runServe(ctx context.Context, opts *cliOptions) error {
	serverConf, err := server.LoadConfig(opts.serverConfigPath)
	if err != nil {
		return err
	}
	if opts.address != "" {
		serverConf.Address = opts.address
	}
	if opts.maxBodySize != "" {
		size, err := server.ParseSize(opts.maxBodySize)
		if err != nil {
			return err
		}
		serverConf.SetBodySizeBytes(size)
	}

	logger, err := initializeLogger(serverConf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// The planning config is optional for the server; its plan section is unused.
	conf := config.Default()
	if _, statErr := os.Stat(opts.configPath); statErr == nil {
		loaded, err := config.LoadConfiguration(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
		}
		conf = *loaded
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat configuration at %s: %w", opts.configPath, statErr)
	}

	runner, err := optimizer.NewRunner(logger, conf.OptimizerOptions(), conf.AdvisoryChain(logger))
	if err != nil {
		return err
	}
	h := host.New(logger, conf.Optimizer.MaxConcurrentRuns)
	defer h.Close()

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           server.NewHandler(logger, runner, h, serverConf.BodySizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.serve"),
			zap.String("address", serverConf.Address),
			zap.Int64("maxBodySize", serverConf.BodySizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
}
