package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	service "github.com/okian/gradematch/internal/app"
	"github.com/okian/gradematch/internal/config"
	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/pkg/logger"
)

type commandContext struct {
	configFlag *string
	logOutput  io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logOutput: os.Stderr}
}

// ensureConfig loads configuration once and initializes the global logger from it.
func (c *commandContext) ensureConfig(ctx context.Context) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(ctx, path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := logger.Init(logger.WithWriter(c.logOutput), logger.WithFormat(cfg.LogFormat)); err != nil {
			c.configErr = fmt.Errorf("initialize logging: %w", err)
			return
		}
		// Apply configured log level (fallback to info on invalid input)
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(ctx, "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newService builds the matching service from configuration.
func (c *commandContext) newService(cfg *config.Config) *service.Service {
	log := logger.Named("service")
	return service.New(
		service.WithLogger(log),
		service.WithFuzzyThreshold(cfg.FuzzyThreshold),
		service.WithPassThreshold(cfg.PassThreshold),
		service.WithFallbackScore(cfg.FallbackScore),
		service.WithOutputName(cfg.OutputName),
		service.WithResolver(columns.NewKeywordResolver(
			columns.WithKeywords(columns.Keywords{
				Name:       cfg.NameKeywords,
				Score:      cfg.ScoreKeywords,
				Identifier: cfg.IdentifierKeywords,
			}),
			columns.WithLogger(logger.Named("columns")),
		)),
	)
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "gradematch",
		Short:         "Match quiz responses to a class roster and derive final scores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (yaml or toml)")

	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newColumnsCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
