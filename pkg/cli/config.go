package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/whisker/pkg/adapter"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Cat API
	apiKey  string
	baseURL string
	timeout time.Duration

	// Logging
	logLevel  string
	logFormat string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-key",
			Aliases:     []string{"k"},
			Usage:       "The Cat API key",
			Sources:     cli.EnvVars("WHISKER_API_KEY", "CAT_API_KEY", "VITE_CAT_API_KEY"),
			Destination: &cfg.apiKey,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of The Cat API",
			Value:       adapter.DefaultCatAPIBaseURL,
			Sources:     cli.EnvVars("WHISKER_BASE_URL"),
			Destination: &cfg.baseURL,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of each Cat API request",
			Value:       adapter.DefaultCatAPITimeout,
			Sources:     cli.EnvVars("WHISKER_TIMEOUT"),
			Destination: &cfg.timeout,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("WHISKER_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       string(logging.FormatConsole),
			Sources:     cli.EnvVars("WHISKER_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// setup configures the logger and returns a context carrying it
func (cfg *config) setup(ctx context.Context, c *cli.Command) context.Context {
	logger := logging.New(logging.Options{
		Level:  cfg.logLevel,
		Format: logging.ParseFormat(cfg.logFormat),
		Writer: c.Root().ErrWriter,
	})
	logging.SetDefault(logger)

	if cfg.apiKey == "" {
		logger.Warn("Cat API key: Missing", "hint", "set WHISKER_API_KEY or --api-key")
	} else {
		logger.Debug("Cat API key: Present")
	}

	return logging.With(ctx, logger)
}

// newCatAPI creates a new Cat API adapter instance
func (cfg *config) newCatAPI() adapter.CatAPI {
	return adapter.NewCatAPI(cfg.apiKey,
		adapter.WithBaseURL(cfg.baseURL),
		adapter.WithTimeout(cfg.timeout),
	)
}
