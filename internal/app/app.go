// Package app wires configuration, clients and the publish pipeline together.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"air_bot/internal/alert"
	"air_bot/internal/bot"
	"air_bot/internal/cli"
	"air_bot/internal/config"
	"air_bot/internal/fetcher"
	"air_bot/internal/model"
	"air_bot/internal/provider/airparif"
	"air_bot/internal/provider/atmosud"
	"air_bot/internal/social"
)

// ExitFailure is the exit code of every failed run.
const ExitFailure = 1

// Main is the body of the provider commands. It returns the process exit code.
func Main(ctx context.Context, provider string, args []string) int {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("load .env", "error", err)
		return ExitFailure
	}

	req, err := cli.Parse(provider, actions(provider), args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		slog.Error("parse arguments", "error", err)
		return ExitFailure
	}

	cfg, err := config.Load(provider)
	if err != nil {
		slog.Error("load config", "error", err)
		return ExitFailure
	}

	log := NewLogger(cfg.LogLevel, req.Verbose)
	log.Debug("resolved request", "provider", provider, "action", req.Action, "dry_run", req.DryRun)

	if err := Run(ctx, cfg, req, log); err != nil {
		log.Error("run failed", "provider", provider, "action", req.Action, "error", err)
		Report(cfg, req.Action, err, log)
		return ExitFailure
	}
	return 0
}

// Run executes one request against the configured provider.
func Run(ctx context.Context, cfg *config.Config, req model.Request, log *slog.Logger) error {
	p, err := NewProvider(cfg, http.DefaultClient)
	if err != nil {
		return err
	}

	pub := social.New(cfg.MastodonInstance, cfg.MastodonToken)
	b := bot.New(p, pub, bot.Options{
		MediaDir:   cfg.Media.Dir,
		MediaDelay: cfg.Media.Delay,
	}, log.With("provider", p.Name()))

	if err := b.Validate(req); err != nil {
		return err
	}

	acct, err := pub.Verify(ctx)
	if err != nil {
		return err
	}
	log.Info("authenticated", "account", acct)

	return b.Run(ctx, req)
}

// NewProvider builds the data provider client selected by cfg.
func NewProvider(cfg *config.Config, client fetcher.HTTPClient) (bot.Provider, error) {
	switch cfg.Provider {
	case config.ProviderAirParif:
		return airparif.New(client, cfg.AirParifAPIKey, cfg.AirParif.Settings()), nil
	case config.ProviderAtmoSud:
		return atmosud.New(client, cfg.AtmoSud.GIFURL), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Report sends a failure alert when alerts are configured. Delivery errors
// are logged only.
func Report(cfg *config.Config, action model.Action, runErr error, log *slog.Logger) {
	if !cfg.Telegram.Enabled() {
		return
	}
	n, err := alert.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Error("create alert notifier", "error", err)
		return
	}
	if err := n.Failure(providerName(cfg.Provider), action, runErr); err != nil {
		log.Error("send failure alert", "error", err)
	}
}

// NewLogger builds the process logger. Verbose forces debug level.
func NewLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func actions(provider string) []model.Action {
	switch provider {
	case config.ProviderAirParif:
		return airparif.SupportedActions()
	case config.ProviderAtmoSud:
		return atmosud.SupportedActions()
	default:
		return nil
	}
}

func providerName(provider string) string {
	switch provider {
	case config.ProviderAirParif:
		return airparif.Name
	case config.ProviderAtmoSud:
		return atmosud.Name
	default:
		return provider
	}
}
