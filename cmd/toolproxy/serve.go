package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/provider/ollama"
	"github.com/Cyclone1070/toolproxy/internal/server"
	"github.com/Cyclone1070/toolproxy/internal/ui"
	"github.com/Cyclone1070/toolproxy/internal/workflow/loop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// run wires the proxy together and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger, err := buildLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	manager, resolver, err := createTools(cfg, logger)
	if err != nil {
		return err
	}

	client := ollama.NewOpenAIClient(cfg.Backend, nil)
	backend := ollama.New(client, logger.Named("backend"))
	toolLoop := loop.NewLoop(backend, manager, cfg)

	deps := &server.Dependencies{
		Loop:       toolLoop,
		Models:     backend,
		Config:     cfg,
		Logger:     logger.Named("http"),
		WorkingDir: resolver.WorkingDir(),
		ToolCount:  len(manager.Names()),
	}
	if cfg.Backend.UseAnthropicAPI {
		deps.Passthrough = ollama.NewPassthrough(client, cfg.Backend, logger.Named("passthrough"))
	}
	handler := server.NewRouter(deps)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	fmt.Fprintln(out, ui.Banner(bannerInfo(cfg, addr, resolver.Roots(), len(manager.Names()))))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out, closing connections", zap.Error(err))
			return srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("toolproxy stopped")
	return nil
}

func bannerInfo(cfg *config.Config, addr string, roots []string, tools int) ui.BannerInfo {
	commands := "enabled"
	switch {
	case !cfg.Sandbox.AllowCommands:
		commands = "disabled"
	case len(cfg.Sandbox.CommandAllowlist) > 0:
		commands = "allowlist: " + strings.Join(cfg.Sandbox.CommandAllowlist, ", ")
	}
	model := cfg.Backend.DefaultModel
	if cfg.Backend.ForceModel != "" {
		model = cfg.Backend.ForceModel + " (forced)"
	}
	backend := cfg.Backend.BaseURL
	if cfg.Backend.UseAnthropicAPI {
		backend += " (anthropic passthrough)"
	}
	info := ui.BannerInfo{
		Version:  version,
		Listen:   addr,
		Backend:  backend,
		Model:    model,
		Tools:    tools,
		Commands: commands,
	}
	if len(roots) > 0 {
		info.WorkingDir = roots[0]
		info.Allowed = roots[1:]
	}
	return info
}

func buildLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
