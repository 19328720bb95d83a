// Package main runs toolproxy, an HTTP proxy that executes sandboxed file and shell tools
// on behalf of a model served by Ollama.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// options mirrors the command-line flags. Only flags the user actually set override the config.
type options struct {
	configPath       string
	host             string
	port             int
	ollamaURL        string
	useAnthropicAPI  bool
	authToken        string
	workingDir       string
	allowedDirs      []string
	noCommands       bool
	commandAllowlist []string
	noInjectTools    bool
	maxIterations    int
	defaultModel     string
	forceModel       string
	logLevel         string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "toolproxy",
		Short:         "OpenAI and Anthropic compatible proxy that runs coding tools for an Ollama model",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, config.NewLoader())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}

	bindFlags(cmd, opts)
	return cmd
}

func bindFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (.json, .yaml or .yml); default ~/.config/toolproxy/config.json")
	f.StringVar(&opts.host, "host", "", "address to listen on")
	f.IntVarP(&opts.port, "port", "p", 0, "port to listen on")
	f.StringVar(&opts.ollamaURL, "ollama-url", "", "Ollama base URL")
	f.BoolVar(&opts.useAnthropicAPI, "use-anthropic-api", false, "relay /v1/messages to the backend's Anthropic-compatible API without running tools")
	f.StringVar(&opts.authToken, "auth-token", "", "token clients must present as a Bearer token or x-api-key")
	f.StringVarP(&opts.workingDir, "working-dir", "w", "", "sandbox working directory (default: current directory)")
	f.StringSliceVar(&opts.allowedDirs, "allowed-dirs", nil, "additional directories tools may access")
	f.BoolVar(&opts.noCommands, "no-commands", false, "disable run_command")
	f.StringSliceVar(&opts.commandAllowlist, "command-allowlist", nil, "command prefixes run_command may execute (empty allows all)")
	f.BoolVar(&opts.noInjectTools, "no-inject-tools", false, "do not add the proxy tools to requests without tools")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "maximum tool-loop round trips per request")
	f.StringVar(&opts.defaultModel, "default-model", "", "model used when a request names none")
	f.StringVar(&opts.forceModel, "force-model", "", "model used for every request regardless of what it names")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// loadConfig builds the effective configuration: defaults, then the config file, then the
// environment, then flags. The result is validated.
func loadConfig(cmd *cobra.Command, opts *options, loader *config.Loader) (*config.Config, error) {
	cfg, err := loader.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Server.Host = opts.host
	}
	if changed("port") {
		cfg.Server.Port = opts.port
	}
	if changed("ollama-url") {
		cfg.Backend.BaseURL = opts.ollamaURL
	}
	if changed("use-anthropic-api") {
		cfg.Backend.UseAnthropicAPI = opts.useAnthropicAPI
	}
	if changed("auth-token") {
		cfg.Server.AuthToken = opts.authToken
	}
	if changed("working-dir") {
		cfg.Sandbox.WorkingDirectory = opts.workingDir
	}
	if changed("allowed-dirs") {
		cfg.Sandbox.AllowedDirectories = opts.allowedDirs
	}
	if changed("no-commands") {
		cfg.Sandbox.AllowCommands = !opts.noCommands
	}
	if changed("command-allowlist") {
		cfg.Sandbox.CommandAllowlist = opts.commandAllowlist
	}
	if changed("no-inject-tools") {
		cfg.Tools.InjectTools = !opts.noInjectTools
	}
	if changed("max-iterations") {
		cfg.Tools.MaxIterations = opts.maxIterations
	}
	if changed("default-model") {
		cfg.Backend.DefaultModel = opts.defaultModel
	}
	if changed("force-model") {
		cfg.Backend.ForceModel = opts.forceModel
	}
	if changed("log-level") {
		cfg.Server.LogLevel = opts.logLevel
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
