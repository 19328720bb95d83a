package main

import (
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool/directory"
	"github.com/Cyclone1070/toolproxy/internal/tool/file"
	"github.com/Cyclone1070/toolproxy/internal/tool/search"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/executor"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/git"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/path"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/policy"
	"github.com/Cyclone1070/toolproxy/internal/tool/shell"
	"github.com/Cyclone1070/toolproxy/internal/workflow/toolmanager"
	"go.uber.org/zap"
)

// ignoreMatcher is satisfied by both the gitignore matcher and its no-op stand-in.
type ignoreMatcher interface {
	ShouldIgnore(abs string, isDir bool) bool
}

// createTools builds the sandbox services and registers the seven proxy tools.
func createTools(cfg *config.Config, logger *zap.Logger) (*toolmanager.ToolManager, *path.Resolver, error) {
	osFS := fs.NewOSFileSystem()

	resolver, err := path.NewResolver(osFS, cfg.Sandbox.WorkingDirectory, cfg.Sandbox.AllowedDirectories)
	if err != nil {
		return nil, nil, fmt.Errorf("sandbox: %w", err)
	}

	var ignore ignoreMatcher = git.NoOpMatcher{}
	if cfg.Sandbox.RespectGitignore {
		m, err := git.NewIgnoreMatcher(resolver.Roots(), osFS)
		if err != nil {
			logger.Warn("gitignore rules not loaded, listing everything", zap.Error(err))
		} else {
			ignore = m
		}
	}

	gate := policy.NewCommandGate(cfg.Sandbox.AllowCommands, cfg.Sandbox.CommandAllowlist)
	commandExecutor := executor.NewOSCommandExecutor(cfg)

	manager, err := toolmanager.NewToolManager(
		file.NewReadFileTool(osFS, resolver, cfg),
		file.NewWriteFileTool(osFS, resolver, cfg),
		file.NewEditFileTool(osFS, resolver, cfg),
		directory.NewListDirectoryTool(osFS, resolver, ignore, cfg),
		directory.NewGlobFilesTool(osFS, resolver, ignore, cfg),
		search.NewGrepSearchTool(osFS, resolver, ignore, cfg),
		shell.NewRunCommandTool(osFS, gate, commandExecutor, resolver, cfg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("register tools: %w", err)
	}
	return manager, resolver, nil
}
