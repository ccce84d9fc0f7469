// Package main is the terminal frontend for the PandaCode editor shell:
// file browser, editor preview, workspace terminal and AI assistant in
// one bubbletea program.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/config"
	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/provider/gemini"
	"github.com/pandacode/pandacode/internal/terminal"
	"github.com/pandacode/pandacode/internal/ui"
	"github.com/pandacode/pandacode/internal/workspace"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.json)")
	workspacePath := flag.String("workspace", "", "workspace root (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigMissing) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Create a config.json or pass -config. Minimal example:")
			fmt.Fprintln(os.Stderr, `  {"api_key": "...", "workspace": "workspace"}`)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *workspacePath != "" {
		cfg.Workspace = *workspacePath
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	root, err := workspace.CanonicaliseRoot(cfg.Workspace)
	if err != nil {
		return err
	}
	cfg.Workspace = root

	resolver := workspace.NewResolver(root)
	runner := executor.NewOSRunner(
		int(cfg.Terminal.MaxOutputSize),
		time.Duration(cfg.Terminal.GracefulShutdownMs)*time.Millisecond,
	)

	ignore, err := fileops.NewIgnoreMatcher(root)
	if err != nil {
		return fmt.Errorf("load .gitignore: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	renderer, err := ui.NewMarkdownRenderer(80)
	if err != nil {
		return fmt.Errorf("init markdown renderer: %w", err)
	}

	model := ui.New(
		fileops.NewService(resolver, ignore, cfg.Files.MaxFileSize),
		terminal.NewService(resolver, runner, time.Duration(cfg.Terminal.TimeoutSeconds)*time.Second),
		gitsvc.NewService(root, runner),
		assistant.New(backend),
		renderer,
	)
	return ui.Run(model)
}

func newBackend(cfg *config.Config) (*gemini.Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set api_key in config.json or the GEMINI_API_KEY environment variable")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return gemini.New(gemini.NewRealClient(client), cfg.Model), nil
}
