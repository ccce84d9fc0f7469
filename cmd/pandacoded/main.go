// Package main is the web transport for the PandaCode editor shell. It
// serves the websocket event channel, the interactive PTY terminal and
// filesystem change notifications for a browser frontend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/config"
	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/provider/gemini"
	"github.com/pandacode/pandacode/internal/server"
	"github.com/pandacode/pandacode/internal/terminal"
	"github.com/pandacode/pandacode/internal/workspace"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.json)")
	workspacePath := flag.String("workspace", "", "workspace root (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigMissing) {
			log.Fatalf("configuration required: %v", err)
		}
		log.Fatalf("load config: %v", err)
	}
	if *workspacePath != "" {
		cfg.Workspace = *workspacePath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
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

	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured: set api_key in config.json or the GEMINI_API_KEY environment variable")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return fmt.Errorf("create Gemini client: %w", err)
	}

	watcher, err := server.NewWatcher(resolver)
	if err != nil {
		return fmt.Errorf("init workspace watcher: %w", err)
	}

	srv := server.New(
		cfg,
		fileops.NewService(resolver, ignore, cfg.Files.MaxFileSize),
		terminal.NewService(resolver, runner, time.Duration(cfg.Terminal.TimeoutSeconds)*time.Second),
		gitsvc.NewService(root, runner),
		assistant.New(gemini.New(gemini.NewRealClient(client), cfg.Model)),
		watcher,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
