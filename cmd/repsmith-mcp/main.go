package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/repsmith/internal/config"
	"github.com/claude/repsmith/internal/genai"
	"github.com/claude/repsmith/internal/mcp"
	"github.com/claude/repsmith/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	userID := flag.Int("user", 1, "user ID to scope all tool calls to")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repsmith-mcp", Version)
		return
	}

	// stdio transport owns stdout; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	opts := genai.Options{
		Enabled:         cfg.GenAI.Enabled,
		Model:           cfg.GenAI.Model,
		MaxRetries:      cfg.GenAI.MaxRetries,
		AttemptTimeout:  time.Duration(cfg.GenAI.AttemptTimeoutSec) * time.Second,
		BaseDelay:       time.Duration(cfg.GenAI.BaseDelayMs) * time.Millisecond,
		CacheTTL:        time.Duration(cfg.GenAI.CacheTTLMin) * time.Minute,
		CacheMaxEntries: cfg.GenAI.CacheMaxEntries,
	}
	var client genai.RemoteClient
	if cfg.GenAI.Enabled {
		client = genai.NewAnthropicClient(cfg.GenAI.Endpoint, cfg.GenAI.APIKey, cfg.GenAI.Model)
	}
	builder := genai.NewContextBuilder(db, db, db, log)
	engine := genai.NewEngine(opts, client, builder, nil, log)

	s := mcp.New(engine, db, Version, log)

	log.Info("repsmith-mcp serving on stdio", "user", *userID)
	if err := mcpserver.ServeStdio(s,
		mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, *userID)
		}),
	); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
