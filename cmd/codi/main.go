package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/bot"
	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/conversation"
	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/llm"
	"pkdindustries/codi/internal/search"
	"pkdindustries/codi/internal/session"
	"pkdindustries/codi/internal/tools"
	"pkdindustries/codi/internal/web"
)

func main() {
	fmt.Printf("%s\n", bot.GetBanner(bot.Version))

	cmd := &cli.Command{
		Name:    "codi",
		Usage:   "finance answers with sources",
		Version: bot.Version,
		Flags:   config.GetFlags(),
		Action:  runWeb,
		Commands: []*cli.Command{
			{
				Name:   "web",
				Usage:  "serve the browser chat widget",
				Action: runWeb,
			},
			{
				Name:   "irc",
				Usage:  "join an irc channel",
				Action: runIRC,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the pieces shared by every front-end
type app struct {
	cfg    *config.Configuration
	driver *conversation.Driver
	store  *session.Store
}

func setup(ctx context.Context, c *cli.Command, verify func(*config.Configuration) error) (*app, error) {
	cfg := config.NewConfiguration(c)
	core.InitLogger(cfg.Bot.Verbose)

	if err := verify(cfg); err != nil {
		return nil, err
	}
	if cfg.Bot.Verbose {
		cfg.PrintConfig()
	}

	completer := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.API.OpenAIKey,
		BaseURL:     cfg.API.OpenAIURL,
		Model:       cfg.Model.Model,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		TopP:        cfg.Model.TopP,
		Timeout:     cfg.API.Timeout,
	})

	searcher := search.NewClient(cfg.Search.APIKey,
		search.WithBaseURL(cfg.Search.URL),
		search.WithEngine(cfg.Search.Engine),
		search.WithLimit(cfg.Search.Results),
		search.WithTimeout(cfg.Search.Timeout),
	)

	registry := tools.NewRegistry(tools.NewSearchTool(searcher))
	zap.S().Infow("Loaded tools", "count", registry.Len(), "model", completer.String())

	driver := conversation.NewDriver(completer, registry, conversation.WithStream(cfg.Bot.Stream))

	store := session.NewStore(cfg.Bot.Prompt, cfg.Session.TTL)
	store.StartReaper(ctx, time.Minute)

	return &app{cfg: cfg, driver: driver, store: store}, nil
}

func runWeb(ctx context.Context, c *cli.Command) error {
	a, err := setup(ctx, c, (*config.Configuration).Verify)
	if err != nil {
		return err
	}
	defer zap.L().Sync()

	return web.NewServer(a.cfg, a.driver, a.store).ListenAndServe(ctx)
}

func runIRC(ctx context.Context, c *cli.Command) error {
	a, err := setup(ctx, c, (*config.Configuration).VerifyIRC)
	if err != nil {
		return err
	}
	defer zap.L().Sync()

	return bot.Run(ctx, a.cfg, a.driver, a.store)
}
