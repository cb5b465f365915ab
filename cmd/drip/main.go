package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexanderramin/drip/internal/api"
	"github.com/alexanderramin/drip/internal/cli"
	"github.com/alexanderramin/drip/internal/config"
	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/layout"
	"github.com/alexanderramin/drip/internal/publish"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.App.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	editorCfg := service.EditorConfig{
		NewLayouter: func() layout.Layouter {
			return layout.New(cfg.Layout.Engine)
		},
		Compiler: flow.NewCompiler(flow.WithLogger(logger)),
	}
	if cfg.Publish.RedisAddr != "" {
		client, err := publish.Dial(ctx, cfg.Publish.RedisAddr)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()
		editorCfg.Sink = publish.NewRedisSink(client, cfg.Publish.Channel)
	}

	campaigns := service.NewCampaignService(repository.NewSQLiteCampaignRepo(database), uow, observers...)
	editorSvc := service.NewEditorService(uow, editorCfg, observers...)

	app := &cli.App{
		Campaigns: campaigns,
		Editor:    editorSvc,
		Addr:      cfg.Server.Addr,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	if home, err := os.UserHomeDir(); err == nil {
		app.HistoryPath = filepath.Join(home, ".drip", "shell_history")
	}

	app.Serve = func(ctx context.Context, addr string) error {
		if cfg.App.Environment == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.Deps{
			Campaigns:   campaigns,
			Editor:      editorSvc,
			DB:          database,
			Logger:      logger,
			CORSOrigins: cfg.Server.CORSOrigins,
			Version:     version,
		})
		return api.Serve(ctx, addr, router, logger)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
