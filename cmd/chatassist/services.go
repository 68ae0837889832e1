package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/internal/providers/llm"
	"github.com/sandevgo/chatassist/internal/providers/search"
	"github.com/sandevgo/chatassist/internal/service/agent"
	"github.com/sandevgo/chatassist/internal/service/command"
	"github.com/sandevgo/chatassist/internal/service/prompt"
	"github.com/sandevgo/chatassist/internal/storage/sqlite"
	"github.com/sandevgo/chatassist/internal/transport/telegram"
	"github.com/sandevgo/chatassist/internal/transport/web"
	"github.com/sandevgo/chatassist/pkg/log"
	"github.com/sandevgo/chatassist/pkg/srv"
	"github.com/sandevgo/chatassist/pkg/tokens"
)

// App holds the wired core shared by every front-end.
type App struct {
	cfg     *config.AppConfig
	agent   *agent.Agent
	router  *command.Router
	cleanup []srv.Service
}

// NewApp loads the configuration and wires providers, storage and the agent.
// Configuration errors are fatal.
func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)
	app := &App{}

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	app.cfg = config.NewAppConfig(ctx)

	// 2. Transcript archive
	var archive core.TranscriptRepository
	if app.cfg.TranscriptEnabled {
		if err := os.MkdirAll(app.cfg.GetRuntimePath(), 0o755); err != nil {
			logger.Fatal().Err(err).Msg("failed to create runtime directory")
		}
		db, err := sqlite.NewDB(ctx, app.cfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize storage")
		}
		app.cleanup = append(app.cleanup, srv.NewCleanup(db.Close))
		archive = sqlite.NewTranscriptRepo(db)
	}

	// 3. Completion client
	client, err := llm.NewClientFromConfig(ctx, app.cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize completion client")
	}

	// 4. Retrieval
	retriever := search.NewRetriever(ctx, app.cfg, client.Embedder())

	// 5. Agent and commands
	app.agent = agent.NewAgent(
		app.cfg,
		client,
		retriever,
		prompt.NewSystem(app.cfg),
		archive,
		tokens.NewCounter(app.cfg.GetModel()),
	)
	app.router = command.New(command.NewCommands(app.agent))

	logger.Info().
		Str("provider", app.cfg.Provider).
		Str("model", client.Model()).
		Bool("rag", app.cfg.EnableRAG).
		Bool("transcripts", app.cfg.TranscriptEnabled).
		Msg("assistant ready")

	return app
}

// Services returns the cleanups followed by every enabled front-end, so that
// shutdown stops the front-ends before closing storage.
func (a *App) Services(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := append([]srv.Service{}, a.cleanup...)

	if a.cfg.EnableWeb {
		server, err := web.NewServer(ctx, a.cfg, a.agent, a.router)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize web server")
		}
		services = append(services, server)
	}

	if a.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.cfg, a.agent, a.router)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	return services
}

// Close runs the cleanups in reverse order. Used when no service loop runs.
func (a *App) Close(ctx context.Context) {
	logger := log.FromCtx(ctx)
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", a.cleanup[i])
		}
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// godotenv.Load never overrides variables already set in the process.
	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
