package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	httptransport "github.com/miloszkon/supportbot/internal/api/http"
	"github.com/miloszkon/supportbot/internal/api/http/handlers"
	"github.com/miloszkon/supportbot/internal/auth"
	"github.com/miloszkon/supportbot/internal/bot"
	"github.com/miloszkon/supportbot/internal/clock"
	"github.com/miloszkon/supportbot/internal/config"
	"github.com/miloszkon/supportbot/internal/events"
	"github.com/miloszkon/supportbot/internal/observability"
	"github.com/miloszkon/supportbot/internal/platform"
	"github.com/miloszkon/supportbot/internal/platform/telegram"
	"github.com/miloszkon/supportbot/internal/service"
	"github.com/miloszkon/supportbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics("supportbot")
	clk := clock.NewSystem()

	conn, err := bot.Connect(cfg.Telegram)
	if err != nil {
		logger.Fatal("failed to connect to telegram", zap.Error(err))
	}
	gateway := telegram.NewGateway(conn, cfg.Telegram.AdminChatID, logger)

	tickets := store.NewTicketStore()
	pending := store.NewPendingTopicStore()
	dispatcher := events.NewInMemoryDispatcher()

	// operators act through the ops API with signed tokens; the chat
	// platform grants the capability to group admins
	operators := append([]string{"bootstrap"}, cfg.Ops.Operators...)
	identity := platform.AnyOf{
		gateway,
		platform.NewStaticIdentity(operators),
	}

	lifecycle := service.NewLifecycleManager(service.LifecycleConfig{
		SupportCategory:     cfg.Telegram.SupportCategory,
		InactivityThreshold: cfg.Ticket.InactivityThreshold,
		PollInterval:        cfg.Ticket.PollInterval,
		DeletionDelay:       cfg.Ticket.DeletionDelay,
	}, service.LifecycleDependencies{
		Tickets:    tickets,
		Channels:   gateway,
		Notifier:   gateway,
		Identity:   identity,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
		Metrics:    metrics,
	})

	router := service.NewMessageRouter(service.RouterConfig{
		AdminChannel:    gateway.AdminChannel(),
		SelectionWindow: cfg.Ticket.SelectionWindow,
	}, service.RouterDependencies{
		Pending:    pending,
		Lifecycle:  lifecycle,
		Notifier:   gateway,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
		Metrics:    metrics,
	})

	audit := service.NewAuditService(dispatcher, logger)
	audit.RegisterHandlers()

	surface := bot.New(conn, cfg.Ticket, bot.Dependencies{
		Router:    router,
		Lifecycle: lifecycle,
		Clock:     clk,
		Logger:    logger,
	})
	go surface.Start()
	logger.Info("bot started", zap.String("env", cfg.App.Env))

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 1m", func() {
		if removed := pending.Sweep(clk.Now()); removed > 0 {
			logger.Debug("swept expired topic selections", zap.Int("removed", removed))
		}
		metrics.SetPendingTopics(pending.Len())
	}); err != nil {
		logger.Fatal("failed to schedule topic sweep", zap.Error(err))
	}
	sweeper.Start()

	tokens := auth.NewTokenManager(cfg.Ops.JWTSecret, cfg.Ops.TokenTTLMinutes)
	if cfg.Ops.PrintBootstrapToken {
		token, expiresAt, err := tokens.GenerateToken("bootstrap", auth.RoleManagement)
		if err != nil {
			logger.Fatal("failed to issue bootstrap token", zap.Error(err))
		}
		logger.Info("bootstrap ops token issued",
			zap.String("token", token),
			zap.Time("expires_at", expiresAt))
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Env, gateway.Probe),
		Ops:            handlers.NewOpsHandler(lifecycle, pending),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sweeper.Stop()
	surface.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
