package main

import (
	"chat-relay/contract"
	"chat-relay/infrastructure/tcp"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until SIGINT or SIGTERM.
// Deferred cleanups always run before the process exits.
func run(args []string) (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.applyArgs(args); err != nil {
		return exitConfig, err
	}
	if err := config.validate(); err != nil {
		return exitConfig, fmt.Errorf("invalid config: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Shared state & routing
	router := runtime.NewRouter(log, runtime.NewClientRegistry(), runtime.NewRoomRegistry()).
		WithWelcomeName(config.WelcomeName)
	if config.ModerationWordsDir != "" {
		moderator, err := loadModerator(log, config)
		if err != nil {
			return exitConfig, err
		}
		router.WithModerator(moderator)
	}

	// 3. Listener, bound now so a busy port fails the startup
	server := tcp.NewServer(log, router, tcp.Config{
		Address:           config.Address(),
		MaxFrameBytes:     config.MaxFrameBytes,
		OutboundQueueSize: config.OutboundQueueSize,
		WriteTimeout:      config.WriteTimeout,
		MaxUsernameLength: config.MaxUsernameLength,
	})
	if err := server.Listen(); err != nil {
		return exitRuntime, err
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision
	var sup contract.ISupervisor = workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(server, workers.NewTelemetryWorker(log, router, config.TelemetryInterval))
	// Run blocks until the signal context is canceled and every worker returned
	sup.Run(ctx)
	log.Info("Program stopped cleanly")
	return exitOK, nil
}

func loadModerator(log *slog.Logger, config Config) (*moderation.Moderator, error) {
	data, err := runtime.NewCensoredLoader(os.DirFS(config.ModerationWordsDir)).LoadAll(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load censored words from %s: %w", config.ModerationWordsDir, err)
	}
	moderator, err := moderation.NewModerator(data.Words, config.CensoredChar(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to build moderator: %w", err)
	}
	log.Info("Moderation enabled", "words", len(data.Words), "languages", data.Languages)
	return moderator, nil
}
