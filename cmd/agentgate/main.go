// AgentGate - OpenAI-compatible gateway for agent and workflow execution.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agentgate/agentgate"
	"github.com/agentgate/agentgate/config"
	"github.com/agentgate/agentgate/logging"
	"github.com/agentgate/agentgate/provider/anthropic"
	"github.com/agentgate/agentgate/provider/openai"
	"github.com/agentgate/agentgate/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Missing .env is fine; ambient environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefaultSlogLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(&logging.Config{
		Level:     logging.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		Output:    os.Stdout,
		AddSource: cfg.Log.AddSource,
	})

	gate := agentgate.New(func(o *agentgate.Options) { o.Logger = logger })
	registerProviders(gate, logger)

	srv := gate.Server(func(o *server.Options) {
		o.ReadTimeout = cfg.Server.ReadTimeout
		o.WriteTimeout = cfg.Server.WriteTimeout
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr())
	}()
	logger.Info("agentgate started", "addr", cfg.Server.Addr(), "entities", len(gate.ListEntities()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("agentgate stopped")
}

// registerProviders wires reference agents for each provider whose API key is
// present in the environment.
func registerProviders(gate *agentgate.AgentGate, logger logging.Logger) {
	if os.Getenv("OPENAI_API_KEY") != "" {
		gate.RegisterAgent("assistant", openai.New("assistant"), "OpenAI-backed reference agent")
		logger.Info("registered openai reference agent", "entity_id", "assistant")
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		agent := anthropic.New("claude", func(o *anthropic.Options) { o.APIKey = key })
		gate.RegisterAgent("claude", agent, "Anthropic-backed reference agent")
		logger.Info("registered anthropic reference agent", "entity_id", "claude")
	}
}
