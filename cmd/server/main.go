package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acornak/healthcare-chatbot/internal/backend"
	"github.com/acornak/healthcare-chatbot/internal/config"
	"github.com/acornak/healthcare-chatbot/internal/httpapi"
	"github.com/acornak/healthcare-chatbot/internal/llm"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/orchestrator"
	"github.com/acornak/healthcare-chatbot/internal/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("openai_url", cfg.OpenAIURL).
		Str("model", cfg.OpenAIModel).
		Str("server_url", cfg.ServerURL).
		Int("max_function_rounds", cfg.MaxFunctionRounds).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Healthcare chatbot starting")

	if !cfg.HasLLMCredentials() {
		logger.Warn().Msg("OPENAI_API_KEY is not set, chat requests will be answered with a configuration error")
	}

	functions := registry.Default()
	backendClient := backend.NewHTTPClient(cfg)
	chat := orchestrator.New(cfg, llm.NewOpenAIClient(cfg), functions, backendClient)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/chatbot", httpapi.HandleChat(chat))

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	llmCheck := func(ctx context.Context) (bool, error) {
		if !cfg.HasLLMCredentials() {
			return false, errors.New("OPENAI_API_KEY is not set")
		}
		return true, nil
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"llm":     llmCheck,
		"backend": backendClient.Ping,
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// A chat request may take every round's LLM and backend timeouts
	writeTimeout := time.Duration(cfg.MaxFunctionRounds)*(cfg.LLMRequestTimeout()+cfg.BackendRequestTimeout()) + 15*time.Second

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Strs("functions", functions.Names()).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/api/chatbot", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
