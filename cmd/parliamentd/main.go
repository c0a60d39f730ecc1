// Command parliamentd serves the debate API: conversation management plus
// server-sent-event streaming of moderated multi-agent debates.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/leofalp/parliament/internal/config"
	"github.com/leofalp/parliament/internal/httpapi"
	"github.com/leofalp/parliament/providers/ai"
	"github.com/leofalp/parliament/providers/ai/gemini"
	"github.com/leofalp/parliament/providers/ai/openrouter"
	mongostore "github.com/leofalp/parliament/providers/storage/mongo"
	"github.com/leofalp/parliament/providers/tool"
	"github.com/leofalp/parliament/providers/tool/bravesearch"
	"github.com/leofalp/parliament/providers/tool/debaterules"
	"github.com/leofalp/parliament/providers/tool/webfetch"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, using environment variables")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoURI := config.GetMongoDBURI()
	if mongoURI == "" {
		return errors.New("MONGODB_URI is not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := mongostore.Connect(connectCtx, mongoURI, "")
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("closing mongo connection failed", slog.String("error", err.Error()))
		}
	}()
	logger.Info("connected to MongoDB")

	provider := openrouter.New().WithAppAttribution("https://github.com/leofalp/parliament", "Parliament")

	var titleProvider ai.Provider
	if config.GetGeminiAPIKey() != "" {
		titleProvider = gemini.New()
	} else {
		logger.Info("GEMINI_API_KEY not set, conversations keep the default title")
	}

	catalog := tool.NewCatalogWithTools(
		bravesearch.New(),
		debaterules.New(),
		webfetch.New(),
	)

	api := httpapi.NewServer(store, provider, titleProvider, catalog, logger)
	server := &http.Server{
		Addr:    config.GetListenAddr(),
		Handler: api.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("server listening", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
