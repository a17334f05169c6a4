package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lysyi3m/news-comb/app/aggregator"
	"github.com/lysyi3m/news-comb/app/api"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/fetch"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting AI News Comb", "version", appCfg.Version, "transport", appCfg.Transport)

	reg, err := registry.Load(appCfg.RegistryFile)
	if err != nil {
		slog.Error("Failed to load registry", "file", appCfg.RegistryFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Registry loaded", "feeds", len(reg.Feeds()), "categories", len(reg.Categories()), "keywords", len(reg.Keywords()))

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	upstreamMetrics := fetch.NewMetrics(metrics, reg.Hosts()...)

	fetcher := fetch.NewFetcher(
		fetch.WithTimeout(appCfg.RequestTimeout),
		fetch.WithUserAgent(appCfg.UserAgent),
		fetch.WithMetrics(upstreamMetrics),
	)

	// Article URLs come from callers and may only reach public hosts
	pageFetcher := fetch.NewFetcher(
		fetch.WithTimeout(appCfg.RequestTimeout),
		fetch.WithUserAgent(appCfg.UserAgent),
		fetch.WithMetrics(upstreamMetrics),
		fetch.WithHTTPClient(fetch.NewGuardedClient()),
	)

	srcs := sources.New(fetcher, reg, appCfg.FanoutLimit, sources.WithPageFetcher(pageFetcher))
	dashboard := aggregator.NewDashboard(srcs.Arxiv, srcs.HackerNews, srcs.Feeds)

	handler := api.NewHandler(srcs, dashboard, reg, metrics, appCfg.Version)
	toolServer := api.NewToolServer(handler)

	switch appCfg.Transport {
	case cfg.TransportHTTP:
		err = runHTTP(handler, toolServer)
	default:
		err = runStdio(toolServer)
	}
	if err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("AI News Comb shutdown complete")
}

// setupLogger writes to stderr; stdout carries the stdio transport.
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runStdio(toolServer *server.MCPServer) error {
	slog.Info("Serving tools over stdio")

	errorLogger := slog.NewLogLogger(slog.Default().Handler(), slog.LevelError)
	err := server.ServeStdio(toolServer, server.WithErrorLogger(errorLogger))
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server error: %w", err)
	}
	return nil
}

func runHTTP(handler *api.Handler, toolServer *server.MCPServer) error {
	port := cfg.Get().Port
	router := api.NewServer(handler, api.NewMCPHandler(toolServer))

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", port)
		slog.Info("Endpoints available",
			"mcp", fmt.Sprintf("http://localhost:%s/mcp", port),
			"health", fmt.Sprintf("http://localhost:%s/health", port),
			"metrics", fmt.Sprintf("http://localhost:%s/metrics", port),
			"rest", fmt.Sprintf("http://localhost:%s/api", port),
			"feeds", fmt.Sprintf("http://localhost:%s/feeds/<source>", port),
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return runErr
}
