// Package main is the entry point for the evdash dashboard, an interactive
// client for a +EV betting opportunities backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/evdash/internal/config"
	"github.com/yourorg/evdash/internal/fetch"
	"github.com/yourorg/evdash/internal/metrics"
	otelx "github.com/yourorg/evdash/internal/otel"
	"github.com/yourorg/evdash/internal/querycache"
	"github.com/yourorg/evdash/internal/view"
)

// startTime records when the process started for health reporting
var startTime = time.Now()

func main() {
	setupLogging()

	cfg := config.Load()

	shutdownTracer := otelx.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	metrics.Register()
	startMetricsServer(cfg.MetricsPort)

	// One cache per session, handed to the view explicitly. Reconstructing
	// it would lose entries and in-flight coalescing.
	cache := querycache.New(cfg.FreshnessWindow)
	defer cache.Close()

	client := fetch.NewClient(cfg)
	v := view.New(cache, client, cfg)
	v.OnUpdate = func(snap view.Snapshot) {
		fmt.Println(snap.Render())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go v.Run(ctx)

	logrus.WithFields(logrus.Fields{
		"backend":          cfg.BackendURL,
		"poll_interval":    cfg.PollInterval,
		"freshness_window": cfg.FreshnessWindow,
		"fetch_retries":    cfg.FetchRetries,
		"metrics_port":     cfg.MetricsPort,
	}).Info("Dashboard started")
	printHelp()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go readCommands(lines)

	for {
		select {
		case <-quit:
			logrus.Info("Dashboard shutting down")
			return
		case line, ok := <-lines:
			if !ok {
				logrus.Info("Input closed, shutting down")
				return
			}
			if !handleCommand(ctx, v, line) {
				return
			}
		}
	}
}

// setupLogging configures the logging for the application
func setupLogging() {
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))

	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch logLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// startMetricsServer exposes /metrics and /healthz on the side port.
func startMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handleHealth)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Metrics listener on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("Metrics listener failed: %v", err)
		}
	}()
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// readCommands forwards stdin lines to the main loop.
func readCommands(lines chan<- string) {
	defer close(lines)
	scanner := newStdinScanner()
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// handleCommand dispatches one user operation. Returns false to exit.
func handleCommand(ctx context.Context, v *view.View, line string) bool {
	cmd, arg := splitCommand(line)

	switch cmd {
	case "":
		// Blank line re-renders, same as show.
		fmt.Println(v.Snapshot().Render())
	case "search":
		v.SetSearch(ctx, arg)
	case "sport":
		v.SetSport(ctx, arg)
	case "clear":
		v.ClearFilters(ctx)
	case "retry":
		v.Retry(ctx)
	case "show":
		fmt.Println(v.Snapshot().Render())
	case "help":
		printHelp()
	case "quit", "exit":
		logrus.Info("Dashboard shutting down")
		return false
	default:
		fmt.Printf("Unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func printHelp() {
	fmt.Println(`Commands:
  search <text>   set the free-text search filter (empty clears it)
  sport <code>    filter by sport (nfl, nba, mlb, nhl; empty for all)
  clear           reset both filters
  retry           re-issue the current fetch after a failure
  show            re-render the current state
  quit            exit`)
}
