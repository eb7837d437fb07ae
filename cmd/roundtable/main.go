package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/roundtable/orchestrator"
	"github.com/tailored-agentic-units/roundtable/web"
)

func main() {
	var (
		configFile    = flag.String("config", "", "Path to config file, JSON or YAML (required)")
		serveAddr     = flag.String("serve", "", "Serve the HTTP surface on this address instead of the console")
		transcriptDir = flag.String("transcript", "", "Directory for transcript files (overrides config)")
		searchURL     = flag.String("search-url", "", "External search endpoint for the search capability")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: roundtable -config <file> [-serve addr]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := orchestrator.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *transcriptDir != "" {
		cfg.Transcript.Dir = *transcriptDir
	}
	if cfg.Gateway.APIKey == "" {
		cfg.Gateway.APIKey = os.Getenv("ROUNDTABLE_API_KEY")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	registerBuiltinCapabilities()

	orch, err := orchestrator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	if *searchURL != "" {
		registerSearchCapability(*searchURL, cfg.Gateway)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serveAddr != "" {
		srv := &http.Server{
			Addr:    *serveAddr,
			Handler: web.NewServer(orch).Handler(),
		}
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background())
		}()

		slog.Info("serving", "addr", *serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	if err := runREPL(ctx, orch); err != nil {
		log.Fatalf("Console session failed: %v", err)
	}
}
