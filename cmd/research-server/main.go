package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/config"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/feed"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/httpapi"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/live"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/news"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/prefs"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/source"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/store"
)

func main() {
	// Load config.
	cfgPath := "config/research.yaml"
	if p := os.Getenv("RESEARCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logFileName := fmt.Sprintf("/tmp/research-server-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := slog.New(newLogHandler(w, cfg.Logging))
	slog.SetDefault(logger)

	// Open stores.
	journal, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening idea journal: %v", err)
	}
	defer journal.Close()

	archive := store.NewParquetStore(cfg.Storage.DataDir)
	prefStore := prefs.NewStore(cfg.Storage.PrefsPath, logger)
	defer prefStore.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Seed the live model from the journal so restarts serve the last
	// known collection before the first poll lands.
	model := live.NewModel()
	if ideas, err := journal.ListIdeas(ctx); err != nil {
		logger.Warn("seeding from journal failed", "error", err)
	} else if len(ideas) > 0 {
		model.Replace(ideas)
		logger.Info("seeded from journal", "ideas", len(ideas))
	}

	// Start background sources.
	if cfg.Feed.IdeaURL == "" {
		logger.Warn("no idea feed URL configured, serving journal only")
	} else {
		poller := source.NewIdeaPoller(cfg.Feed.IdeaURL, cfg.Feed.IdeaToken, cfg.Feed.PollInterval(), model, journal)
		go func() {
			if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("idea poller stopped", "error", err)
			}
		}()
	}

	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		logger.Warn("no market data credentials, quote refresh disabled")
	} else {
		quotes := source.NewQuoteRefresher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Feed.QuoteInterval(), model)
		go func() {
			if err := quotes.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("quote refresher stopped", "error", err)
			}
		}()
	}

	go runRetention(ctx, journal, cfg.Feed.RetentionDays, logger)

	// Assemble the API server.
	session := feed.NewSession(prefStore.Preferences())
	fetcher := news.NewFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.News.RateLimitPerMin)
	srv := httpapi.NewFeedServer(model, session, prefStore, archive, fetcher, logger)
	srv.StartBroadcasting(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("research server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down research server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// newLogHandler builds the slog handler the config asks for.
func newLogHandler(w io.Writer, lc config.Logging) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// runRetention deletes journal rows older than the retention window once a
// day. The parquet archive keeps the full history.
func runRetention(ctx context.Context, journal store.IdeaStore, days int, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().AddDate(0, 0, -days)
		removed, err := journal.DeleteBefore(ctx, cutoff)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("journal retention failed", "error", err)
			}
		} else if removed > 0 {
			logger.Info("journal retention", "removed", removed, "cutoff", cutoff.Format("2006-01-02"))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
