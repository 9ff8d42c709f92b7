// One-shot tool: archive a day's trade ideas from the SQLite journal into
// the parquet history, outcomes included. Intended to run after the close,
// and again the next morning so late outcome updates land in the archive.
//
// Usage:
//
//	go run cmd/research-archive/main.go [-date YYYY-MM-DD] [-days N]
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/config"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/store"
)

func main() {
	date := flag.String("date", "", "day to archive as YYYY-MM-DD (default today)")
	days := flag.Int("days", 1, "number of days ending at -date to archive")
	flag.Parse()

	cfgPath := "config/research.yaml"
	if p := os.Getenv("RESEARCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	end := time.Now()
	if *date != "" {
		end, err = time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *date, err)
		}
	}
	if *days < 1 {
		log.Fatalf("-days must be >= 1, got %d", *days)
	}

	journal, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening idea journal: %v", err)
	}
	defer journal.Close()

	archive := store.NewParquetStore(cfg.Storage.DataDir)
	ctx := context.Background()

	wrote := 0
	for i := *days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		ideas, err := journal.ListIdeasOn(ctx, day)
		if err != nil {
			log.Fatalf("listing ideas for %s: %v", day.Format("2006-01-02"), err)
		}
		if len(ideas) == 0 {
			slog.Info("no ideas to archive", "date", day.Format("2006-01-02"))
			continue
		}

		if err := archive.WriteArchive(ctx, day, ideas); err != nil {
			log.Fatalf("writing archive for %s: %v", day.Format("2006-01-02"), err)
		}
		slog.Info("archived", "date", day.Format("2006-01-02"), "ideas", len(ideas))
		wrote++
	}

	if wrote == 0 {
		slog.Info("nothing archived")
	} else {
		slog.Info("archive complete", "days", wrote)
	}
}
