package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/live"
)

// Compile-time interface check.
var _ Source = (*QuoteRefresher)(nil)

const quoteBatchSize = 200

// QuoteRefresher keeps current prices on open equity ideas warm by fetching
// latest trades from the Alpaca market-data API. Only stock and penny-stock
// ideas are quoted; crypto, options, and futures keep whatever price the
// platform posted.
type QuoteRefresher struct {
	client   *marketdata.Client
	interval time.Duration
	model    *live.Model
	log      *slog.Logger
}

// NewQuoteRefresher creates a QuoteRefresher with the given Alpaca credentials.
func NewQuoteRefresher(apiKey, apiSecret, dataURL string, interval time.Duration, model *live.Model) *QuoteRefresher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &QuoteRefresher{
		client:   marketdata.NewClient(opts),
		interval: interval,
		model:    model,
		log:      slog.Default().With("source", "quote-refresher"),
	}
}

// Name returns the source identifier.
func (r *QuoteRefresher) Name() string { return "quote-refresher" }

// Run refreshes quotes on every interval tick until ctx is cancelled.
func (r *QuoteRefresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.refreshOnce(ctx); err != nil {
				r.log.Error("quote refresh failed", "err", err)
			}
		}
	}
}

func (r *QuoteRefresher) refreshOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ideas, _ := r.model.Snapshot()
	symbols := quotableSymbols(ideas)
	if len(symbols) == 0 {
		return nil
	}

	prices := make(map[string]float64, len(symbols))
	for start := 0; start < len(symbols); start += quoteBatchSize {
		end := min(start+quoteBatchSize, len(symbols))
		trades, err := r.client.GetLatestTrades(symbols[start:end], marketdata.GetLatestTradeRequest{
			Feed: "iex",
		})
		if err != nil {
			return fmt.Errorf("GetLatestTrades: %w", err)
		}
		for symbol, trade := range trades {
			prices[strings.ToUpper(symbol)] = trade.Price
		}
	}

	updated := r.model.ApplyQuotes(prices)
	r.log.Debug("quotes refreshed", "symbols", len(symbols), "updated", updated)
	return nil
}

// quotableSymbols returns the distinct symbols of open equity ideas, sorted.
func quotableSymbols(ideas []domain.TradeIdea) []string {
	seen := make(map[string]struct{})
	for _, idea := range ideas {
		if !idea.IsOpen() {
			continue
		}
		switch idea.AssetType {
		case domain.AssetStock, domain.AssetPennyStock:
		default:
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(idea.Symbol))
		if sym == "" {
			continue
		}
		seen[sym] = struct{}{}
	}

	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}
