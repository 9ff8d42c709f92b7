package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/live"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/store"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/util"
)

// Compile-time interface check.
var _ Source = (*IdeaPoller)(nil)

const pollAttempts = 3

// IdeaPoller periodically fetches the full trade-idea collection from the
// research platform and swaps it into the live model. Each successful poll
// also upserts the ideas into the working store so restarts recover the last
// known collection. On failure the previous collection keeps serving.
type IdeaPoller struct {
	client    *http.Client
	baseURL   string
	authToken string
	interval  time.Duration
	model     *live.Model
	store     store.IdeaStore // may be nil
	log       *slog.Logger
}

// NewIdeaPoller creates an IdeaPoller against the given platform base URL.
// Pass a nil store to skip persistence.
func NewIdeaPoller(baseURL, authToken string, interval time.Duration, model *live.Model, s store.IdeaStore) *IdeaPoller {
	return &IdeaPoller{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		interval:  interval,
		model:     model,
		store:     s,
		log:       slog.Default().With("source", "idea-poller"),
	}
}

// Name returns the source identifier.
func (p *IdeaPoller) Name() string { return "idea-poller" }

// Run polls immediately, then on every interval tick until ctx is cancelled.
func (p *IdeaPoller) Run(ctx context.Context) error {
	if err := p.pollOnce(ctx); err != nil {
		p.log.Error("initial poll failed", "err", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.pollOnce(ctx); err != nil {
				// Keep serving the previous collection.
				p.log.Error("poll failed", "err", err)
			}
		}
	}
}

type ideasResponse struct {
	Ideas []domain.TradeIdea `json:"ideas"`
}

func (p *IdeaPoller) pollOnce(ctx context.Context) error {
	var ideas []domain.TradeIdea
	err := util.Retry(ctx, pollAttempts, time.Second, func() error {
		var ferr error
		ideas, ferr = p.fetch(ctx)
		return ferr
	})
	if err != nil {
		return err
	}

	for i := range ideas {
		ideas[i].Symbol = strings.ToUpper(strings.TrimSpace(ideas[i].Symbol))
	}

	version := p.model.Replace(ideas)
	if p.store != nil {
		if err := p.store.UpsertIdeas(ctx, ideas); err != nil {
			p.log.Warn("persisting ideas failed", "err", err)
		}
	}

	p.log.Info("feed refreshed", "ideas", len(ideas), "version", version)
	return nil
}

func (p *IdeaPoller) fetch(ctx context.Context) ([]domain.TradeIdea, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/trade-ideas", nil)
	if err != nil {
		return nil, err
	}
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ideas API status %d", resp.StatusCode)
	}

	var payload ideasResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding ideas: %w", err)
	}
	return payload.Ideas, nil
}
