package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/feed"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/live"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/news"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/prefs"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/store"
)

// FeedServer serves the research feed HTTP API. It owns the websocket hub
// and a short-lived response cache keyed by model version, filter, and page
// state, so identical requests between polls don't rebuild the pipeline.
type FeedServer struct {
	model   *live.Model
	session *feed.Session
	prefs   *prefs.Store       // nil disables persistence
	archive store.ArchiveStore // nil disables history endpoints
	news    *news.Fetcher      // nil disables catalyst lookups
	hub     *Hub
	cache   *cache.Cache
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewFeedServer creates a new feed HTTP server.
func NewFeedServer(
	model *live.Model,
	session *feed.Session,
	prefStore *prefs.Store,
	archive store.ArchiveStore,
	fetcher *news.Fetcher,
	log *slog.Logger,
) *FeedServer {
	return &FeedServer{
		model:   model,
		session: session,
		prefs:   prefStore,
		archive: archive,
		news:    fetcher,
		hub:     NewHub(log),
		cache:   cache.New(5*time.Second, time.Minute),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 30),
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *FeedServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/feed", s.handleFeed)
	mux.HandleFunc("POST /api/feed/page", s.handlePage)
	mux.HandleFunc("GET /api/prefs", s.handleGetPrefs)
	mux.HandleFunc("PUT /api/prefs", s.handlePutPrefs)
	mux.HandleFunc("GET /api/history/dates", s.handleHistoryDates)
	mux.HandleFunc("GET /api/history/{date}", s.handleHistory)
	mux.HandleFunc("GET /api/catalyst/{symbol}", s.handleCatalyst)
	mux.HandleFunc("GET /api/performance", s.handlePerformance)
	mux.HandleFunc("GET /api/ws", s.handleWS)
}

// Handler returns an http.Handler with CORS and rate-limit middleware.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(s.rateLimitMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *FeedServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.log.Warn("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Filter parsing
// ---------------------------------------------------------------------------

// parseFilterState overlays query parameters onto the base state. An absent
// parameter keeps the base value; a present one, wildcard included, replaces
// it. Badge links therefore only name the dimension they toggle.
func parseFilterState(r *http.Request, base feed.FilterState) feed.FilterState {
	q := r.URL.Query()
	f := base

	set := func(dst *string, key string) {
		if q.Has(key) {
			*dst = strings.TrimSpace(q.Get(key))
		}
	}
	set(&f.Search, "search")
	set(&f.Direction, "direction")
	set(&f.Source, "source")
	set(&f.AssetType, "assetType")
	set(&f.GradeTier, "gradeTier")
	set(&f.TradeType, "tradeType")
	set(&f.PriceTier, "priceTier")
	set(&f.Status, "status")
	set(&f.DateRange, "dateRange")
	set(&f.CustomDate, "customDate")
	set(&f.Horizon, "horizon")
	set(&f.Sort, "sort")
	set(&f.View, "view")
	if q.Has("assetOrder") {
		f.AssetOrder = feed.DecodeAssetOrder(q.Get("assetOrder"))
	}
	return f
}

func parseIntParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ---------------------------------------------------------------------------
// Feed handlers
// ---------------------------------------------------------------------------

func (s *FeedServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"version": s.model.Version(),
		"ideas":   s.model.Count(),
	})
}

func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	f := parseFilterState(r, s.session.Filter())
	s.applyFilter(f)
	writeJSON(w, s.buildFeed())
}

func (s *FeedServer) handlePage(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid page request")
		return
	}
	if req.Label == "" || req.Page < 1 {
		writeError(w, http.StatusBadRequest, "label and page >= 1 required")
		return
	}

	s.session.SetPage(req.Label, req.Page)
	writeJSON(w, s.buildFeed())
}

// applyFilter installs a filter state on the session and persists whatever
// preference fields it changed.
func (s *FeedServer) applyFilter(f feed.FilterState) {
	diff := s.session.Apply(f)
	if len(diff) > 0 && s.prefs != nil {
		s.prefs.Apply(diff)
	}
}

// buildFeed renders the current session view, through the response cache.
func (s *FeedServer) buildFeed() FeedResponse {
	ideas, version := s.model.Snapshot()
	f := s.session.Filter()
	pages := s.session.Pages()
	now := time.Now()

	key := fmt.Sprintf("feed|%d|%+v|%v", version, f, pages)
	if v, ok := s.cache.Get(key); ok {
		return v.(FeedResponse)
	}

	vm := feed.Build(ideas, f, pages, now)
	resp := convertView(vm, version, now)
	s.cache.Set(key, resp, cache.DefaultExpiration)
	return resp
}

// ---------------------------------------------------------------------------
// Preference handlers
// ---------------------------------------------------------------------------

func (s *FeedServer) handleGetPrefs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.session.Preferences())
}

func (s *FeedServer) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var p feed.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences")
		return
	}

	// The body is the complete preference set; empty fields mean stock
	// defaults. Ephemeral filter fields are untouched.
	seed := p.Filter()
	f := s.session.Filter()
	f.TradeType = seed.TradeType
	f.PriceTier = seed.PriceTier
	f.AssetType = seed.AssetType
	f.GradeTier = seed.GradeTier
	f.AssetOrder = seed.AssetOrder
	s.applyFilter(f)

	writeJSON(w, s.session.Preferences())
}

// ---------------------------------------------------------------------------
// History handlers
// ---------------------------------------------------------------------------

func (s *FeedServer) handleHistoryDates(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	dates, err := s.archive.ListArchiveDates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list archive dates")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, DatesResponse{Dates: dates})
}

func (s *FeedServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	ideas, err := s.archive.ReadArchive(r.Context(), date)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no archive for %s", date))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}

	now := time.Now()
	vm := feed.Build(ideas, reviewFilter(), make(feed.PageState), now)
	writeJSON(w, convertView(vm, 0, now))
}

// reviewFilter is the filter state archived days are rendered with: every
// grade and status visible, newest first, no date window.
func reviewFilter() feed.FilterState {
	f := feed.DefaultFilterState()
	f.GradeTier = feed.FilterAll
	f.Status = feed.FilterAll
	f.Sort = feed.SortTimestamp
	f.View = feed.ViewSections
	return f
}

// ---------------------------------------------------------------------------
// Catalyst and performance handlers
// ---------------------------------------------------------------------------

func (s *FeedServer) handleCatalyst(w http.ResponseWriter, r *http.Request) {
	if s.news == nil {
		writeError(w, http.StatusServiceUnavailable, "news not configured")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	hours := parseIntParam(r, "hours", 48)
	limit := parseIntParam(r, "limit", 20)

	headlines, err := s.news.Fetch(r.Context(), symbol, time.Duration(hours)*time.Hour, limit)
	if err != nil {
		s.log.Warn("catalyst fetch failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("failed to fetch news for %s", symbol))
		return
	}
	if headlines == nil {
		headlines = []news.Headline{}
	}
	writeJSON(w, CatalystResponse{Symbol: symbol, Headlines: headlines})
}

func (s *FeedServer) handlePerformance(w http.ResponseWriter, _ *http.Request) {
	ideas, _ := s.model.Snapshot()
	writeJSON(w, PerformanceResponse{
		AsOf:    time.Now(),
		Sources: feed.PerformanceBySource(ideas),
	})
}
