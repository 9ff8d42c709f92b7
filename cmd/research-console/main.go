package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Maleek23/QuantEdgeResearch-sub001/pkg/research"
)

// Styles.
var (
	bandAStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	bandBStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	bandCStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	bandDStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	groupBarStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	groupSelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	closedBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	historyBar     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	pageCurStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

func bandStyle(band string) lipgloss.Style {
	switch {
	case strings.HasPrefix(band, "A"):
		return bandAStyle
	case strings.HasPrefix(band, "B"):
		return bandBStyle
	case strings.HasPrefix(band, "C"):
		return bandCStyle
	default:
		return bandDStyle
	}
}

// Filter cycles for the s/g/d keys.
var (
	sourceCycle = []string{"all", "ai", "quant", "hybrid", "chart_analysis", "flow", "news", "manual"}
	gradeCycle  = []string{"quality", "A", "B", "C", "D", "all"}
	dateCycle   = []string{"all", "today", "yesterday", "3d", "7d", "30d"}
)

func cycleNext(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// Messages.
type tickMsg time.Time

type feedLoadedMsg struct {
	feed *research.Feed
	err  error
}

type historyLoadedMsg struct {
	date string
	feed *research.Feed
	err  error
}

type datesLoadedMsg struct {
	dates []string
	err   error
}

func tickCmd() tea.Cmd {
	return tea.Tick(15*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model.
type model struct {
	client *research.Client
	logger *slog.Logger

	feed     *research.Feed
	selected int // index into feed.Groups
	status   string

	viewport      viewport.Model
	ready         bool
	width, height int

	// History mode.
	historyMode    bool
	historyDates   []string
	historyIdx     int
	historyFeed    *research.Feed
	historyLoading bool
}

func initialModel(client *research.Client, logger *slog.Logger) model {
	return model{
		client: client,
		logger: logger,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadFeed(research.FeedParams{}), m.loadDates())
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m model) loadFeed(p research.FeedParams) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		feed, err := c.Feed(ctx, p)
		return feedLoadedMsg{feed: feed, err: err}
	}
}

func (m model) setPage(label string, page int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		feed, err := c.SetPage(ctx, label, page)
		return feedLoadedMsg{feed: feed, err: err}
	}
}

func (m model) loadDates() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dates, err := c.HistoryDates(ctx)
		return datesLoadedMsg{dates: dates, err: err}
	}
}

func (m model) loadHistory(date string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		feed, err := c.History(ctx, date)
		return historyLoadedMsg{date: date, feed: feed, err: err}
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "r":
			if m.historyMode {
				return m, nil
			}
			return m, m.loadFeed(research.FeedParams{})

		case "s":
			if m.historyMode || m.feed == nil {
				return m, nil
			}
			next := cycleNext(sourceCycle, m.feed.Filter.Source)
			return m, m.loadFeed(research.FeedParams{Source: next})

		case "g":
			if m.historyMode || m.feed == nil {
				return m, nil
			}
			next := cycleNext(gradeCycle, m.feed.Filter.GradeTier)
			return m, m.loadFeed(research.FeedParams{GradeTier: next})

		case "d":
			if m.historyMode || m.feed == nil {
				return m, nil
			}
			next := cycleNext(dateCycle, m.feed.Filter.DateRange)
			return m, m.loadFeed(research.FeedParams{DateRange: next})

		case "tab", "shift+tab":
			if m.feed == nil || len(m.feed.Groups) == 0 {
				return m, nil
			}
			n := len(m.feed.Groups)
			if msg.String() == "tab" {
				m.selected = (m.selected + 1) % n
			} else {
				m.selected = (m.selected + n - 1) % n
			}
			m.viewport.SetContent(m.renderContent())
			return m, nil

		case "n", "p":
			if m.historyMode || m.feed == nil || m.selected >= len(m.feed.Groups) {
				return m, nil
			}
			g := m.feed.Groups[m.selected]
			page := g.Page + 1
			if msg.String() == "p" {
				page = g.Page - 1
			}
			if page < 1 || page > g.PageCount {
				return m, nil
			}
			return m, m.setPage(g.Label, page)

		case "left":
			return m, m.navigateHistory(-1)

		case "right":
			return m, m.navigateHistory(1)

		case "home":
			if m.historyMode {
				m.historyMode = false
				m.historyLoading = false
				m.viewport.SetContent(m.renderContent())
				m.viewport.GotoTop()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
			m.viewport.SetContent(m.renderContent())
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		return m, nil

	case tickMsg:
		if !m.historyMode {
			return m, tea.Batch(tickCmd(), m.loadFeed(research.FeedParams{}))
		}
		return m, tickCmd()

	case feedLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.logger.Error("loading feed", "error", msg.err)
		} else {
			m.status = ""
			m.feed = msg.feed
			if m.selected >= len(m.feed.Groups) {
				m.selected = 0
			}
		}
		if m.ready && !m.historyMode {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case historyLoadedMsg:
		m.historyLoading = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.logger.Error("loading history", "date", msg.date, "error", msg.err)
		} else {
			m.status = ""
			m.historyFeed = msg.feed
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}
		return m, nil

	case datesLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("listing history dates", "error", msg.err)
		} else {
			m.historyDates = msg.dates
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// navigateHistory moves through archived days. Stepping left from live view
// enters history at the most recent date; stepping right past the newest
// date returns to live.
func (m *model) navigateHistory(delta int) tea.Cmd {
	if len(m.historyDates) == 0 {
		return nil
	}

	if !m.historyMode {
		if delta > 0 {
			return nil
		}
		m.historyMode = true
		m.historyIdx = len(m.historyDates) - 1
	} else {
		next := m.historyIdx + delta
		if next < 0 {
			return nil
		}
		if next >= len(m.historyDates) {
			m.historyMode = false
			m.historyLoading = false
			if m.ready {
				m.viewport.SetContent(m.renderContent())
				m.viewport.GotoTop()
			}
			return nil
		}
		m.historyIdx = next
	}

	m.historyLoading = true
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m.loadHistory(m.historyDates[m.historyIdx])
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var headerText string
	var bar lipgloss.Style
	switch {
	case m.historyMode:
		bar = historyBar
		pos := fmt.Sprintf("%d/%d", m.historyIdx+1, len(m.historyDates))
		date := m.historyDates[m.historyIdx]
		if m.historyLoading {
			headerText = fmt.Sprintf(" Feed History  %s    loading...    [%s] ", date, pos)
		} else {
			matched := 0
			if m.historyFeed != nil {
				matched = m.historyFeed.Matched
			}
			headerText = fmt.Sprintf(" Feed History  %s    ideas: %d    [%s] ", date, matched, pos)
		}
	case m.feed == nil:
		bar = headerStyle
		headerText = " Research Feed    connecting... "
	default:
		bar = headerStyle
		f := m.feed.Filter
		headerText = fmt.Sprintf(
			" Research Feed  %s  v%d    matched: %d  active: %d  closed: %d    src: %s  grade: %s  range: %s ",
			m.feed.Date, m.feed.Version,
			m.feed.Matched, m.feed.Active, m.feed.Closed,
			f.Source, f.GradeTier, f.DateRange,
		)
	}
	headerBar := bar.Render(padOrTrunc(headerText, m.width))

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " q quit  r refresh  s source  g grade  d range  tab group  n/p page  left/right history  home live"
	if m.status != "" {
		footerLeft = " ! " + m.status
	}
	footerRight := fmt.Sprintf("%.0f%% ", pct)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m model) renderContent() string {
	var b strings.Builder

	if m.historyMode {
		if m.historyLoading || m.historyFeed == nil {
			b.WriteString(dimStyle.Render("  Loading..."))
			b.WriteString("\n")
			return b.String()
		}
		renderFeed(&b, m.historyFeed, -1, m.width)
		return b.String()
	}

	if m.feed == nil {
		b.WriteString(dimStyle.Render("  Waiting for the server..."))
		b.WriteString("\n")
		return b.String()
	}
	renderFeed(&b, m.feed, m.selected, m.width)
	return b.String()
}

func renderFeed(b *strings.Builder, feed *research.Feed, selected int, width int) {
	if len(feed.Groups) == 0 && len(feed.Recently) == 0 {
		b.WriteString(dimStyle.Render("  (no matching ideas)"))
		b.WriteString("\n")
		return
	}

	for i, g := range feed.Groups {
		renderGroup(b, g, i == selected, width)
	}

	if len(feed.Recently) > 0 {
		label := fmt.Sprintf("  RECENTLY CLOSED    %d ideas  ", len(feed.Recently))
		b.WriteString(closedBarStyle.Width(width).Render(label))
		b.WriteString("\n")
		renderRows(b, feed.Recently, true)
		b.WriteString("\n")
	}
}

func renderGroup(b *strings.Builder, g research.Group, selected bool, width int) {
	style := groupBarStyle
	marker := "  "
	if selected {
		style = groupSelStyle
		marker = "> "
	}
	label := fmt.Sprintf("%s%s    %d ideas    page %d/%d  ", marker, strings.ToUpper(g.Label), g.Total, g.Page, g.PageCount)
	b.WriteString(style.Width(width).Render(label))
	b.WriteString("\n")

	stats := fmt.Sprintf("  win rate %s    net %s", g.Stats.WinRateLabel, fmtPnL(g.Stats.NetPnL))
	b.WriteString(dimStyle.Render(stats))
	b.WriteString("\n")

	if len(g.Ideas) == 0 {
		b.WriteString(dimStyle.Render("  (no open ideas on this page)"))
		b.WriteString("\n\n")
		return
	}

	renderRows(b, g.Ideas, false)

	if g.PageCount > 1 {
		b.WriteString(dimStyle.Render("  pages: "))
		for i, p := range g.Pages {
			if i > 0 {
				b.WriteString(" ")
			}
			switch {
			case p < 0:
				b.WriteString(dimStyle.Render("…"))
			case p == g.Page:
				b.WriteString(pageCurStyle.Render(fmt.Sprintf("[%d]", p)))
			default:
				b.WriteString(dimStyle.Render(fmt.Sprintf("%d", p)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderRows(b *strings.Builder, ideas []research.Idea, closed bool) {
	last := "PnL"
	if closed {
		last = "Outcome"
	}
	colLine := fmt.Sprintf("  %-3s %-8s %-6s %-4s %9s %9s %9s %9s %6s %5s  %-10s",
		"#", "Symbol", "Dir", "Band", "Entry", "Cur", "Target", "Stop", "R:R", "Age", last)
	b.WriteString(colHeaderStyle.Render(colLine))
	b.WriteString("\n")

	for i, idea := range ideas {
		cur := "-"
		if idea.CurrentPrice != nil {
			cur = fmt.Sprintf("%.2f", *idea.CurrentPrice)
		}

		var tail string
		if closed {
			tail = idea.Outcome
			if idea.PnLLabel != "-" {
				tail = fmt.Sprintf("%s %s", idea.Outcome, pnlStyled(idea.RealizedPnL, idea.PnLLabel))
			}
		} else {
			tail = pnlStyled(idea.RealizedPnL, idea.PnLLabel)
		}

		b.WriteString(fmt.Sprintf("  %-3d %s %-6s %s %9.2f %9s %9.2f %9.2f %6s %5s  %s\n",
			i+1,
			symbolStyle.Render(fmt.Sprintf("%-8s", idea.Symbol)),
			idea.Direction,
			bandStyle(idea.ProbabilityBand).Render(fmt.Sprintf("%-4s", idea.ProbabilityBand)),
			idea.EntryPrice,
			cur,
			idea.TargetPrice,
			idea.StopLoss,
			idea.RiskRewardLabel,
			idea.Age,
			tail,
		))
	}
}

func pnlStyled(v float64, label string) string {
	switch {
	case v > 0:
		return gainStyle.Render(label)
	case v < 0:
		return lossStyle.Render(label)
	default:
		return label
	}
}

func fmtPnL(v float64) string {
	switch {
	case v > 0:
		return gainStyle.Render(fmt.Sprintf("+$%.2f", v))
	case v < 0:
		return lossStyle.Render(fmt.Sprintf("-$%.2f", -v))
	default:
		return "$0.00"
	}
}

func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	addr := "http://localhost:8090"
	if a := os.Getenv("RESEARCH_ADDR"); a != "" {
		addr = a
	}

	logPath := fmt.Sprintf("/tmp/research-console-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client := research.NewClient(addr, research.WithTimeout(10*time.Second))

	// Fail fast when the server is unreachable rather than rendering an
	// empty screen.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	health, err := client.Health(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to %s: %v\n", addr, err)
		os.Exit(1)
	}
	logger.Info("connected", "addr", addr, "ideas", health.Ideas, "version", health.Version)

	p := tea.NewProgram(
		initialModel(client, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
