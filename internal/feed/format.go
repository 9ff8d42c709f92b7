package feed

import (
	"fmt"
	"time"
)

// FormatPrice formats a price as $X.XX, or "-" when unset.
func FormatPrice(p float64) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", p)
}

// FormatPnL formats a realized P/L with an explicit sign, or "-" for flat.
func FormatPnL(v float64) string {
	switch {
	case v > 0:
		return fmt.Sprintf("+$%.2f", v)
	case v < 0:
		return fmt.Sprintf("-$%.2f", -v)
	default:
		return "-"
	}
}

// FormatWinRate formats a win rate as a whole percentage, or "n/a" when no
// trade has been decided yet.
func FormatWinRate(s GroupStats) string {
	if s.Decided == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%% (%d/%d)", s.WinRate*100, s.Wins, s.Decided)
}

// FormatAge renders how long ago an idea was posted, compact: 12m, 3h, 5d.
func FormatAge(posted, now time.Time) string {
	d := now.Sub(posted)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatRR formats a risk/reward ratio, or "-" when undefined.
func FormatRR(rr float64) string {
	if rr <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fR", rr)
}
