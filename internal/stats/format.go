package stats

import (
	"fmt"
	"time"
)

// grade buckets the consistency percentage into a display label.
func grade(pct float64) string {
	switch {
	case pct >= 80:
		return "excellent"
	case pct >= 60:
		return "good"
	case pct >= 40:
		return "fair"
	default:
		return "needs work"
	}
}

func streakMessage(days int) string {
	switch days {
	case 0:
		return "No streak yet. Practice today to start one!"
	case 1:
		return "You're on a 1-day streak. Keep it going!"
	default:
		return fmt.Sprintf("You're on a %d-day streak!", days)
	}
}

// timeframeWindow maps a named timeframe onto inclusive date bounds.
// Empty strings mean unbounded.
func timeframeWindow(timeframe string, now time.Time) (start, end string, ok bool) {
	const layout = "2006-01-02"
	today := now.Format(layout)

	switch timeframe {
	case "", "all":
		return "", "", true
	case "today":
		return today, today, true
	case "week":
		return now.AddDate(0, 0, -7).Format(layout), today, true
	case "month":
		return now.AddDate(0, 0, -30).Format(layout), today, true
	default:
		return "", "", false
	}
}
