package stats

import (
	"fmt"
	"time"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
)

// Levels of heatmap intensity, 0 (empty) through 4 (busiest).
const MaxLevel = 4

// Grid is a column-major activity grid: Grid[w][d] is the activity level
// for weekday d (0 = Monday) of week w, oldest week first. Cells after
// today hold -1.
type Grid [][]int

// Level buckets a daily activity count into a display intensity.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count <= 4:
		return 3
	default:
		return MaxLevel
	}
}

// Heatmap projects the backend's day counts into a grid of the last
// `weeks` weeks ending with today's week. Dates that fail to parse are
// skipped.
func Heatmap(items []api.HeatmapItem, weeks int, today time.Time) Grid {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		if _, err := time.Parse("2006-01-02", it.Date); err != nil {
			continue
		}
		counts[it.Date] = it.Count
	}

	today = today.Truncate(24 * time.Hour)
	// Walk back to the Monday of the oldest week shown.
	start := today.AddDate(0, 0, -weekday(today))
	start = start.AddDate(0, 0, -7*(weeks-1))

	grid := make(Grid, weeks)
	for w := 0; w < weeks; w++ {
		grid[w] = make([]int, 7)
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, w*7+d)
			if day.After(today) {
				grid[w][d] = -1
				continue
			}
			grid[w][d] = Level(counts[day.Format("2006-01-02")])
		}
	}
	return grid
}

// weekday returns days since Monday (Mon=0 .. Sun=6).
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StreakLine renders the streak summary shown on the dashboard.
func StreakLine(s *api.UserStats) string {
	if s == nil {
		return ""
	}
	if s.CurrentStreak == 1 {
		return fmt.Sprintf("1 day streak · %d points", s.TotalPoints)
	}
	return fmt.Sprintf("%d day streak · %d points", s.CurrentStreak, s.TotalPoints)
}

// Ordinal formats a leaderboard rank (1st, 2nd, 3rd, 4th, ...).
func Ordinal(n int) string {
	if n <= 0 {
		return "-"
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Placement summarizes the caller's leaderboard standing.
func Placement(lb *api.Leaderboard) string {
	if lb == nil || lb.CurrentUserRank <= 0 {
		return "unranked"
	}
	if lb.TopPercent > 0 && lb.TopPercent <= 50 {
		return fmt.Sprintf("%s · top %.0f%%", Ordinal(lb.CurrentUserRank), lb.TopPercent)
	}
	return Ordinal(lb.CurrentUserRank)
}
