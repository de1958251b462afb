// Package progress implements the daily progress and streak computations
// shared by the participant dashboard and the review console. Everything
// here is a pure function of stored progress rows and the current time, so
// both surfaces derive the exact same state.
package progress

import (
	"math"
	"sort"

	"github.com/modusklar/modusklar/models"
)

// ProgramDays is the length of the challenge.
const ProgramDays = 28

// SlotPair holds the two slot statuses of a single day. Empty strings mean
// no submission exists for the slot.
type SlotPair struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// DayEntry is one cell of the month grid.
type DayEntry struct {
	Day     int    `json:"day"`
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// Summary bundles everything the dashboard needs from the progress rows.
type Summary struct {
	CompletedDays int        `json:"completed_days"`
	CurrentDay    int        `json:"current_day"`
	Today         SlotPair   `json:"today"`
	Grid          []DayEntry `json:"grid"`
	SuccessRate   float64    `json:"success_rate"`
}

// sortByDay returns a copy of rows ordered by day number ascending. Storage
// order is not trusted.
func sortByDay(rows []models.DailyProgress) []models.DailyProgress {
	sorted := make([]models.DailyProgress, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DayNumber < sorted[j].DayNumber })
	return sorted
}

// CompletedDays counts the days whose both slots are verified.
func CompletedDays(rows []models.DailyProgress) int {
	count := 0
	for _, row := range sortByDay(rows) {
		if row.Completed() {
			count++
		}
	}
	return count
}

// CurrentDay is the 1-based day the participant is actively working on.
func CurrentDay(completedDays int) int {
	return completedDays + 1
}

// TodayStatus returns the slot pair of the row matching day, or an empty
// pair when no row exists.
func TodayStatus(rows []models.DailyProgress, day int) SlotPair {
	for _, row := range rows {
		if row.DayNumber == day {
			return SlotPair{Morning: row.MorningStatus, Evening: row.EveningStatus}
		}
	}
	return SlotPair{}
}

// MonthGrid synthesizes the 28-entry display grid: days before the current
// one render as fully verified, the current day mirrors the live status and
// later days are untouched. Historical per-day detail is intentionally not
// re-read; a day only becomes "before the current one" once both its slots
// verified.
func MonthGrid(currentDay int, today SlotPair) []DayEntry {
	grid := make([]DayEntry, ProgramDays)
	for i := range grid {
		entry := DayEntry{Day: i + 1}
		switch {
		case i < currentDay-1:
			entry.Morning = models.SlotStatusVerified
			entry.Evening = models.SlotStatusVerified
		case i == currentDay-1:
			entry.Morning = today.Morning
			entry.Evening = today.Evening
		}
		grid[i] = entry
	}
	return grid
}

// SuccessRate reports completedDays/totalDays as a percentage rounded to
// one decimal. A zero totalDays yields 0, never NaN.
func SuccessRate(completedDays, totalDays int) float64 {
	if totalDays == 0 {
		return 0
	}
	rate := float64(completedDays) / float64(totalDays) * 100
	return math.Round(rate*10) / 10
}

// Summarize computes the full dashboard projection from raw progress rows.
func Summarize(rows []models.DailyProgress) Summary {
	completed := CompletedDays(rows)
	current := CurrentDay(completed)
	today := TodayStatus(rows, current)
	return Summary{
		CompletedDays: completed,
		CurrentDay:    current,
		Today:         today,
		Grid:          MonthGrid(current, today),
		SuccessRate:   SuccessRate(completed, ProgramDays),
	}
}
