package progress

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/pointlog/internal/model"
)

// DefaultGoal is the point total the progress bar fills up to.
const DefaultGoal = 1000.0

// DayPoints is the point sum for one calendar day.
type DayPoints struct {
	Date   string  `json:"date"`
	Points float64 `json:"points"`
}

// Calendar counts active days per month (rows) and day of month (columns),
// summed over all years.
type Calendar [12][31]int

// Summary is everything the statistics view shows.
type Summary struct {
	Total    float64     `json:"total"`
	Goal     float64     `json:"goal"`
	Progress float64     `json:"progress"`
	PerDay   []DayPoints `json:"per_day"`
	Streak   int         `json:"streak"`
	Calendar Calendar    `json:"calendar"`
}

func Summarize(entries []model.TaskEntry, goal float64) Summary {
	perDay := GroupByDay(entries)
	total := SumPoints(entries)
	return Summary{
		Total:    total,
		Goal:     goal,
		Progress: math.Min(total/goal, 1),
		PerDay:   perDay,
		Streak:   Streak(perDay),
		Calendar: ActivityCalendar(perDay),
	}
}

// SumPoints adds up all points and rounds to two decimals.
func SumPoints(entries []model.TaskEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Points
	}
	return round2(sum)
}

// GroupByDay sums points per date, keyed on the YYYY-MM-DD prefix of each
// entry's date. Entries without a date are skipped.
func GroupByDay(entries []model.TaskEntry) []DayPoints {
	sums := make(map[string]float64)
	for _, e := range entries {
		d := DatePart(e.Date)
		if d == "" {
			continue
		}
		sums[d] += e.Points
	}

	days := make([]DayPoints, 0, len(sums))
	for d, p := range sums {
		days = append(days, DayPoints{Date: d, Points: p})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// Streak counts back from the most recent active day while each earlier
// day is exactly one day before the next. The first gap ends the count.
func Streak(perDay []DayPoints) int {
	seen := make(map[time.Time]bool, len(perDay))
	var days []time.Time
	for _, d := range perDay {
		t, err := time.Parse(time.DateOnly, DatePart(d.Date))
		if err != nil || seen[t] {
			continue
		}
		seen[t] = true
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// ActivityCalendar marks each active day in a month x day-of-month grid.
func ActivityCalendar(perDay []DayPoints) Calendar {
	var cal Calendar
	for _, d := range perDay {
		t, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			continue
		}
		cal[t.Month()-1][t.Day()-1]++
	}
	return cal
}

// DatePart returns the calendar-day prefix of an ISO date or timestamp.
func DatePart(s string) string {
	if len(s) > len(time.DateOnly) {
		return s[:len(time.DateOnly)]
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
