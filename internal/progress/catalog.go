package progress

import (
	"fmt"

	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dustin/go-humanize"
)

const (
	DailyTaskName   = "Daily task"
	DailyTaskPoints = 0.2

	// EURPerPoint is how many euros invested earn one point.
	EURPerPoint = 1000.0
)

var catalog = []model.PredefinedTask{
	{Name: "Built or bought a flat/house", Points: 350},
	{Name: "Resolved thesis", Points: 5},
	{Name: "New job", Points: 15},
	{Name: "Salary > 2400€ net", Points: 50},
	{Name: "Bought a prefab cabin", Points: 100},
	{Name: "Trip to a new country", Points: 5},
	{Name: "Bought a boat", Points: 30},
	{Name: "Sale made on the family farm", Points: 0.5},
	{Name: "Bought a car", Points: 20},
	{Name: "Moved out from parents", Points: 40},
}

// Catalog returns a copy of the predefined tasks in display order.
func Catalog() []model.PredefinedTask {
	out := make([]model.PredefinedTask, len(catalog))
	copy(out, catalog)
	return out
}

// LookupPredefined returns the fixed point value for name.
func LookupPredefined(name string) (float64, bool) {
	for _, p := range catalog {
		if p.Name == name {
			return p.Points, true
		}
	}
	return 0, false
}

// InvestmentLabel formats an invested amount with "." grouping and no
// decimals, e.g. 2500 -> "Invested in stocks 2.500 €".
func InvestmentLabel(amountEUR float64) string {
	return fmt.Sprintf("Invested in stocks %s €", humanize.FormatFloat("#.###,", amountEUR))
}
