package analytics

import (
	"time"

	"finpulse/internal/core"
)

const (
	// DefaultForecastHorizon is the number of months projected forward.
	DefaultForecastHorizon = 6

	// forecastCutoffDay drops the current month from the trend window while it
	// is too fresh to seed a forecast. Deliberately looser than the
	// aggregator's 15-day rule: a month-to-month trend tolerates more partial
	// data than a long-window rate statistic.
	forecastCutoffDay = 25

	// trendWindowMonths bounds the history used for the growth estimate.
	trendWindowMonths = 6

	// growthDamping attenuates each projection step so a short-window trend
	// estimate cannot compound into a runaway curve.
	growthDamping = 0.5

	minForecastMonths = 3
)

type (
	// ForecastPoint is one month on the cash-flow line. Historical points are
	// factual; projected points carry IsForecast.
	ForecastPoint struct {
		Month      string
		Income     float64
		Expense    float64
		NetSavings float64
		IsForecast bool
	}

	// ForecastInsights summarizes the historical window and the projection.
	// FirstNegativeMonth is the 1-based forecast step at which projected net
	// savings first turns negative, 0 when it never does.
	ForecastInsights struct {
		AvgIncome           float64
		AvgExpense          float64
		AvgSavings          float64
		IncomeGrowthPct     float64
		ExpenseGrowthPct    float64
		ProjectedNetSavings float64
		FirstNegativeMonth  int
	}

	// ForecastResult is the full forecaster output.
	ForecastResult struct {
		Historical []ForecastPoint
		Forecast   []ForecastPoint
		Insights   ForecastInsights
	}
)

// Forecast extrapolates income and expense trend lines from the raw month
// series. The second return value is false when fewer than three historical
// months remain after the current-month cutoff.
func Forecast(series MonthlySeries, horizon int, now time.Time) (ForecastResult, bool) {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}

	months := series.Months
	if len(months) > 0 && months[len(months)-1] == core.MonthKey(now) && now.Day() < forecastCutoffDay {
		months = months[:len(months)-1]
	}
	if len(months) < minForecastMonths {
		return ForecastResult{}, false
	}

	historical := make([]ForecastPoint, len(months))
	for i, m := range months {
		b := series.Buckets[m]
		historical[i] = ForecastPoint{
			Month:      m,
			Income:     b.Income,
			Expense:    b.Expense,
			NetSavings: b.NetSavings(),
		}
	}

	window := historical
	if len(window) > trendWindowMonths {
		window = window[len(window)-trendWindowMonths:]
	}

	var incomes, expenses []float64
	for _, p := range window {
		incomes = append(incomes, p.Income)
		expenses = append(expenses, p.Expense)
	}

	incomeGrowth := dampedGrowthRate(incomes)
	expenseGrowth := dampedGrowthRate(expenses)

	last := window[len(window)-1]
	lastMonth, err := time.Parse("2006-01", last.Month)
	if err != nil {
		return ForecastResult{}, false
	}

	insights := ForecastInsights{
		AvgIncome:        mean(incomes),
		AvgExpense:       mean(expenses),
		IncomeGrowthPct:  incomeGrowth * 100,
		ExpenseGrowthPct: expenseGrowth * 100,
	}
	insights.AvgSavings = insights.AvgIncome - insights.AvgExpense

	forecast := make([]ForecastPoint, 0, horizon)
	income, expense := last.Income, last.Expense
	for step := 1; step <= horizon; step++ {
		income *= 1 + incomeGrowth*growthDamping
		expense *= 1 + expenseGrowth*growthDamping
		net := income - expense

		forecast = append(forecast, ForecastPoint{
			Month:      core.MonthKey(lastMonth.AddDate(0, step, 0)),
			Income:     income,
			Expense:    expense,
			NetSavings: net,
			IsForecast: true,
		})
		insights.ProjectedNetSavings += net
		if net < 0 && insights.FirstNegativeMonth == 0 {
			insights.FirstNegativeMonth = step
		}
	}

	return ForecastResult{Historical: historical, Forecast: forecast, Insights: insights}, true
}

// dampedGrowthRate estimates the per-step linear growth rate of a series:
// (last-first)/first spread over the window length. The damping factor is
// applied at projection time, not here.
func dampedGrowthRate(xs []float64) float64 {
	if len(xs) < 2 || xs[0] == 0 {
		return 0
	}
	return (xs[len(xs)-1] - xs[0]) / xs[0] / float64(len(xs)-1)
}
