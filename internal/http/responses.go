package http

import (
	"finpulse/internal/analytics"
	"finpulse/internal/services"
)

// Response DTOs. Engine types stay free of serialization concerns; the wire
// shape is fixed here.

type monthOverview struct {
	Month         string             `json:"month"`
	Income        float64            `json:"income"`
	Expense       float64            `json:"expense"`
	Debt          float64            `json:"debt"`
	InvestmentIn  float64            `json:"investment_in"`
	InvestmentOut float64            `json:"investment_out"`
	Discretionary float64            `json:"discretionary"`
	Essential     float64            `json:"essential"`
	NetSavings    float64            `json:"net_savings"`
	Categories    map[string]float64 `json:"categories"`
}

type overviewResponse struct {
	InsufficientData bool            `json:"insufficient_data"`
	Months           []monthOverview `json:"months"`
}

type healthMetricDTO struct {
	Name        string   `json:"name"`
	Pillar      string   `json:"pillar"`
	Score       float64  `json:"score"`
	Weight      float64  `json:"weight"`
	Status      string   `json:"status"`
	Grade       string   `json:"grade,omitempty"`
	Description string   `json:"description"`
	Details     []string `json:"details,omitempty"`
}

type healthResponse struct {
	InsufficientData bool              `json:"insufficient_data"`
	Preset           string            `json:"preset"`
	Overall          float64           `json:"overall"`
	Tier             string            `json:"tier,omitempty"`
	OverallGrade     string            `json:"overall_grade,omitempty"`
	Metrics          []healthMetricDTO `json:"metrics"`
}

type recurringPatternDTO struct {
	Signature        string  `json:"signature"`
	Category         string  `json:"category,omitempty"`
	Subcategory      string  `json:"subcategory,omitempty"`
	AvgAmount        float64 `json:"avg_amount"`
	Frequency        string  `json:"frequency"`
	LastDate         string  `json:"last_date"`
	Occurrences      int     `json:"occurrences"`
	TotalSpent       float64 `json:"total_spent"`
	IsActive         bool    `json:"is_active"`
	ExpectedNextDate string  `json:"expected_next_date"`
}

type recurringResponse struct {
	Patterns          []recurringPatternDTO `json:"patterns"`
	MonthlyFixedCosts float64               `json:"monthly_fixed_costs"`
}

type forecastPointDTO struct {
	Month      string  `json:"month"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	NetSavings float64 `json:"net_savings"`
	IsForecast bool    `json:"is_forecast"`
}

type forecastInsightsDTO struct {
	AvgIncome           float64 `json:"avg_income"`
	AvgExpense          float64 `json:"avg_expense"`
	AvgSavings          float64 `json:"avg_savings"`
	IncomeGrowthPct     float64 `json:"income_growth_pct"`
	ExpenseGrowthPct    float64 `json:"expense_growth_pct"`
	ProjectedNetSavings float64 `json:"projected_net_savings"`
	FirstNegativeMonth  int     `json:"first_negative_month"`
}

type forecastResponse struct {
	InsufficientData bool                `json:"insufficient_data"`
	Historical       []forecastPointDTO  `json:"historical"`
	Forecast         []forecastPointDTO  `json:"forecast"`
	Insights         forecastInsightsDTO `json:"insights"`
}

type correlationPairDTO struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

type correlationResponse struct {
	Categories  []string             `json:"categories"`
	Matrix      [][]float64          `json:"matrix"`
	StrongPairs []correlationPairDTO `json:"strong_pairs"`
}

type dashboardResponse struct {
	Overview    overviewResponse    `json:"overview"`
	Health      healthResponse      `json:"health"`
	Recurring   recurringResponse   `json:"recurring"`
	Forecast    forecastResponse    `json:"forecast"`
	Correlation correlationResponse `json:"correlation"`
}

type accountsResponse struct {
	Accounts []string `json:"accounts"`
}

const dateLayout = "2006-01-02"

func buildOverview(series analytics.MonthlySeries) overviewResponse {
	resp := overviewResponse{
		InsufficientData: !series.OK(),
		Months:           []monthOverview{},
	}
	for _, month := range series.Months {
		b := series.Bucket(month)
		resp.Months = append(resp.Months, monthOverview{
			Month:         month,
			Income:        b.Income,
			Expense:       b.Expense,
			Debt:          b.Debt,
			InvestmentIn:  b.InvestmentIn,
			InvestmentOut: b.InvestmentOut,
			Discretionary: b.Discretionary,
			Essential:     b.Essential,
			NetSavings:    b.NetSavings(),
			Categories:    b.Categories,
		})
	}
	return resp
}

func buildHealth(report analytics.HealthReport, ok bool) healthResponse {
	resp := healthResponse{
		InsufficientData: !ok,
		Preset:           string(report.Preset),
		Overall:          report.Overall,
		Tier:             report.Tier,
		OverallGrade:     report.OverallGrade,
		Metrics:          []healthMetricDTO{},
	}
	for _, m := range report.Metrics {
		resp.Metrics = append(resp.Metrics, healthMetricDTO{
			Name:        m.Name,
			Pillar:      string(m.Pillar),
			Score:       m.Score,
			Weight:      m.Weight,
			Status:      m.Status,
			Grade:       m.Grade,
			Description: m.Description,
			Details:     m.Details,
		})
	}
	return resp
}

func buildRecurring(report services.RecurringReport) recurringResponse {
	resp := recurringResponse{
		Patterns:          []recurringPatternDTO{},
		MonthlyFixedCosts: report.MonthlyFixedCosts,
	}
	for _, p := range report.Patterns {
		resp.Patterns = append(resp.Patterns, recurringPatternDTO{
			Signature:        p.Signature,
			Category:         p.Category,
			Subcategory:      p.Subcategory,
			AvgAmount:        p.AvgAmount,
			Frequency:        string(p.Frequency),
			LastDate:         p.LastDate.Format(dateLayout),
			Occurrences:      p.Occurrences,
			TotalSpent:       p.TotalSpent,
			IsActive:         p.IsActive,
			ExpectedNextDate: p.ExpectedNextDate.Format(dateLayout),
		})
	}
	return resp
}

func buildForecast(result analytics.ForecastResult, ok bool) forecastResponse {
	resp := forecastResponse{
		InsufficientData: !ok,
		Historical:       []forecastPointDTO{},
		Forecast:         []forecastPointDTO{},
		Insights: forecastInsightsDTO{
			AvgIncome:           result.Insights.AvgIncome,
			AvgExpense:          result.Insights.AvgExpense,
			AvgSavings:          result.Insights.AvgSavings,
			IncomeGrowthPct:     result.Insights.IncomeGrowthPct,
			ExpenseGrowthPct:    result.Insights.ExpenseGrowthPct,
			ProjectedNetSavings: result.Insights.ProjectedNetSavings,
			FirstNegativeMonth:  result.Insights.FirstNegativeMonth,
		},
	}
	for _, p := range result.Historical {
		resp.Historical = append(resp.Historical, buildForecastPoint(p))
	}
	for _, p := range result.Forecast {
		resp.Forecast = append(resp.Forecast, buildForecastPoint(p))
	}
	return resp
}

func buildForecastPoint(p analytics.ForecastPoint) forecastPointDTO {
	return forecastPointDTO{
		Month:      p.Month,
		Income:     p.Income,
		Expense:    p.Expense,
		NetSavings: p.NetSavings,
		IsForecast: p.IsForecast,
	}
}

func buildCorrelation(matrix analytics.CorrelationMatrix) correlationResponse {
	resp := correlationResponse{
		Categories:  matrix.Categories,
		Matrix:      matrix.Matrix,
		StrongPairs: []correlationPairDTO{},
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if resp.Matrix == nil {
		resp.Matrix = [][]float64{}
	}
	for _, p := range matrix.StrongPairs {
		resp.StrongPairs = append(resp.StrongPairs, correlationPairDTO{A: p.A, B: p.B, R: p.R})
	}
	return resp
}
