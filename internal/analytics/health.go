package analytics

import "fmt"

const (
	PillarSpend  Pillar = "spend"
	PillarSave   Pillar = "save"
	PillarBorrow Pillar = "borrow"
	PillarPlan   Pillar = "plan"
)

const (
	// PresetFourPillar is the 0-100 four-pillar model with
	// healthy/coping/vulnerable statuses.
	PresetFourPillar Preset = "four_pillar"

	// PresetGrades maps every indicator to an A-F letter grade and derives the
	// overall score from the weighted grade-point average, with
	// excellent/good/fair/poor statuses.
	PresetGrades Preset = "grades"
)

// Every indicator carries the same weight: 8 indicators, 2 per pillar, so each
// pillar contributes a quarter of the overall score.
const metricWeight = 12.5

type (
	// Pillar is one of the four top-level financial-health dimensions.
	Pillar string

	// Preset selects one of the two scoring models. Both consume the same
	// inputs and compute the same eight indicators; they differ in status
	// vocabulary and in how the overall figure is derived.
	Preset string

	// HealthMetric is one scored indicator. Score is always in [0,100];
	// Grade is only populated by PresetGrades.
	HealthMetric struct {
		Name        string
		Pillar      Pillar
		Score       float64
		Weight      float64
		Status      string
		Grade       string
		Description string
		Details     []string
	}

	// HealthReport is the full scoring output for one analysis window.
	HealthReport struct {
		Preset       Preset
		Metrics      []HealthMetric
		Overall      float64
		Tier         string
		OverallGrade string
	}

	// Scorer computes a HealthReport from an aggregated month series.
	Scorer struct {
		preset Preset
	}

	// windowStats are the per-month series and totals every indicator draws
	// from, computed once per Score call.
	windowStats struct {
		months         int
		incomes        []float64
		expenses       []float64
		debts          []float64
		netInvest      []float64
		netSavings     []float64
		totalIncome    float64
		totalExpense   float64
		totalDebt      float64
		totalNetInv    float64
		totalEssential float64
		avgIncome      float64
		avgExpense     float64
		avgDebt        float64
	}
)

// NewScorer returns a scorer for the given preset. Unknown presets fall back
// to the four-pillar model.
func NewScorer(preset Preset) *Scorer {
	if preset != PresetGrades {
		preset = PresetFourPillar
	}
	return &Scorer{preset: preset}
}

// Score computes the eight indicators and the overall figure. The second
// return value is false when the series carries insufficient data; callers
// render an empty state in that case.
func (s *Scorer) Score(series MonthlySeries) (HealthReport, bool) {
	if !series.OK() {
		return HealthReport{Preset: s.preset}, false
	}

	w := buildWindowStats(series)

	metrics := []HealthMetric{
		savingsRateMetric(w),
		essentialRatioMetric(w),
		emergencyFundMetric(w),
		investmentRegularityMetric(w),
		debtToIncomeMetric(w),
		debtTrendMetric(w),
		savingsConsistencyMetric(w),
		incomeStabilityMetric(w),
	}

	report := HealthReport{Preset: s.preset, Metrics: metrics}

	switch s.preset {
	case PresetGrades:
		s.finishGrades(&report)
	default:
		s.finishFourPillar(&report)
	}
	return report, true
}

func (s *Scorer) finishFourPillar(report *HealthReport) {
	var overall float64
	for i := range report.Metrics {
		m := &report.Metrics[i]
		m.Status = fourPillarStatus(m.Score)
		overall += m.Score * m.Weight
	}
	report.Overall = clampScore(overall / 100)
	switch {
	case report.Overall >= 80:
		report.Tier = "healthy"
	case report.Overall >= 40:
		report.Tier = "coping"
	default:
		report.Tier = "vulnerable"
	}
}

func (s *Scorer) finishGrades(report *HealthReport) {
	var points float64
	for i := range report.Metrics {
		m := &report.Metrics[i]
		m.Grade = letterGrade(m.Score)
		m.Status = gradeStatus(m.Score)
		points += gradePoints(m.Grade) * m.Weight
	}
	gpa := points / 100 // weighted grade-point average on the 0-4 scale
	report.Overall = clampScore(gpa / 4 * 100)
	report.OverallGrade = gpaGrade(gpa)
	switch {
	case report.Overall >= 80:
		report.Tier = "excellent"
	case report.Overall >= 60:
		report.Tier = "good"
	case report.Overall >= 40:
		report.Tier = "fair"
	default:
		report.Tier = "poor"
	}
}

func fourPillarStatus(score float64) string {
	switch {
	case score >= 70:
		return "healthy"
	case score >= 40:
		return "coping"
	default:
		return "vulnerable"
	}
}

func gradeStatus(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func letterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

func gradePoints(grade string) float64 {
	switch grade {
	case "A":
		return 4
	case "B":
		return 3
	case "C":
		return 2
	case "D":
		return 1
	default:
		return 0
	}
}

func gpaGrade(gpa float64) string {
	switch {
	case gpa >= 3.5:
		return "A"
	case gpa >= 2.5:
		return "B"
	case gpa >= 1.5:
		return "C"
	case gpa >= 0.5:
		return "D"
	default:
		return "F"
	}
}

func buildWindowStats(series MonthlySeries) windowStats {
	w := windowStats{months: len(series.Months)}
	for _, month := range series.Months {
		b := series.Buckets[month]
		w.incomes = append(w.incomes, b.Income)
		w.expenses = append(w.expenses, b.Expense)
		w.debts = append(w.debts, b.Debt)
		w.netInvest = append(w.netInvest, b.NetInvestment())
		w.netSavings = append(w.netSavings, b.NetSavings())
		w.totalIncome += b.Income
		w.totalExpense += b.Expense
		w.totalDebt += b.Debt
		w.totalNetInv += b.NetInvestment()
		w.totalEssential += b.Essential
	}
	w.avgIncome = mean(w.incomes)
	w.avgExpense = mean(w.expenses)
	w.avgDebt = mean(w.debts)
	return w
}

// savingsRateMetric scores the average savings rate on a four-segment
// piecewise-linear curve with breakpoints at 20/10/0 percent.
func savingsRateMetric(w windowStats) HealthMetric {
	sr := ratio(w.avgIncome-w.avgExpense, w.avgIncome) * 100

	var score float64
	switch {
	case sr >= 20:
		score = 90 + (sr-20)*0.5
	case sr >= 10:
		score = lerp(sr, 10, 20, 70, 89)
	case sr >= 0:
		score = lerp(sr, 0, 10, 40, 69)
	default:
		score = 39 + sr
	}

	return HealthMetric{
		Name:        "savings_rate",
		Pillar:      PillarSpend,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Share of income left after expenses",
		Details: []string{
			fmt.Sprintf("average savings rate %.1f%%", sr),
			fmt.Sprintf("average monthly income %.2f, expense %.2f", w.avgIncome, w.avgExpense),
		},
	}
}

// essentialRatioMetric inverse-scores essential spend against income with
// breakpoints at 50/60/75 percent.
func essentialRatioMetric(w windowStats) HealthMetric {
	er := ratio(w.totalEssential, w.totalIncome) * 100

	var score float64
	switch {
	case er <= 50:
		score = lerp(er, 0, 50, 100, 90)
	case er <= 60:
		score = lerp(er, 50, 60, 89, 70)
	case er <= 75:
		score = lerp(er, 60, 75, 69, 40)
	default:
		score = 39 - (er - 75)
	}

	return HealthMetric{
		Name:        "essential_spend",
		Pillar:      PillarSpend,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Essential expenses as a share of income",
		Details:     []string{fmt.Sprintf("essential-to-income ratio %.1f%%", er)},
	}
}

// emergencyFundMetric scores cumulative net savings in months of expense
// coverage, breakpoints at 6/3/1 months.
func emergencyFundMetric(w windowStats) HealthMetric {
	months := ratio(w.totalIncome-w.totalExpense, w.avgExpense)

	var score float64
	switch {
	case months >= 6:
		score = lerp(min(months, 12.0), 6, 12, 90, 100)
	case months >= 3:
		score = lerp(months, 3, 6, 70, 89)
	case months >= 1:
		score = lerp(months, 1, 3, 40, 69)
	case months >= 0:
		score = lerp(months, 0, 1, 0, 39)
	default:
		score = 0
	}

	return HealthMetric{
		Name:        "emergency_fund",
		Pillar:      PillarSave,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Months of expenses covered by cumulative savings",
		Details:     []string{fmt.Sprintf("%.1f months of coverage", months)},
	}
}

// investmentRegularityMetric blends the net-investment-to-income ratio (60%)
// with the fraction of months showing positive net investment (40%).
func investmentRegularityMetric(w windowStats) HealthMetric {
	invRatio := ratio(w.totalNetInv, w.totalIncome) * 100

	var ratioScore float64
	switch {
	case invRatio >= 15:
		ratioScore = 100
	case invRatio >= 10:
		ratioScore = 80
	case invRatio >= 5:
		ratioScore = 60
	case invRatio > 0:
		ratioScore = 40
	default:
		ratioScore = 20
	}

	positive := 0
	for _, v := range w.netInvest {
		if v > 0 {
			positive++
		}
	}
	consistency := float64(positive) / float64(w.months) * 100

	score := 0.6*ratioScore + 0.4*consistency

	return HealthMetric{
		Name:        "investment_regularity",
		Pillar:      PillarSave,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "How much and how regularly income flows into investments",
		Details: []string{
			fmt.Sprintf("net investment %.1f%% of income", invRatio),
			fmt.Sprintf("%d of %d months with positive net investment", positive, w.months),
		},
	}
}

// debtToIncomeMetric inverse-scores the average monthly debt payment against
// income. The 36% breakpoint mirrors the conventional lending threshold.
func debtToIncomeMetric(w windowStats) HealthMetric {
	dti := ratio(w.avgDebt, w.avgIncome) * 100

	var score float64
	switch {
	case dti <= 10:
		score = lerp(dti, 0, 10, 100, 90)
	case dti <= 20:
		score = lerp(dti, 10, 20, 89, 70)
	case dti <= 36:
		score = lerp(dti, 20, 36, 69, 40)
	default:
		score = 39 - (dti - 36)
	}

	return HealthMetric{
		Name:        "debt_to_income",
		Pillar:      PillarBorrow,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Average monthly debt payments as a share of income",
		Details:     []string{fmt.Sprintf("debt-to-income ratio %.1f%%", dti)},
	}
}

// debtTrendMetric compares average debt burden between the first and second
// half of the window. Zero debt throughout is a perfect score by special case.
func debtTrendMetric(w windowStats) HealthMetric {
	if w.totalDebt == 0 {
		return HealthMetric{
			Name:        "debt_trend",
			Pillar:      PillarBorrow,
			Score:       100,
			Weight:      metricWeight,
			Description: "Direction of the debt burden over the window",
			Details:     []string{"no debt payments in the window"},
		}
	}

	half := w.months / 2
	firstAvg := mean(w.debts[:half])
	secondAvg := mean(w.debts[half:])

	var score float64
	var detail string
	if firstAvg == 0 {
		// Debt appeared mid-window.
		score = 25
		detail = "debt payments started during the window"
	} else {
		change := (secondAvg - firstAvg) / firstAvg * 100
		detail = fmt.Sprintf("debt burden change %.1f%%", change)
		switch {
		case change <= -25:
			score = 100
		case change <= -10:
			score = 85
		case change <= 0:
			score = 75
		case change <= 10:
			score = 55
		case change <= 25:
			score = 40
		default:
			score = 20
		}
	}

	return HealthMetric{
		Name:        "debt_trend",
		Pillar:      PillarBorrow,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Direction of the debt burden over the window",
		Details:     []string{detail},
	}
}

// savingsConsistencyMetric blends the fraction of months with positive savings
// (70%) with a volatility score over the positive monthly savings rates (30%).
func savingsConsistencyMetric(w windowStats) HealthMetric {
	positive := 0
	var positiveRates []float64
	for i, s := range w.netSavings {
		if s > 0 {
			positive++
			positiveRates = append(positiveRates, ratio(s, w.incomes[i])*100)
		}
	}
	fraction := float64(positive) / float64(w.months)

	cv := coefficientOfVariation(positiveRates)
	var cvScore float64
	switch {
	case len(positiveRates) == 0:
		cvScore = 20
	case cv < 30:
		cvScore = 90
	case cv < 60:
		cvScore = 70
	case cv < 100:
		cvScore = 50
	default:
		cvScore = 20
	}

	score := 0.7*fraction*100 + 0.3*cvScore

	return HealthMetric{
		Name:        "savings_consistency",
		Pillar:      PillarPlan,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "How reliably savings happen month over month",
		Details: []string{
			fmt.Sprintf("%d of %d months with positive savings", positive, w.months),
			fmt.Sprintf("savings-rate volatility CV %.1f%%", cv),
		},
	}
}

// incomeStabilityMetric scores the coefficient of variation of monthly income,
// breakpoints at 10/25/50 percent.
func incomeStabilityMetric(w windowStats) HealthMetric {
	cv := coefficientOfVariation(w.incomes)

	var score float64
	switch {
	case cv <= 10:
		score = lerp(cv, 0, 10, 100, 90)
	case cv <= 25:
		score = lerp(cv, 10, 25, 89, 70)
	case cv <= 50:
		score = lerp(cv, 25, 50, 69, 40)
	default:
		score = 39 - (cv-50)*0.5
	}

	return HealthMetric{
		Name:        "income_stability",
		Pillar:      PillarPlan,
		Score:       clampScore(score),
		Weight:      metricWeight,
		Description: "Volatility of monthly income",
		Details:     []string{fmt.Sprintf("income CV %.1f%%", cv)},
	}
}
