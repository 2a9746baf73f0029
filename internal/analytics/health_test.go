package analytics

import (
	"fmt"
	"testing"

	"finpulse/internal/core"
)

func steadyLedgerSeries(t *testing.T) MonthlySeries {
	t.Helper()
	c := NewClassifier(DefaultVocabulary())
	var txs []core.Transaction
	for m := 1; m <= 6; m++ {
		date := fmt.Sprintf("2024-%02d-05", m)
		txs = append(txs, income(t, date, 100000))
		txs = append(txs, expense(t, date, "Rent", 70000))
	}
	series := c.Aggregate(txs, noInvestmentAccounts, day(t, "2024-07-20"))
	if !series.OK() {
		t.Fatal("expected qualifying series")
	}
	return series
}

func metricByName(t *testing.T, report HealthReport, name string) HealthMetric {
	t.Helper()
	for _, m := range report.Metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %q not found", name)
	return HealthMetric{}
}

func TestScoreSteadyLedger(t *testing.T) {
	report, ok := NewScorer(PresetFourPillar).Score(steadyLedgerSeries(t))
	if !ok {
		t.Fatal("expected a report")
	}

	// 30% flat savings rate lands in the top band.
	sr := metricByName(t, report, "savings_rate")
	if sr.Score < 90 || sr.Score > 100 {
		t.Errorf("savings_rate score = %v, want in [90,100]", sr.Score)
	}
	if sr.Status != "healthy" {
		t.Errorf("savings_rate status = %q", sr.Status)
	}

	// Zero debt throughout is a perfect trend score.
	dt := metricByName(t, report, "debt_trend")
	if dt.Score != 100 {
		t.Errorf("debt_trend score = %v, want 100", dt.Score)
	}

	if len(report.Metrics) != 8 {
		t.Fatalf("expected 8 metrics, got %d", len(report.Metrics))
	}
}

func TestScorePillarsAndWeights(t *testing.T) {
	report, _ := NewScorer(PresetFourPillar).Score(steadyLedgerSeries(t))

	counts := make(map[Pillar]int)
	var weightSum float64
	for _, m := range report.Metrics {
		counts[m.Pillar]++
		weightSum += m.Weight
	}
	for _, p := range []Pillar{PillarSpend, PillarSave, PillarBorrow, PillarPlan} {
		if counts[p] != 2 {
			t.Errorf("pillar %s has %d metrics, want 2", p, counts[p])
		}
	}
	if weightSum != 100 {
		t.Errorf("weights sum to %v, want 100", weightSum)
	}
}

func TestScoreBoundsOnDegenerateInput(t *testing.T) {
	// All-zero buckets: every ratio hits a zero-guard.
	series := MonthlySeries{
		Months: []string{"2024-01", "2024-02", "2024-03"},
		Buckets: map[string]*MonthlyBucket{
			"2024-01": {Categories: map[string]float64{}},
			"2024-02": {Categories: map[string]float64{}},
			"2024-03": {Categories: map[string]float64{}},
		},
	}

	for _, preset := range []Preset{PresetFourPillar, PresetGrades} {
		t.Run(string(preset), func(t *testing.T) {
			report, ok := NewScorer(preset).Score(series)
			if !ok {
				t.Fatal("expected a report")
			}
			if report.Overall < 0 || report.Overall > 100 {
				t.Errorf("overall = %v out of bounds", report.Overall)
			}
			for _, m := range report.Metrics {
				if m.Score < 0 || m.Score > 100 {
					t.Errorf("metric %s score %v out of bounds", m.Name, m.Score)
				}
			}
		})
	}
}

func TestScoreInsufficientData(t *testing.T) {
	if _, ok := NewScorer(PresetFourPillar).Score(MonthlySeries{}); ok {
		t.Error("expected insufficient-data result")
	}
}

func TestScoreGradesPreset(t *testing.T) {
	report, ok := NewScorer(PresetGrades).Score(steadyLedgerSeries(t))
	if !ok {
		t.Fatal("expected a report")
	}
	if report.OverallGrade == "" {
		t.Error("grades preset must set an overall grade")
	}
	for _, m := range report.Metrics {
		if m.Grade == "" {
			t.Errorf("metric %s missing grade", m.Name)
		}
		switch m.Status {
		case "excellent", "good", "fair", "poor":
		default:
			t.Errorf("metric %s has four-pillar status %q under grades preset", m.Name, m.Status)
		}
	}
	switch report.Tier {
	case "excellent", "good", "fair", "poor":
	default:
		t.Errorf("unexpected tier %q", report.Tier)
	}
}

func TestScorePresetsShareInputContract(t *testing.T) {
	series := steadyLedgerSeries(t)
	a, _ := NewScorer(PresetFourPillar).Score(series)
	b, _ := NewScorer(PresetGrades).Score(series)

	// Same indicators, same raw scores; only grading vocabulary differs.
	for i := range a.Metrics {
		if a.Metrics[i].Name != b.Metrics[i].Name {
			t.Fatalf("metric order diverged: %s vs %s", a.Metrics[i].Name, b.Metrics[i].Name)
		}
		if a.Metrics[i].Score != b.Metrics[i].Score {
			t.Errorf("metric %s raw score diverged: %v vs %v",
				a.Metrics[i].Name, a.Metrics[i].Score, b.Metrics[i].Score)
		}
	}
}

func TestDebtTrendDecliningScoresHigh(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())
	var txs []core.Transaction
	debts := []float64{20000, 20000, 20000, 5000, 5000, 5000}
	for m := 1; m <= 6; m++ {
		date := fmt.Sprintf("2024-%02d-05", m)
		txs = append(txs, income(t, date, 100000))
		txs = append(txs, expense(t, date, "EMI - Home Loan", debts[m-1]))
	}
	series := c.Aggregate(txs, noInvestmentAccounts, day(t, "2024-07-20"))
	report, _ := NewScorer(PresetFourPillar).Score(series)

	dt := metricByName(t, report, "debt_trend")
	if dt.Score != 100 {
		t.Errorf("declining debt trend score = %v, want 100", dt.Score)
	}

	// Reverse: growing debt scores low.
	for i := range txs {
		if txs[i].Category == "EMI - Home Loan" {
			txs[i].Amount = debts[5-(i/2)]
		}
	}
	series = c.Aggregate(txs, noInvestmentAccounts, day(t, "2024-07-20"))
	report, _ = NewScorer(PresetFourPillar).Score(series)
	dt = metricByName(t, report, "debt_trend")
	if dt.Score > 40 {
		t.Errorf("growing debt trend score = %v, want <= 40", dt.Score)
	}
}

func TestInvestmentRegularity(t *testing.T) {
	c := NewClassifier(DefaultVocabulary())
	var txs []core.Transaction
	for m := 1; m <= 6; m++ {
		date := fmt.Sprintf("2024-%02d-05", m)
		txs = append(txs, income(t, date, 100000))
		txs = append(txs, expense(t, date, "Rent", 50000))
		txs = append(txs, transfer(t, date, "Checking", "Zerodha", 20000))
	}
	series := c.Aggregate(txs, noInvestmentAccounts, day(t, "2024-07-20"))
	report, _ := NewScorer(PresetFourPillar).Score(series)

	// 20% of income invested every month: top ratio band + full consistency.
	ir := metricByName(t, report, "investment_regularity")
	if ir.Score != 100 {
		t.Errorf("investment_regularity score = %v, want 100", ir.Score)
	}
}
