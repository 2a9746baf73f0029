package services

import (
	"context"
	"testing"

	"finpulse/internal/analytics"
)

func newTestAnalytics(store *fakeStore) *AnalyticsService {
	svc := NewAnalyticsService(store, AnalyticsOptions{
		Preset:          string(analytics.PresetFourPillar),
		ForecastHorizon: 6,
		CorrelationTopN: 8,
	}, testLogger())
	svc.now = fixedNow
	return svc
}

func TestAnalyticsServiceOverview(t *testing.T) {
	store := &fakeStore{txs: steadyLedger(), version: 1}
	svc := newTestAnalytics(store)

	series, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if !series.OK() {
		t.Fatal("Overview() returned empty series for a sufficient ledger")
	}
	if len(series.Months) != 6 {
		t.Errorf("got %d months, want 6", len(series.Months))
	}
	if b := series.Bucket("2024-01"); b == nil || b.Income != 100000 {
		t.Errorf("January income = %+v, want 100000", b)
	}
}

func TestAnalyticsServiceMemoizesOnDatasetVersion(t *testing.T) {
	store := &fakeStore{txs: steadyLedger(), version: 1}
	svc := newTestAnalytics(store)
	ctx := context.Background()

	if _, err := svc.Overview(ctx); err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if _, err := svc.Overview(ctx); err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if n := store.listCount(); n != 1 {
		t.Errorf("same version: store read %d times, want 1", n)
	}

	// A version bump must invalidate the memoized result.
	store.version++
	if _, err := svc.Overview(ctx); err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if n := store.listCount(); n != 2 {
		t.Errorf("after version bump: store read %d times, want 2", n)
	}
}

func TestAnalyticsServiceHealthPresetOverride(t *testing.T) {
	store := &fakeStore{txs: steadyLedger(), version: 1}
	svc := newTestAnalytics(store)
	ctx := context.Background()

	report, ok, err := svc.Health(ctx, "")
	if err != nil || !ok {
		t.Fatalf("Health() = ok %v, err %v", ok, err)
	}
	if report.Preset != analytics.PresetFourPillar {
		t.Errorf("default preset = %s, want %s", report.Preset, analytics.PresetFourPillar)
	}

	report, ok, err = svc.Health(ctx, string(analytics.PresetGrades))
	if err != nil || !ok {
		t.Fatalf("Health(grades) = ok %v, err %v", ok, err)
	}
	if report.Preset != analytics.PresetGrades {
		t.Errorf("preset = %s, want %s", report.Preset, analytics.PresetGrades)
	}
	if report.OverallGrade == "" {
		t.Error("grades preset should set an overall grade")
	}
}

func TestAnalyticsServiceTaggedAccountsAffectClassification(t *testing.T) {
	store := &fakeStore{txs: steadyLedger(), version: 1}
	svc := newTestAnalytics(store)
	ctx := context.Background()

	series, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	base := series.Bucket("2024-01").InvestmentIn
	if base != 0 {
		t.Fatalf("untagged transfer classified as investment: %v", base)
	}

	// Tagging the destination account turns the set-aside transfers into
	// investment inflows on the next version.
	store.tagged = []string{"Vault"}
	store.version++

	series, err = svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	tagged := series.Bucket("2024-01").InvestmentIn
	if tagged <= base {
		t.Errorf("investment inflow = %v after tagging, want more than %v", tagged, base)
	}
}

func TestAnalyticsServiceDashboard(t *testing.T) {
	store := &fakeStore{txs: steadyLedger(), version: 1}
	svc := newTestAnalytics(store)

	data, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if !data.Overview.OK() {
		t.Error("dashboard overview is empty")
	}
	if !data.HealthOK {
		t.Error("dashboard health not scored")
	}
	if !data.ForecastOK {
		t.Error("dashboard forecast not available")
	}
	if len(data.Recurring.Patterns) == 0 {
		t.Error("dashboard found no recurring patterns, want the streaming subscription")
	}
	if len(data.Correlation.Categories) == 0 {
		t.Error("dashboard correlation matrix is empty")
	}
}

func TestAnalyticsServiceInsufficientData(t *testing.T) {
	store := &fakeStore{txs: steadyLedger()[:4], version: 1}
	svc := newTestAnalytics(store)
	ctx := context.Background()

	series, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if series.OK() {
		t.Error("Overview() should report insufficient data for 4 transactions")
	}

	_, ok, err := svc.Health(ctx, "")
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if ok {
		t.Error("Health() should not score an insufficient ledger")
	}
}
