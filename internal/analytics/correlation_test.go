package analytics

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"finpulse/internal/core"
)

func TestCorrelateSymmetryAndDiagonal(t *testing.T) {
	var txs []core.Transaction
	for d := 1; d <= 10; d++ {
		date := fmt.Sprintf("2024-01-%02d", d)
		txs = append(txs, expense(t, date, "Groceries", float64(100+d)))
		txs = append(txs, expense(t, date, "Transport", float64(50+2*d)))
		if d%2 == 0 {
			txs = append(txs, expense(t, date, "Dining", float64(300-d)))
		}
	}

	result := Correlate(txs, 8)
	n := len(result.Categories)
	if n != 3 {
		t.Fatalf("expected 3 categories, got %v", result.Categories)
	}
	for i := 0; i < n; i++ {
		if result.Matrix[i][i] != 1 {
			t.Errorf("diagonal [%d][%d] = %v, want 1", i, i, result.Matrix[i][i])
		}
		for j := 0; j < n; j++ {
			if result.Matrix[i][j] != result.Matrix[j][i] {
				t.Errorf("matrix not symmetric at [%d][%d]", i, j)
			}
			if result.Matrix[i][j] < -1 || result.Matrix[i][j] > 1 {
				t.Errorf("r out of range at [%d][%d]: %v", i, j, result.Matrix[i][j])
			}
		}
	}
}

func TestCorrelatePerfectPositivePair(t *testing.T) {
	var txs []core.Transaction
	for d := 1; d <= 8; d++ {
		date := fmt.Sprintf("2024-02-%02d", d)
		txs = append(txs, expense(t, date, "Fuel", float64(10*d)))
		txs = append(txs, expense(t, date, "Tolls", float64(5*d)))
	}

	result := Correlate(txs, 8)
	if math.Abs(result.Matrix[0][1]-1) > 1e-9 {
		t.Errorf("perfectly aligned series r = %v, want 1", result.Matrix[0][1])
	}
	if len(result.StrongPairs) != 1 {
		t.Fatalf("expected 1 strong pair, got %+v", result.StrongPairs)
	}
	if result.StrongPairs[0].R <= strongPairThreshold {
		t.Errorf("strong pair r = %v, want > %v", result.StrongPairs[0].R, strongPairThreshold)
	}
}

func TestCorrelateAntiCorrelatedPairExcludedFromStrongPairs(t *testing.T) {
	// One category spends exactly when the other is silent.
	var txs []core.Transaction
	for d := 1; d <= 10; d++ {
		date := fmt.Sprintf("2024-03-%02d", d)
		if d%2 == 1 {
			txs = append(txs, expense(t, date, "Dining", 500))
		} else {
			txs = append(txs, expense(t, date, "Groceries", 500))
		}
	}

	result := Correlate(txs, 8)
	if len(result.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", result.Categories)
	}
	r := result.Matrix[0][1]
	if math.Abs(r+1) > 1e-9 {
		t.Errorf("anti-correlated series r = %v, want -1", r)
	}
	if len(result.StrongPairs) != 0 {
		t.Errorf("negative correlation must not appear in strong pairs: %+v", result.StrongPairs)
	}
}

func TestCorrelateTopNSelection(t *testing.T) {
	var txs []core.Transaction
	// Ten categories with strictly decreasing totals.
	for c := 0; c < 10; c++ {
		cat := fmt.Sprintf("Cat%02d", c)
		for d := 1; d <= 4; d++ {
			date := fmt.Sprintf("2024-04-%02d", d)
			txs = append(txs, expense(t, date, cat, float64(1000-c*50)))
		}
	}

	result := Correlate(txs, 8)
	if len(result.Categories) != 8 {
		t.Fatalf("expected top 8 categories, got %d", len(result.Categories))
	}
	want := []string{"Cat00", "Cat01", "Cat02", "Cat03", "Cat04", "Cat05", "Cat06", "Cat07"}
	if !reflect.DeepEqual(result.Categories, want) {
		t.Errorf("categories = %v, want %v", result.Categories, want)
	}
	if len(result.StrongPairs) > maxStrongPairs {
		t.Errorf("strong pairs capped at %d, got %d", maxStrongPairs, len(result.StrongPairs))
	}
}

func TestCorrelateEmptyAndNonExpenseInput(t *testing.T) {
	if result := Correlate(nil, 8); len(result.Categories) != 0 {
		t.Errorf("expected empty matrix for no input")
	}
	txs := []core.Transaction{income(t, "2024-01-05", 1000)}
	if result := Correlate(txs, 8); len(result.Categories) != 0 {
		t.Errorf("income records must not enter the matrix")
	}
}

func TestCorrelateIdempotent(t *testing.T) {
	var txs []core.Transaction
	for d := 1; d <= 6; d++ {
		date := fmt.Sprintf("2024-05-%02d", d)
		txs = append(txs, expense(t, date, "A", float64(d)))
		txs = append(txs, expense(t, date, "B", float64(7-d)))
	}
	a := Correlate(txs, 8)
	b := Correlate(txs, 8)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated correlation produced different output")
	}
}
