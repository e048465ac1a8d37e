package core

import (
	"errors"
	"math"
	"sort"
)

// topSlices is how many individual spending entries the chart shows before
// everything else collapses into the "Others" slice.
const topSlices = 4

// OthersLabel names the synthetic slice aggregating entries beyond the top 4.
const OthersLabel = "Others"

// ErrNoSpendingData signals that a statement has no debit transactions, so
// there is nothing to chart. Callers render a placeholder instead of a chart.
var ErrNoSpendingData = errors.New("no spending transactions")

type (
	// ChartSlice is one labeled amount contributing to the spending chart.
	ChartSlice struct {
		Label  string
		Amount float64
	}

	// Breakdown is the spending aggregation driving the chart and legend.
	// Total always equals the sum of all slice amounts.
	Breakdown struct {
		Slices []ChartSlice
		Total  float64
	}
)

// SpendingBreakdown aggregates a statement's transactions for the spending
// chart: debit entries only, sorted by amount descending (stable, so ties
// keep their statement order), the top 4 as individual slices and the rest
// summed into "Others". The grand total covers every debit entry.
//
// Returns ErrNoSpendingData when the input has no debit transactions.
func SpendingBreakdown(txns []Transaction) (Breakdown, error) {
	debits := make([]Transaction, 0, len(txns))
	for _, tx := range txns {
		if tx.Type == Debit {
			debits = append(debits, tx)
		}
	}
	if len(debits) == 0 {
		return Breakdown{}, ErrNoSpendingData
	}

	sort.SliceStable(debits, func(i, j int) bool {
		return debits[i].Amount > debits[j].Amount
	})

	var total float64
	for _, tx := range debits {
		total += tx.Amount
	}

	top := len(debits)
	if top > topSlices {
		top = topSlices
	}
	slices := make([]ChartSlice, 0, top+1)
	for _, tx := range debits[:top] {
		slices = append(slices, ChartSlice{Label: tx.Description, Amount: tx.Amount})
	}
	if len(debits) > topSlices {
		var rest float64
		for _, tx := range debits[topSlices:] {
			rest += tx.Amount
		}
		slices = append(slices, ChartSlice{Label: OthersLabel, Amount: rest})
	}

	return Breakdown{Slices: slices, Total: total}, nil
}

// Percent returns amount's share of the breakdown total as a percentage
// rounded to one decimal place. A zero total (every debit exactly 0) yields
// 0 rather than dividing by zero.
func (b Breakdown) Percent(amount float64) float64 {
	if b.Total == 0 {
		return 0
	}
	return math.Round(amount/b.Total*1000) / 10
}

// Fraction returns amount's unrounded share of the total in [0,1], used for
// chart geometry where rounding would leave visible gaps.
func (b Breakdown) Fraction(amount float64) float64 {
	if b.Total == 0 {
		return 0
	}
	return amount / b.Total
}
