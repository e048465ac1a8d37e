package http

import (
	"strings"
	"testing"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
)

func TestBuildStatementViewPlaceholders(t *testing.T) {
	st := &core.Statement{
		BankName: "Kotak Bank",
		Transactions: []core.Transaction{
			{Date: "01/07/2026", Description: "GROCERIES", Amount: 250, Type: core.Debit},
		},
	}

	view := buildStatementView(st)

	if view.BankName != "Kotak Bank" {
		t.Errorf("BankName = %q", view.BankName)
	}
	for field, got := range map[string]string{
		"CardNumber":       view.CardNumber,
		"StatementDate":    view.StatementDate,
		"PaymentDueDate":   view.PaymentDueDate,
		"CreditLimit":      view.CreditLimit,
		"TotalAmountDue":   view.TotalAmountDue,
		"MinimumAmountDue": view.MinimumAmountDue,
		"AvailableCredit":  view.AvailableCredit,
		"PreviousBalance":  view.PreviousBalance,
	} {
		if got != core.NotAvailable {
			t.Errorf("%s = %q, want %q", field, got, core.NotAvailable)
		}
	}
}

func TestBuildStatementViewZeroIsNotPlaceholder(t *testing.T) {
	zero := 0.0
	st := &core.Statement{BankName: "SBI", TotalAmountDue: &zero}

	view := buildStatementView(st)

	if view.TotalAmountDue != "₹0.00" {
		t.Errorf("TotalAmountDue = %q, want ₹0.00", view.TotalAmountDue)
	}
}

func TestBuildStatementViewTransactionRows(t *testing.T) {
	st := &core.Statement{
		BankName: "Yes Bank",
		Transactions: []core.Transaction{
			{Date: "02/07/2026", Description: "UBER", Amount: 320.5, Type: core.Debit},
			{Date: "06/07/2026", Description: "REFUND", Amount: 100, Type: core.Credit},
		},
	}

	view := buildStatementView(st)

	if len(view.Transactions) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2", len(view.Transactions))
	}
	if row := view.Transactions[0]; !row.IsDebit || row.TypeLabel != "DEBIT" || row.Amount != "₹320.50" {
		t.Errorf("debit row = %+v", row)
	}
	if row := view.Transactions[1]; row.IsDebit || row.TypeLabel != "CREDIT" {
		t.Errorf("credit row = %+v", row)
	}
}

func TestBuildStatementViewNoDebitSpending(t *testing.T) {
	st := &core.Statement{
		BankName: "BOB",
		Transactions: []core.Transaction{
			{Date: "05/07/2026", Description: "PAYMENT", Amount: 5000, Type: core.Credit},
		},
	}

	if view := buildStatementView(st); view.Spending != nil {
		t.Errorf("Spending = %+v, want nil for a statement with no debits", view.Spending)
	}
}

func TestBuildSpendingView(t *testing.T) {
	b := core.Breakdown{
		Slices: []core.ChartSlice{
			{Label: "RENT", Amount: 600},
			{Label: "GROCERIES", Amount: 500},
			{Label: "FUEL", Amount: 400},
			{Label: "DINING", Amount: 300},
			{Label: core.OthersLabel, Amount: 300},
		},
		Total: 2100,
	}

	view := buildSpendingView(b)

	if view.CenterLabel != "₹2,100" {
		t.Errorf("CenterLabel = %q, want ₹2,100", view.CenterLabel)
	}
	if len(view.Slices) != 5 {
		t.Fatalf("len(Slices) = %d, want 5", len(view.Slices))
	}
	if view.Slices[4].Percent != "14.3%" {
		t.Errorf("Others percent = %q, want 14.3%%", view.Slices[4].Percent)
	}

	gradient := string(view.Gradient)
	if !strings.HasPrefix(gradient, "conic-gradient(") {
		t.Fatalf("Gradient = %q", gradient)
	}
	// The last slice must close the ring exactly.
	if !strings.Contains(gradient, "100.0000%)") {
		t.Errorf("gradient does not end at 100%%: %q", gradient)
	}
	// Distinct colors for every slice.
	seen := make(map[string]bool)
	for _, sv := range view.Slices {
		if seen[sv.Color] {
			t.Errorf("color %s reused", sv.Color)
		}
		seen[sv.Color] = true
	}
}

func TestBuildSpendingViewZeroTotal(t *testing.T) {
	b := core.Breakdown{
		Slices: []core.ChartSlice{
			{Label: "FEE WAIVED", Amount: 0},
			{Label: "ADJUSTMENT", Amount: 0},
		},
		Total: 0,
	}

	view := buildSpendingView(b)

	for _, sv := range view.Slices {
		if sv.Percent != "0.0%" {
			t.Errorf("Percent = %q, want 0.0%% for zero totals", sv.Percent)
		}
	}
	if !strings.Contains(string(view.Gradient), "50.0000%") {
		t.Errorf("zero-total ring should split evenly: %q", view.Gradient)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{"  july statement.pdf  ", "july statement.pdf"},
		{"bad\x00name.pdf", "badname.pdf"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
