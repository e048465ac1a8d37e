package http

import (
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
)

// chartPalette colors the top-4 slices plus Others, in legend order.
var chartPalette = []string{"#6366f1", "#f59e0b", "#10b981", "#ef4444", "#8b5cf6"}

type (
	bankOption struct {
		Value string
		Label string
	}

	indexView struct {
		Banks []bankOption
	}

	txnRow struct {
		Date        string
		Description string
		Amount      string
		TypeLabel   string
		IsDebit     bool
	}

	sliceView struct {
		Label   string
		Amount  string
		Percent string
		Color   string
	}

	// spendingView drives the donut chart: a CSS conic gradient for the
	// ring, the grand total in the center, and a legend row per slice.
	spendingView struct {
		CenterLabel string
		Gradient    template.CSS
		Slices      []sliceView
	}

	statementView struct {
		BankName         string
		CardNumber       string
		StatementDate    string
		PaymentDueDate   string
		CreditLimit      string
		TotalAmountDue   string
		MinimumAmountDue string
		AvailableCredit  string
		PreviousBalance  string
		Transactions     []txnRow
		// Spending is nil when the statement has no debit transactions;
		// the template renders the no-spending placeholder instead.
		Spending *spendingView
	}
)

func bankOptions() []bankOption {
	opts := make([]bankOption, 0, len(core.Banks))
	for _, b := range core.Banks {
		opts = append(opts, bankOption{Value: string(b), Label: b.DisplayName()})
	}
	return opts
}

// buildStatementView converts a parsed statement into display strings.
// Absent optional fields become the "Not Available" placeholder, never zero.
func buildStatementView(st *core.Statement) statementView {
	view := statementView{
		BankName:         st.BankName,
		CardNumber:       textOrNA(st.CardNumber),
		StatementDate:    textOrNA(st.StatementDate),
		PaymentDueDate:   textOrNA(st.PaymentDueDate),
		CreditLimit:      core.FormatOptINR(st.CreditLimit),
		TotalAmountDue:   core.FormatOptINR(st.TotalAmountDue),
		MinimumAmountDue: core.FormatOptINR(st.MinimumAmountDue),
		AvailableCredit:  core.FormatOptINR(st.AvailableCredit),
		PreviousBalance:  core.FormatOptINR(st.PreviousBalance),
	}

	for _, tx := range st.Transactions {
		view.Transactions = append(view.Transactions, txnRow{
			Date:        textOrNA(tx.Date),
			Description: tx.Description,
			Amount:      core.FormatINR(tx.Amount),
			TypeLabel:   strings.ToUpper(string(tx.Type)),
			IsDebit:     tx.Type == core.Debit,
		})
	}

	breakdown, err := core.SpendingBreakdown(st.Transactions)
	if err == nil {
		view.Spending = buildSpendingView(breakdown)
	} else if !errors.Is(err, core.ErrNoSpendingData) {
		// SpendingBreakdown only fails on empty debit sets today; anything
		// else still degrades to the placeholder rather than a broken page.
		view.Spending = nil
	}

	return view
}

func buildSpendingView(b core.Breakdown) *spendingView {
	view := &spendingView{
		CenterLabel: core.FormatINRWhole(b.Total),
	}

	stops := make([]string, 0, len(b.Slices))
	cursor := 0.0
	for i, slice := range b.Slices {
		color := chartPalette[i%len(chartPalette)]

		share := b.Fraction(slice.Amount) * 100
		if b.Total == 0 {
			// All-zero debits: no proportions to show, split the ring evenly.
			share = 100 / float64(len(b.Slices))
		}
		end := cursor + share
		if i == len(b.Slices)-1 {
			end = 100
		}
		stops = append(stops, fmt.Sprintf("%s %.4f%% %.4f%%", color, cursor, end))
		cursor = end

		view.Slices = append(view.Slices, sliceView{
			Label:   slice.Label,
			Amount:  core.FormatINR(slice.Amount),
			Percent: strconv.FormatFloat(b.Percent(slice.Amount), 'f', 1, 64) + "%",
			Color:   color,
		})
	}
	view.Gradient = template.CSS("conic-gradient(" + strings.Join(stops, ", ") + ")")

	return view
}

func textOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return core.NotAvailable
	}
	return s
}
