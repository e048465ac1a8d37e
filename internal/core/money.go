// Package core holds the statement domain types plus the money formatting
// and spending aggregation used to render them.
//
// This file formats rupee amounts with Indian digit grouping (1,23,456.78):
// the last three digits form one group, everything above groups in pairs.
package core

import (
	"math"
	"strconv"
	"strings"
)

// NotAvailable is rendered wherever the parsing service could not extract a
// value. Absent fields must never show as zero.
const NotAvailable = "Not Available"

// FormatINR formats an amount as rupees with two decimals, e.g. "₹1,23,456.78".
func FormatINR(amount float64) string {
	neg := math.Signbit(amount)
	s := strconv.FormatFloat(math.Abs(amount), 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	out := "₹" + groupIndian(s[:dot]) + s[dot:]
	if neg {
		return "-" + out
	}
	return out
}

// FormatINRWhole formats an amount rounded to whole rupees, e.g. "₹2,100".
// Used for the chart center label where decimals would not fit.
func FormatINRWhole(amount float64) string {
	neg := math.Signbit(amount)
	s := strconv.FormatFloat(math.Round(math.Abs(amount)), 'f', 0, 64)
	out := "₹" + groupIndian(s)
	if neg {
		return "-" + out
	}
	return out
}

// FormatOptINR formats an optional amount, falling back to the NotAvailable
// placeholder when the value is absent.
func FormatOptINR(amount *float64) string {
	if amount == nil {
		return NotAvailable
	}
	return FormatINR(*amount)
}

// groupIndian inserts Indian-system separators into a plain digit string.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	var b strings.Builder
	// Leading group of one or two digits, then pairs.
	lead := len(head) % 2
	if lead == 0 {
		lead = 2
	}
	b.WriteString(head[:lead])
	for i := lead; i < len(head); i += 2 {
		b.WriteByte(',')
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(digits[len(digits)-3:])
	return b.String()
}
