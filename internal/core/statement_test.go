package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseBank(t *testing.T) {
	cases := []struct {
		in   string
		want Bank
		ok   bool
	}{
		{"axis", BankAxis, true},
		{"AXIS", BankAxis, true},
		{" sbi ", BankSBI, true},
		{"bob", BankBOB, true},
		{"kotak", BankKotak, true},
		{"yes", BankYes, true},
		{"hdfc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseBank(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ParseBank(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		} else if !errors.Is(err, ErrUnknownBank) {
			t.Fatalf("ParseBank(%q) expected ErrUnknownBank, got %v", tc.in, err)
		}
	}
}

func TestBankDisplayName(t *testing.T) {
	if got := BankBOB.DisplayName(); got != "Bank of Baroda" {
		t.Fatalf("DisplayName = %q", got)
	}
	if len(Banks) != 5 {
		t.Fatalf("expected 5 supported banks, got %d", len(Banks))
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"valid debit", Transaction{Description: "Groceries", Amount: 12.5, Type: Debit}, nil},
		{"valid credit", Transaction{Description: "Refund", Amount: 100, Type: Credit}, nil},
		{"zero amount allowed", Transaction{Description: "Fee waiver", Amount: 0, Type: Debit}, nil},
		{"negative amount", Transaction{Description: "x", Amount: -1, Type: Debit}, ErrNegativeAmount},
		{"nan amount", Transaction{Description: "x", Amount: math.NaN(), Type: Debit}, ErrNonFiniteAmount},
		{"empty description", Transaction{Description: "  ", Amount: 1, Type: Debit}, ErrEmptyDescription},
		{"unknown type", Transaction{Description: "x", Amount: 1, Type: "transfer"}, ErrUnknownTxnType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStatementValidate(t *testing.T) {
	limit := 150000.0
	ok := Statement{
		BankName:    "Axis Bank",
		CreditLimit: &limit,
		Transactions: []Transaction{
			{Date: "12/06/2024", Description: "Groceries", Amount: 500, Type: Debit},
		},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (Statement{}).Validate(); !errors.Is(err, ErrEmptyBankName) {
		t.Fatalf("expected ErrEmptyBankName, got %v", err)
	}

	inf := math.Inf(1)
	bad := Statement{BankName: "Axis Bank", AvailableCredit: &inf}
	if err := bad.Validate(); !errors.Is(err, ErrNonFiniteAmount) {
		t.Fatalf("expected ErrNonFiniteAmount, got %v", err)
	}

	badTx := Statement{
		BankName:     "Axis Bank",
		Transactions: []Transaction{{Description: "x", Amount: 1, Type: "wire"}},
	}
	if err := badTx.Validate(); !errors.Is(err, ErrUnknownTxnType) {
		t.Fatalf("expected ErrUnknownTxnType, got %v", err)
	}
}
