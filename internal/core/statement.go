package core

import (
	"errors"
	"math"
	"strings"
)

const (
	Debit  TxnType = "debit"
	Credit TxnType = "credit"
)

const (
	BankAxis  Bank = "axis"
	BankBOB   Bank = "bob"
	BankKotak Bank = "kotak"
	BankSBI   Bank = "sbi"
	BankYes   Bank = "yes"
)

type (
	// TxnType distinguishes spending entries from credits/refunds.
	// Only debit entries participate in spending analytics.
	TxnType string

	// Bank identifies one of the supported statement issuers.
	Bank string

	// Transaction is a single statement line item. Date is an opaque
	// display string as returned by the parsing service.
	Transaction struct {
		Date        string
		Description string
		Amount      float64
		Type        TxnType
	}

	// Statement is the parsed representation of a credit-card billing
	// statement. Numeric fields are pointers: the parsing service may be
	// unable to extract any of them, and absence must stay distinguishable
	// from zero.
	Statement struct {
		BankName         string
		CardNumber       string
		StatementDate    string
		PaymentDueDate   string
		CreditLimit      *float64
		TotalAmountDue   *float64
		MinimumAmountDue *float64
		AvailableCredit  *float64
		PreviousBalance  *float64
		Transactions     []Transaction
	}
)

var (
	ErrUnknownBank      = errors.New("unknown bank")
	ErrUnknownTxnType   = errors.New("unknown transaction type")
	ErrNegativeAmount   = errors.New("negative transaction amount")
	ErrNonFiniteAmount  = errors.New("non-finite amount")
	ErrEmptyBankName    = errors.New("empty bank name")
	ErrEmptyDescription = errors.New("empty transaction description")
)

// Banks lists the supported issuers in the order the selector shows them.
var Banks = []Bank{BankAxis, BankBOB, BankKotak, BankSBI, BankYes}

// ParseBank maps a form value to a supported Bank. Matching is
// case-insensitive and whitespace-tolerant.
func ParseBank(s string) (Bank, error) {
	switch Bank(strings.ToLower(strings.TrimSpace(s))) {
	case BankAxis:
		return BankAxis, nil
	case BankBOB:
		return BankBOB, nil
	case BankKotak:
		return BankKotak, nil
	case BankSBI:
		return BankSBI, nil
	case BankYes:
		return BankYes, nil
	}
	return "", ErrUnknownBank
}

// DisplayName returns the bank name as shown in the selector.
func (b Bank) DisplayName() string {
	switch b {
	case BankAxis:
		return "Axis Bank"
	case BankBOB:
		return "Bank of Baroda"
	case BankKotak:
		return "Kotak Bank"
	case BankSBI:
		return "SBI"
	case BankYes:
		return "Yes Bank"
	}
	return string(b)
}

func (t TxnType) Validate() error {
	switch t {
	case Debit, Credit:
		return nil
	}
	return ErrUnknownTxnType
}

func (tx Transaction) Validate() error {
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return ErrNonFiniteAmount
	}
	// Amounts are magnitudes; direction is carried by Type.
	if tx.Amount < 0 {
		return ErrNegativeAmount
	}
	return tx.Type.Validate()
}

// Validate checks the invariants the rendering layer relies on. It is run
// against service responses at the boundary so a malformed payload never
// reaches a template.
func (s Statement) Validate() error {
	if strings.TrimSpace(s.BankName) == "" {
		return ErrEmptyBankName
	}
	for _, f := range []*float64{s.CreditLimit, s.TotalAmountDue, s.MinimumAmountDue, s.AvailableCredit, s.PreviousBalance} {
		if f != nil && (math.IsNaN(*f) || math.IsInf(*f, 0)) {
			return ErrNonFiniteAmount
		}
	}
	for _, tx := range s.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	return nil
}
