package parserapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
)

func testLogger() *log.Logger {
	return log.New(slog.LevelError, "test")
}

const validPayload = `{
	"bank_name": "Axis Bank",
	"card_number": "4111XXXXXXXX1111",
	"statement_date": "12 Jun 2024",
	"payment_due_date": "02 Jul 2024",
	"credit_limit": 150000,
	"total_amount_due": 23450.75,
	"minimum_amount_due": 1180,
	"available_credit": 126549.25,
	"previous_balance": 8000,
	"transactions": [
		{"date": "01/06/2024", "description": "Groceries", "amount": 1500, "type": "debit"},
		{"date": "03/06/2024", "description": "Refund", "amount": 200, "type": "credit"}
	]
}`

func TestClientParseSuccess(t *testing.T) {
	var gotBank, gotFilename string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotBank = r.FormValue("bank")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer f.Close()
			gotFilename = hdr.Filename
			buf := make([]byte, 16)
			n, _ := f.Read(buf)
			gotBody = buf[:n]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validPayload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/parse-statement/", 5*time.Second, testLogger())
	st, err := c.Parse(context.Background(), core.BankAxis, "axis.pdf", []byte("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBank != "axis" {
		t.Fatalf("service saw bank %q", gotBank)
	}
	if gotFilename != "axis.pdf" {
		t.Fatalf("service saw filename %q", gotFilename)
	}
	if !strings.HasPrefix(string(gotBody), "%PDF-1.4") {
		t.Fatalf("service saw body %q", gotBody)
	}

	if st.BankName != "Axis Bank" {
		t.Fatalf("bank name = %q", st.BankName)
	}
	if st.CreditLimit == nil || *st.CreditLimit != 150000 {
		t.Fatalf("credit limit = %v", st.CreditLimit)
	}
	if st.PreviousBalance == nil || *st.PreviousBalance != 8000 {
		t.Fatalf("previous balance = %v", st.PreviousBalance)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}
	if st.Transactions[0].Type != core.Debit || st.Transactions[1].Type != core.Credit {
		t.Fatalf("transaction types = %v, %v", st.Transactions[0].Type, st.Transactions[1].Type)
	}
}

func TestClientParseNullOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bank_name": "SBI", "card_number": null, "credit_limit": null, "transactions": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	st, err := c.Parse(context.Background(), core.BankSBI, "sbi.pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CardNumber != "" {
		t.Fatalf("card number = %q, want empty", st.CardNumber)
	}
	if st.CreditLimit != nil {
		t.Fatalf("credit limit = %v, want nil", *st.CreditLimit)
	}
	if len(st.Transactions) != 0 {
		t.Fatalf("transactions = %v", st.Transactions)
	}
}

func TestClientParseServiceError(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusBadRequest, `{"error": "Unsupported bank: hdfc"}`, "Unsupported bank: hdfc"},
		{"detail string", http.StatusInternalServerError, `{"detail": "parser crashed"}`, "parser crashed"},
		{"unparseable body", http.StatusBadGateway, `<html>`, ""},
		{"detail array", http.StatusUnprocessableEntity, `{"detail": [{"msg": "field required"}]}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, testLogger())
			_, err := c.Parse(context.Background(), core.BankYes, "x.pdf", []byte("pdf"))
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", apiErr.StatusCode, tc.status)
			}
			if apiErr.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", apiErr.Message, tc.wantMsg)
			}
		})
	}
}

func TestClientParseMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"empty bank name", `{"bank_name": "", "transactions": []}`},
		{"negative amount", `{"bank_name": "SBI", "transactions": [{"date": "x", "description": "d", "amount": -5, "type": "debit"}]}`},
		{"unknown type", `{"bank_name": "SBI", "transactions": [{"date": "x", "description": "d", "amount": 5, "type": "transfer"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, testLogger())
			_, err := c.Parse(context.Background(), core.BankSBI, "x.pdf", []byte("pdf"))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestClientParseTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second, testLogger())
	_, err := c.Parse(context.Background(), core.BankAxis, "x.pdf", []byte("pdf"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestClientParseTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() { close(block); srv.Close() }()

	c := NewClient(srv.URL, 50*time.Millisecond, testLogger())
	_, err := c.Parse(context.Background(), core.BankAxis, "x.pdf", []byte("pdf"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError after timeout, got %v", err)
	}
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("ping hit %q, want /", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/parse-statement/", time.Second, testLogger())
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
