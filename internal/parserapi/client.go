// Package parserapi is the client for the external credit-card statement
// parsing service. It owns the single outbound round trip: a multipart POST
// carrying the bank identifier and the PDF, answered by a JSON statement
// payload or a JSON error body.
//
// Response bodies are decoded and validated at this boundary so malformed shapes
// surface as ErrMalformedResponse instead of leaking into rendering.
package parserapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
)

// maxResponseBytes bounds how much of a response body is read. Statement
// payloads are small; anything bigger is not a statement.
const maxResponseBytes = 8 << 20

// ErrMalformedResponse marks a response body that is not a well-formed
// statement payload.
var ErrMalformedResponse = errors.New("malformed parser response")

// TransportError wraps network-level failures reaching the parsing service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("parser service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-success response from the parsing service. Message holds
// the service-provided error text when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("parser service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("parser service returned %d", e.StatusCode)
}

// StatementParser is the one operation the UI layer needs from the service.
type StatementParser interface {
	Parse(ctx context.Context, bank core.Bank, filename string, pdf []byte) (*core.Statement, error)
}

// Client performs statement parsing against the remote HTTP service.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *log.Logger
}

// NewClient builds a client for the given parse endpoint. The timeout bounds
// the whole round trip, upload included.
func NewClient(endpoint string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.WithComponent(log.ComponentParserAPI),
	}
}

// statementPayload mirrors the service's JSON response shape.
type statementPayload struct {
	BankName         string        `json:"bank_name"`
	CardNumber       *string       `json:"card_number"`
	StatementDate    *string       `json:"statement_date"`
	PaymentDueDate   *string       `json:"payment_due_date"`
	CreditLimit      *float64      `json:"credit_limit"`
	TotalAmountDue   *float64      `json:"total_amount_due"`
	MinimumAmountDue *float64      `json:"minimum_amount_due"`
	AvailableCredit  *float64      `json:"available_credit"`
	PreviousBalance  *float64      `json:"previous_balance"`
	Transactions     []txnPayload  `json:"transactions"`
}

type txnPayload struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

// errorPayload covers both the service's own error bodies ({"error": ...})
// and FastAPI-style fallbacks ({"detail": ...}).
type errorPayload struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func (p errorPayload) message() string {
	if p.Error != "" {
		return p.Error
	}
	var s string
	if json.Unmarshal(p.Detail, &s) == nil {
		return s
	}
	return ""
}

// Parse uploads the PDF and returns the parsed, validated statement.
func (c *Client) Parse(ctx context.Context, bank core.Bank, filename string, pdf []byte) (*core.Statement, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("bank", string(bank)); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("building parse request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Parse request failed",
			log.FieldError, err,
			log.FieldBank, string(bank),
			log.FieldSizeBytes, len(pdf))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var ep errorPayload
		_ = json.Unmarshal(data, &ep)
		c.logger.WarnContext(ctx, "Parse request rejected",
			log.FieldStatusCode, resp.StatusCode,
			log.FieldBank, string(bank))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ep.message()}
	}

	var payload statementPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	st := payload.toStatement()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.logger.InfoContext(ctx, "Statement parsed",
		log.FieldBank, string(bank),
		log.FieldTxnCount, len(st.Transactions),
		log.FieldDuration, time.Since(start).Milliseconds())
	return st, nil
}

// Ping checks that the service host answers at all. Used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	root := u.Scheme + "://" + u.Host + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (p statementPayload) toStatement() *core.Statement {
	st := &core.Statement{
		BankName:         p.BankName,
		CardNumber:       deref(p.CardNumber),
		StatementDate:    deref(p.StatementDate),
		PaymentDueDate:   deref(p.PaymentDueDate),
		CreditLimit:      p.CreditLimit,
		TotalAmountDue:   p.TotalAmountDue,
		MinimumAmountDue: p.MinimumAmountDue,
		AvailableCredit:  p.AvailableCredit,
		PreviousBalance:  p.PreviousBalance,
	}
	for _, tx := range p.Transactions {
		st.Transactions = append(st.Transactions, core.Transaction{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        core.TxnType(strings.ToLower(strings.TrimSpace(tx.Type))),
		})
	}
	return st
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
