// This file validates the upload form before anything leaves the process:
// a missing file, a non-PDF extension or an unknown bank is rejected locally
// with zero outbound calls.
package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/core"
)

// User-facing validation messages.
const (
	msgSelectBank   = "Please select your bank."
	msgSelectFile   = "Please choose a PDF statement to upload."
	msgPDFOnly      = "Only PDF files are supported."
	msgEmptyFile    = "The selected file is empty."
	msgUnreadable   = "The upload could not be read. Please try again."
	msgFileTooLarge = "The selected file is too large."
)

// StatementUpload is a validated upload form submission.
type StatementUpload struct {
	Bank     core.Bank
	Filename string
	Data     []byte
}

// uploadError is a user-correctable problem with the submitted form. Its
// message is shown verbatim.
type uploadError struct {
	msg string
}

func (e *uploadError) Error() string { return e.msg }

// parseStatementUpload extracts and validates the bank and file fields from
// a multipart submission.
func parseStatementUpload(r *http.Request, maxBytes int64) (*StatementUpload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &uploadError{msg: msgFileTooLarge}
		}
		return nil, &uploadError{msg: msgUnreadable}
	}

	bank, err := core.ParseBank(r.FormValue("bank"))
	if err != nil {
		return nil, &uploadError{msg: msgSelectBank}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &uploadError{msg: msgSelectFile}
	}
	defer file.Close()

	// Extension check only; content validation is the parsing service's job.
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return nil, &uploadError{msg: msgPDFOnly}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &uploadError{msg: msgUnreadable}
	}
	if len(data) == 0 {
		return nil, &uploadError{msg: msgEmptyFile}
	}

	return &StatementUpload{
		Bank:     bank,
		Filename: sanitizeFilename(header.Filename),
		Data:     data,
	}, nil
}

// sanitizeFilename strips path components and control characters from a
// client-supplied filename before it is forwarded.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, name)
}
