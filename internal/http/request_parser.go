package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// transactionRequest is the accepted create/update payload. Amount is
// kept raw because clients send it both as a JSON number and as a
// string ("19.99", "19,99").
type transactionRequest struct {
	OwnerID       string          `json:"user_id"`
	Title         string          `json:"title"`
	Amount        json.RawMessage `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`
	Division      string          `json:"division"`
	PaymentMethod string          `json:"payment_method"`
	Emotion       string          `json:"emotion"`
	NotifyEmail   string          `json:"email"`
}

// decodeTransaction parses the request body into a domain transaction
// plus the optional notification address. Field-level problems are
// reported through the domain validation sentinels so the handler can
// classify them as client errors.
func decodeTransaction(r *http.Request) (core.Transaction, string, error) {
	var req transactionRequest
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return core.Transaction{}, "", fmt.Errorf("decode request body: %w", err)
	}

	tx := core.Transaction{
		OwnerID:       sanitizeInput(req.OwnerID),
		Title:         sanitizeInput(req.Title),
		Type:          core.TransactionType(strings.TrimSpace(req.Type)),
		Category:      sanitizeInput(req.Category),
		Description:   sanitizeInput(req.Description),
		Division:      core.Division(strings.TrimSpace(req.Division)),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Emotion:       core.Emotion(strings.TrimSpace(req.Emotion)),
	}

	if len(req.Amount) > 0 {
		cents, err := parseAmount(req.Amount)
		if err != nil {
			return core.Transaction{}, "", core.ErrInvalidAmount
		}
		tx.Amount = core.Money{Cents: cents}
	}

	if dateStr := strings.TrimSpace(req.Date); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return core.Transaction{}, "", core.ErrInvalidDate
		}
		tx.Date = core.Date{Time: parsed}
	}

	return tx, strings.TrimSpace(req.NotifyEmail), nil
}

// parseAmount accepts `12.5`, `"12.5"` and `"12,50"`.
func parseAmount(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
	}
	return core.ParseDecimalToCents(strings.TrimSpace(s))
}

// decodeMailRequest reads the optional {email} body of the mail
// trigger endpoints. An absent or empty body is fine.
func decodeMailRequest(r *http.Request) (string, error) {
	var req struct {
		Email string `json:"email"`
	}
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", fmt.Errorf("decode request body: %w", err)
	}
	return strings.TrimSpace(req.Email), nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
