// Package http exposes the JSON API over the transaction store, the
// analytics engine and the mail relay.
//
// Every response uses the same envelope so clients never have to guess
// the shape: {success, message, data, error}.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// transactionView is the wire representation of a transaction. Amounts
// travel as decimal strings, dates as YYYY-MM-DD, and editable is
// derived at render time from the 12 hour window.
type transactionView struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"user_id"`
	Title         string    `json:"title"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	Division      string    `json:"division"`
	PaymentMethod string    `json:"payment_method"`
	Emotion       string    `json:"emotion"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	Editable      bool      `json:"editable"`
}

func viewOf(tx core.Transaction, now time.Time) transactionView {
	return transactionView{
		ID:            tx.ID,
		OwnerID:       tx.OwnerID,
		Title:         tx.Title,
		Amount:        tx.Amount.String(),
		Type:          string(tx.Type),
		Category:      tx.Category,
		Description:   tx.Description,
		Date:          tx.Date.Format("2006-01-02"),
		Division:      string(tx.Division),
		PaymentMethod: tx.PaymentMethod,
		Emotion:       string(tx.Emotion),
		Status:        string(tx.Status),
		CreatedAt:     tx.CreatedAt,
		Editable:      tx.EditableAt(now),
	}
}

// createdPayload wraps the saved record on create responses. The flag
// marks the partial-success case: persisted, but the notice bounced.
type createdPayload struct {
	Transaction         transactionView `json:"transaction"`
	SavedButEmailFailed bool            `json:"savedButEmailFailed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err, "status", status)
	}
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}
