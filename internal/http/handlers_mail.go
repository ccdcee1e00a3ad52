package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/mail"
	"fintrack/internal/services"
)

type summaryView struct {
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	Balance      string `json:"balance"`
	HealthScore  int    `json:"health_score"`
	Transactions int    `json:"transactions"`
}

type quoteView struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

func (s *Server) handleTriggerSummary(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		respondError(w, http.StatusServiceUnavailable, "mail relay not configured", nil)
		return
	}

	recipient, err := decodeMailRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	summary, err := s.mailer.SendSummary(r.Context(), recipient)
	if err != nil {
		s.respondMailError(w, r, "summary", err)
		return
	}

	respondOK(w, http.StatusOK, "summary email sent", summaryView{
		Income:       summary.Income.String(),
		Expense:      summary.Expense.String(),
		Balance:      summary.Balance.String(),
		HealthScore:  summary.HealthScore,
		Transactions: summary.Transactions,
	})
}

func (s *Server) handleTriggerMotivation(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		respondError(w, http.StatusServiceUnavailable, "mail relay not configured", nil)
		return
	}

	recipient, err := decodeMailRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	quote, err := s.mailer.SendMotivation(r.Context(), recipient)
	if err != nil {
		s.respondMailError(w, r, "motivation", err)
		return
	}

	respondOK(w, http.StatusOK, "motivation email sent", quoteView{
		Quote:  quote.Text,
		Author: quote.Author,
	})
}

// respondMailError maps mail failures onto the envelope: missing
// recipient is the client's problem, relay failures are upstream.
func (s *Server) respondMailError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	var de *mail.DeliveryError
	switch {
	case errors.Is(err, services.ErrNoRecipient):
		respondError(w, http.StatusBadRequest, "no recipient provided or configured", err)
	case errors.As(err, &de):
		slog.ErrorContext(r.Context(), "Mail relay delivery failed",
			"kind", kind, "status", de.StatusCode, "error", de)
		respondError(w, http.StatusBadGateway, "email delivery failed", err)
	default:
		slog.ErrorContext(r.Context(), "Mail send failed", "kind", kind, "error", err)
		respondError(w, http.StatusInternalServerError, "email delivery failed", nil)
	}
}
