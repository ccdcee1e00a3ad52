package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, notifyEmail, err := decodeTransaction(r)
	if err != nil {
		if core.IsValidationError(err) {
			respondError(w, http.StatusBadRequest, "invalid transaction data", err)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.transactions.Create(r.Context(), tx, notifyEmail)
	if err != nil {
		if core.IsValidationError(err) {
			respondError(w, http.StatusBadRequest, "invalid transaction data", err)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save transaction",
			"error", err,
			applog.FieldTitle, tx.Title,
			applog.FieldAmountCents, tx.Amount.Cents,
			applog.FieldComponent, applog.ComponentTransaction)
		respondError(w, http.StatusInternalServerError, "failed to save transaction", nil)
		return
	}

	s.dashCache.Purge()

	now := time.Now()
	if result.Outcome == services.OutcomeNoticeFailed {
		writeJSON(w, http.StatusBadGateway, envelope{
			Success: false,
			Message: "transaction saved but email notification failed",
			Data: createdPayload{
				Transaction:         viewOf(result.Transaction, now),
				SavedButEmailFailed: true,
			},
			Error: result.MailErr.Error(),
		})
		return
	}

	s.txLog.LogTransactionCreated(r.Context(),
		result.Transaction.ID,
		result.Transaction.Title,
		result.Transaction.Amount.Cents,
		string(result.Transaction.Type))

	respondOK(w, http.StatusCreated, "transaction added successfully",
		createdPayload{Transaction: viewOf(result.Transaction, now)})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list transactions", nil)
		return
	}

	now := time.Now()
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, viewOf(tx, now))
	}
	respondOK(w, http.StatusOK, "", views)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, _, err := decodeTransaction(r)
	if err != nil {
		if core.IsValidationError(err) {
			respondError(w, http.StatusBadRequest, "invalid transaction data", err)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	updated, err := s.transactions.Replace(r.Context(), id, tx)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			respondError(w, http.StatusNotFound, "transaction not found", nil)
		case core.IsValidationError(err):
			respondError(w, http.StatusBadRequest, "invalid transaction data", err)
		default:
			slog.ErrorContext(r.Context(), "Failed to update transaction",
				"error", err, applog.FieldTransactionID, id)
			respondError(w, http.StatusInternalServerError, "failed to update transaction", nil)
		}
		return
	}

	s.dashCache.Purge()
	respondOK(w, http.StatusOK, "transaction updated successfully", viewOf(updated, time.Now()))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.transactions.Remove(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found", nil)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction",
			"error", err, applog.FieldTransactionID, id)
		respondError(w, http.StatusInternalServerError, "failed to delete transaction", nil)
		return
	}

	s.dashCache.Purge()
	respondOK(w, http.StatusOK, "transaction deleted successfully", nil)
}
