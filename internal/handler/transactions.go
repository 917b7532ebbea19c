package handler

import (
	"net/http"

	"salesledger/internal/middleware"
	"salesledger/internal/query"
)

// TransactionHandler serves the read endpoints of the ledger. Query strings
// are normalized, never rejected: malformed values fall back to defaults.
type TransactionHandler struct {
	service *query.Service
	logger  Logger
}

func NewTransactionHandler(service *query.Service, log Logger) *TransactionHandler {
	return &TransactionHandler{service: service, logger: log}
}

// GetTransactions handles GET /api/transactions.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	req := query.Normalize(query.ParamsFromValues(r.URL.Query()))

	page, err := h.service.GetPage(r.Context(), req.Filters, req.Sort, req.Page)
	if err != nil {
		h.logger.Error("Failed to fetch transactions", middleware.RequestFields(r.Context(), map[string]interface{}{
			"error": err.Error(),
			"query": r.URL.RawQuery,
		}))
		respondError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GetStats handles GET /api/transactions/stats. Sort and paging parameters
// are accepted and ignored.
func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filters := query.NormalizeFilters(query.ParamsFromValues(r.URL.Query()))

	stats, err := h.service.GetStats(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to fetch stats", middleware.RequestFields(r.Context(), map[string]interface{}{
			"error": err.Error(),
			"query": r.URL.RawQuery,
		}))
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// GetFilterOptions handles GET /api/filter-options.
func (h *TransactionHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.GetFilterOptions(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch filter options", middleware.RequestFields(r.Context(), map[string]interface{}{
			"error": err.Error(),
		}))
		respondError(w, http.StatusInternalServerError, "Failed to fetch filter options")
		return
	}

	respondJSON(w, http.StatusOK, opts)
}
