package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
	"github.com/ArthurFrin/balance-ton-compte/internal/service"
)

// APIHandlers exposes the six ledger operations over HTTP. The userId is
// taken as an opaque, pre-validated identifier; authentication lives outside
// this service.
type APIHandlers struct {
	logger *slog.Logger
	ledger *service.LedgerService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, ledger *service.LedgerService) *APIHandlers {
	return &APIHandlers{
		logger: logger,
		ledger: ledger,
	}
}

func (h *APIHandlers) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC3339")
		return
	}

	purchase, err := h.ledger.CreatePurchase(r.Context(), domain.PurchaseInput{
		UserID:      req.UserID,
		Description: req.Description,
		Price:       req.Price,
		Date:        date,
		Tags:        req.Tags,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.logger.Error("failed to create purchase", "error", err, "userId", req.UserID)
		writeError(w, http.StatusInternalServerError, "failed to create purchase")
		return
	}

	respondJSON(w, http.StatusCreated, toPurchaseResponse(purchase))
}

func (h *APIHandlers) listPurchases(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	start, err := parseTimeParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
		return
	}
	end, err := parseTimeParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
		return
	}

	purchases, err := h.ledger.ListPurchases(r.Context(), service.ListParams{
		UserID:     userID,
		CategoryID: r.URL.Query().Get("categoryId"),
		StartDate:  start,
		EndDate:    end,
		Limit:      parseIntParam(r, "limit", 0),
		Offset:     parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.logger.Error("failed to list purchases", "error", err, "userId", userID)
		writeError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}

	items := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, toPurchaseResponse(p))
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *APIHandlers) updatePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID := chi.URLParam(r, "purchaseId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	var req updatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	update := domain.PurchaseUpdate{
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be RFC3339")
			return
		}
		update.Date = &date
	}

	purchase, err := h.ledger.UpdatePurchase(r.Context(), purchaseID, userID, update)
	if err != nil {
		h.logger.Error("failed to update purchase", "error", err, "purchaseId", purchaseID)
		writeError(w, http.StatusInternalServerError, "failed to update purchase")
		return
	}
	if purchase == nil {
		writeError(w, http.StatusNotFound, "purchase not found")
		return
	}

	respondJSON(w, http.StatusOK, toPurchaseResponse(*purchase))
}

func (h *APIHandlers) deletePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID := chi.URLParam(r, "purchaseId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	deleted, err := h.ledger.DeletePurchase(r.Context(), purchaseID, userID)
	if err != nil {
		h.logger.Error("failed to delete purchase", "error", err, "purchaseId", purchaseID)
		writeError(w, http.StatusInternalServerError, "failed to delete purchase")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "purchase not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *APIHandlers) purchaseStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	start, err := parseTimeParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
		return
	}
	end, err := parseTimeParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
		return
	}

	stats, err := h.ledger.GetPurchaseStats(r.Context(), userID, start, end)
	if err != nil {
		h.logger.Error("failed to compute purchase stats", "error", err, "userId", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute purchase stats")
		return
	}

	response := purchaseStatsResponse{
		TotalAmount:     stats.TotalAmount,
		TotalCount:      stats.TotalCount,
		CategoriesStats: make([]categoryStatResponse, 0, len(stats.Categories)),
	}
	for _, c := range stats.Categories {
		response.CategoriesStats = append(response.CategoriesStats, categoryStatResponse{
			CategoryID:  c.CategoryID,
			TotalAmount: c.TotalAmount,
			Count:       c.Count,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) monthlyPurchaseStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	start, err := parseTimeParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
		return
	}
	end, err := parseTimeParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
		return
	}

	stats, err := h.ledger.GetMonthlyPurchaseStats(r.Context(), userID, start, end, parseIntParam(r, "months", 0))
	if err != nil {
		h.logger.Error("failed to compute monthly stats", "error", err, "userId", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute monthly stats")
		return
	}

	response := monthlyStatsResponse{
		Months:        stats.Months,
		CategoryStats: make([]categorySeriesResponse, 0, len(stats.Categories)),
	}
	for _, c := range stats.Categories {
		response.CategoryStats = append(response.CategoryStats, categorySeriesResponse{
			CategoryID:     c.CategoryID,
			MonthlyAmounts: c.MonthlyAmounts,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}
