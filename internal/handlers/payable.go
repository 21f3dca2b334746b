package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printflow/backoffice/internal/httpx"
	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/services"
	"github.com/printflow/backoffice/internal/storage"
)

// PayableHandler exposes the payables engine as thin JSON endpoints. All
// business rules live in the services; handlers only translate requests and
// map errors to status codes.
type PayableHandler struct {
	Store     storage.PayableStore
	Planner   *services.Planner
	Recalc    *services.Recalculator
	Recurring *services.Recurring
	Prop      *services.Propagator
}

func NewPayableHandler(store storage.PayableStore, planner *services.Planner, recalc *services.Recalculator, recurring *services.Recurring, prop *services.Propagator) *PayableHandler {
	return &PayableHandler{Store: store, Planner: planner, Recalc: recalc, Recurring: recurring, Prop: prop}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func idParam(r *http.Request) (uint, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

type createReq struct {
	Description  string  `json:"description"`
	SupplierID   *uint   `json:"supplier_id"`
	DueDate      string  `json:"due_date"` // YYYY-MM-DD
	TotalAmount  float64 `json:"total_amount"`
	Installments int     `json:"installments"`
	IsRecurring  bool    `json:"is_recurring"`
	Amount       float64 `json:"amount"` // per occurrence, recurring only
	UserID       uint    `json:"user_id"`
	TagIDs       []uint  `json:"tag_ids"`
}

// Create: POST /api/payables – installment plan, or recurring series when
// is_recurring is set. Both answer 201; a recurring create returns only the
// head record, the rest of the series is written in the background.
func (h *PayableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"due_date": "expected YYYY-MM-DD"})
		return
	}
	tags, err := h.Store.TagsByID(r.Context(), req.TagIDs)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_tags", nil)
		return
	}

	if req.IsRecurring {
		head, err := h.Recurring.CreateSeries(r.Context(), services.RecurringInput{
			Description: req.Description,
			SupplierID:  req.SupplierID,
			DueDate:     dueDate,
			Amount:      req.Amount,
			UserID:      req.UserID,
			Tags:        tags,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, head)
		return
	}

	if req.Installments == 0 {
		req.Installments = 1
	}
	plan, err := h.Planner.CreatePlan(r.Context(), services.PlanInput{
		Description:  req.Description,
		SupplierID:   req.SupplierID,
		DueDate:      dueDate,
		TotalAmount:  req.TotalAmount,
		Installments: req.Installments,
		Tags:         tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"items": plan, "count": len(plan)})
}

// List: GET /api/payables – paginated, statuses derived at read time.
func (h *PayableHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	items, total, err := h.Store.List(r.Context(), limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payables", nil)
		return
	}
	now := time.Now()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /api/payables/{id}
func (h *PayableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p.Status = p.EffectiveStatus(time.Now())
	httpx.JSON(w, http.StatusOK, p)
}

type updateReq struct {
	Description   *string  `json:"description"`
	SupplierID    *uint    `json:"supplier_id"`
	Amount        *float64 `json:"amount"`
	DueDate       *string  `json:"due_date"`
	Status        *string  `json:"status"`
	Propagate     bool     `json:"propagate"`
	ApplyToFuture bool     `json:"apply_to_future"`
}

// Update: PATCH /api/payables/{id} – an amount edit with propagate runs the
// balance recalculation; anything else goes through the propagation engine.
func (h *PayableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if req.Amount != nil && req.Propagate {
		p, err := h.Recalc.RecalculateOnEdit(r.Context(), id, *req.Amount, true)
		if err != nil && errors.Is(err, services.ErrPlanOverCommitted) {
			// the edit was applied; surface the condition as a warning, not a failure
			httpx.JSON(w, http.StatusOK, map[string]any{"item": p, "warning": err.Error()})
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
		return
	}

	ch := services.Changes{
		Description: req.Description,
		SupplierID:  req.SupplierID,
		Amount:      req.Amount,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		d, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"due_date": "expected YYYY-MM-DD"})
			return
		}
		ch.DueDate = &d
	}
	p, err := h.Prop.UpdatePropagated(r.Context(), id, ch, req.ApplyToFuture)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: DELETE /api/payables/{id}?deleteAllFuture=true
func (h *PayableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	all := r.URL.Query().Get("deleteAllFuture") == "true"
	if err := h.Prop.DeletePropagated(r.Context(), id, all); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Pay: POST /api/payables/{id}/pay – marks a single record PAID today.
func (h *PayableHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	now := time.Now()
	status := models.StatusPaid
	p, err := h.Prop.UpdatePropagated(r.Context(), id, services.Changes{Status: &status, PaidDate: &now}, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Summary: GET /api/payables/summary – open/paid aggregates.
func (h *PayableHandler) Summary(w http.ResponseWriter, r *http.Request) {
	pendingTotal, pendingCount, err := h.Store.SumByStatus(r.Context(), models.StatusPending)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_aggregate", nil)
		return
	}
	paidTotal, paidCount, err := h.Store.SumByStatus(r.Context(), models.StatusPaid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_aggregate", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"pending": map[string]any{"total": pendingTotal, "count": pendingCount},
		"paid":    map[string]any{"total": paidTotal, "count": paidCount},
	})
}
