package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

type createBudgetRequest struct {
	UserID     int64       `json:"user_id"`
	CategoryID *int64      `json:"category_id"`
	Amount     json.Number `json:"amount"`
	Period     string      `json:"period"`
	StartDate  string      `json:"start_date"`
}

type updateBudgetRequest struct {
	Amount        *json.Number `json:"amount"`
	Period        *string      `json:"period"`
	StartDate     *string      `json:"start_date"`
	CategoryID    *int64       `json:"category_id"`
	ClearCategory bool         `json:"clear_category"`
}

type budgetResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"start_date"`
}

// budgetStatusResponse reports one evaluation. Window and totals are
// present only for active budgets.
type budgetStatusResponse struct {
	BudgetID    int64  `json:"budget_id"`
	Active      bool   `json:"active"`
	Limit       string `json:"limit"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
	Spent       string `json:"spent,omitempty"`
	Remaining   string `json:"remaining,omitempty"`
	Overrun     bool   `json:"overrun"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount.Decimal(),
		Period:     string(b.Period),
		StartDate:  b.StartDate.String(),
	}
}

func toBudgetStatusResponse(st core.BudgetStatus) budgetStatusResponse {
	out := budgetStatusResponse{
		BudgetID: st.BudgetID,
		Active:   st.Active,
		Limit:    st.Limit.Decimal(),
	}
	if st.Active {
		out.WindowStart = st.Window.Start.String()
		out.WindowEnd = st.Window.End.String()
		out.Spent = st.Spent.Decimal()
		out.Remaining = st.Remaining.Decimal()
		out.Overrun = st.Overrun
	}
	return out
}

// asOfDate resolves the optional as_of query parameter, defaulting to
// the current day.
func asOfDate(r *http.Request) (core.Date, error) {
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		return core.Date{}, err
	}
	if asOf.IsZero() {
		now := time.Now()
		asOf = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}
	return asOf, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	startDate, err := core.ParseDate(req.StartDate)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	budget, err := s.budgets.Create(r.Context(), core.Budget{
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Period:     core.Period(req.Period),
		StartDate:  startDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	filter := storage.BudgetFilter{CategoryID: categoryID}
	if userID != nil {
		filter.UserID = *userID
	}
	if raw := r.URL.Query().Get("period"); raw != "" {
		period, err := core.ParsePeriod(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Period = period
	}

	budgets, err := s.budgets.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	budget, err := s.budgets.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	upd := storage.BudgetUpdate{
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		upd.Amount = &amount
	}
	if req.Period != nil {
		period := core.Period(*req.Period)
		upd.Period = &period
	}
	if req.StartDate != nil {
		startDate, err := core.ParseDate(*req.StartDate)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		upd.StartDate = &startDate
	}

	budget, err := s.budgets.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := s.budgets.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	asOf, err := asOfDate(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	status, err := s.budgets.Evaluate(r.Context(), id, asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetStatusResponse(status))
}

func (s *Server) handleAllBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if userID == nil {
		badRequest(w, "user_id is required")
		return
	}
	asOf, err := asOfDate(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	statuses, err := s.budgets.EvaluateAll(r.Context(), *userID, asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, toBudgetStatusResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}
