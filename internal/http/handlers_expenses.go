package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

type createExpenseRequest struct {
	UserID      int64       `json:"user_id"`
	CategoryID  *int64      `json:"category_id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	ReceiptPath string      `json:"receipt_path"`
}

type updateExpenseRequest struct {
	Description   *string      `json:"description"`
	Amount        *json.Number `json:"amount"`
	Date          *string      `json:"date"`
	CategoryID    *int64       `json:"category_id"`
	ClearCategory bool         `json:"clear_category"`
	ReceiptPath   *string      `json:"receipt_path"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	ReceiptPath string `json:"receipt_path,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// expenseDetailResponse adds the attached tags to the single-expense view.
type expenseDetailResponse struct {
	expenseResponse
	Tags []tagResponse `json:"tags"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Description: e.Description,
		Amount:      e.Amount.Decimal(),
		Date:        e.Date.String(),
		ReceiptPath: e.ReceiptPath,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expense, err := s.expenses.Create(r.Context(), core.Expense{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		ReceiptPath: req.ReceiptPath,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
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
	from, err := queryDate(r, "start_date")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	filter := storage.ExpenseFilter{
		CategoryID: categoryID,
		From:       from,
		To:         to,
		Search:     r.URL.Query().Get("q"),
		Limit:      limit,
		Offset:     offset,
	}
	if userID != nil {
		filter.UserID = *userID
	}

	expenses, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	expense, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := s.expenses.Tags(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := expenseDetailResponse{
		expenseResponse: toExpenseResponse(expense),
		Tags:            make([]tagResponse, 0, len(tags)),
	}
	for _, t := range tags {
		out.Tags = append(out.Tags, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	upd := storage.ExpenseUpdate{
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		ReceiptPath:   req.ReceiptPath,
	}
	if req.Description != nil {
		clean := sanitizeInput(*req.Description)
		upd.Description = &clean
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		upd.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		upd.Date = &date
	}

	expense, err := s.expenses.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachTag(w http.ResponseWriter, r *http.Request) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.expenses.AttachTag(r.Context(), expenseID, tagID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetachTag(w http.ResponseWriter, r *http.Request) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := s.expenses.DetachTag(r.Context(), expenseID, tagID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
