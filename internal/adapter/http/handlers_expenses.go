package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"expensemanager/internal/domain"
)

type dateRangeQuery struct {
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
}

type decisionRequest struct {
	Comment *string `json:"comment"`
}

var errMissingCategory = errors.New("category is required")

func (s *Server) handleAllExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.AllExpenses(r.Context())
	if err != nil {
		s.internalError(w, "list expenses", err)
		return
	}
	writeList(w, list, nil)
}

func (s *Server) handlePendingExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.PendingExpenses(r.Context())
	if err != nil {
		s.internalError(w, "list pending expenses", err)
		return
	}
	writeList(w, list, nil)
}

func (s *Server) handleEmployeeExpenses(w http.ResponseWriter, r *http.Request) {
	employeeID, err := idParam(r, "employeeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.expenses.ExpensesByEmployee(r.Context(), employeeID)
	if err != nil {
		s.internalError(w, "list employee expenses", err)
		return
	}
	writeList(w, list, map[string]any{"employeeId": employeeID})
}

func (s *Server) handleCategoryExpenses(w http.ResponseWriter, r *http.Request) {
	category, err := categoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.expenses.ExpensesByCategory(r.Context(), category)
	if err != nil {
		s.internalError(w, "list category expenses", err)
		return
	}
	writeList(w, list, map[string]any{"category": category})
}

func (s *Server) handleDateRangeExpenses(w http.ResponseWriter, r *http.Request) {
	q, ok := s.dateRange(w, r)
	if !ok {
		return
	}
	list, err := s.expenses.ExpensesByDateRange(r.Context(), q.StartDate, q.EndDate)
	if err != nil {
		s.internalError(w, "list expenses by date range", err)
		return
	}
	writeList(w, list, map[string]any{"startDate": q.StartDate, "endDate": q.EndDate})
}

func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "expenseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expense, approval, err := s.expenses.Expense(r.Context(), expenseID)
	if err != nil {
		s.internalError(w, "get expense", err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"expense":  expense,
		"approval": approval,
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, domain.StatusApproved)
}

func (s *Server) handleDeny(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, domain.StatusDenied)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, status string) {
	expenseID, err := idParam(r, "expenseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req decisionRequest
	if err := parseJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	manager := currentUser(r.Context())
	decide := s.expenses.ApproveExpense
	if status == domain.StatusDenied {
		decide = s.expenses.DenyExpense
	}
	updated, err := decide(r.Context(), expenseID, manager.ID, req.Comment)
	if err != nil {
		s.internalError(w, "record decision", err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "expense not found or already processed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "expense " + status + " successfully",
	})
}

// categoryQuery requires the category parameter to be present. An empty value
// is allowed and matches every expense.
func categoryQuery(r *http.Request) (string, error) {
	q := r.URL.Query()
	if !q.Has("category") {
		return "", errMissingCategory
	}
	return q.Get("category"), nil
}

func (s *Server) dateRange(w http.ResponseWriter, r *http.Request) (dateRangeQuery, bool) {
	q := dateRangeQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "startDate and endDate must be yyyy-MM-dd dates")
		return q, false
	}
	return q, true
}

func writeList(w http.ResponseWriter, list []domain.ExpenseWithUser, extra map[string]any) {
	body := map[string]any{
		"success": true,
		"data":    list,
		"count":   len(list),
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
