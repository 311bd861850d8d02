package adapthttp

import (
	"net/http"
	"strconv"

	"expensemanager/internal/metrics"
)

func (s *Server) handleAllReport(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.AllExpenses(r.Context())
	if err != nil {
		s.internalError(w, "all expenses report", err)
		return
	}
	s.sendReport(w, "all", "all_expenses_report.csv", s.expenses.GenerateCSVReport(list))
}

func (s *Server) handlePendingReport(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.PendingExpenses(r.Context())
	if err != nil {
		s.internalError(w, "pending expenses report", err)
		return
	}
	s.sendReport(w, "pending", "pending_expenses_report.csv", s.expenses.GenerateCSVReport(list))
}

func (s *Server) handleEmployeeReport(w http.ResponseWriter, r *http.Request) {
	employeeID, err := idParam(r, "employeeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.expenses.ExpensesByEmployee(r.Context(), employeeID)
	if err != nil {
		s.internalError(w, "employee expenses report", err)
		return
	}
	filename := "employee_" + strconv.FormatInt(employeeID, 10) + "_expenses_report.csv"
	s.sendReport(w, "employee", filename, s.expenses.GenerateCSVReport(list))
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	category, err := pathParam(r, "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	list, err := s.expenses.ExpensesByCategory(r.Context(), category)
	if err != nil {
		s.internalError(w, "category expenses report", err)
		return
	}
	filename := "category_" + safeFilenamePart(category) + "_expenses_report.csv"
	s.sendReport(w, "category", filename, s.expenses.GenerateCSVReport(list))
}

func (s *Server) handleDateRangeReport(w http.ResponseWriter, r *http.Request) {
	q, ok := s.dateRange(w, r)
	if !ok {
		return
	}
	list, err := s.expenses.ExpensesByDateRange(r.Context(), q.StartDate, q.EndDate)
	if err != nil {
		s.internalError(w, "date range expenses report", err)
		return
	}
	filename := "expenses_" + q.StartDate + "_to_" + q.EndDate + "_report.csv"
	s.sendReport(w, "daterange", filename, s.expenses.GenerateCSVReport(list))
}

func (s *Server) sendReport(w http.ResponseWriter, report, filename, body string) {
	metrics.ObserveReport(report)
	writeCSV(w, filename, body)
}
