package app

import (
	"math"
	"strconv"
	"strings"

	"expensemanager/internal/domain"
)

var csvHeader = []string{
	"Expense ID", "Employee", "Amount", "Description", "Date",
	"Status", "Reviewer", "Comment", "Review Date",
}

// GenerateCSVReport renders expenses as CSV, one row per expense in input
// order after a fixed header. Every row ends with "\n". A field is quoted only
// when it contains a comma, a double quote or a newline.
func (s *ExpenseService) GenerateCSVReport(expenses []domain.ExpenseWithUser) string {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)

	row := make([]string, len(csvHeader))
	for _, e := range expenses {
		row[0] = strconv.FormatInt(e.Expense.ID, 10)
		row[1] = e.User.Username
		row[2] = formatAmount(e.Expense.Amount)
		row[3] = e.Expense.Description
		row[4] = e.Expense.Date
		row[5] = e.Approval.Status
		row[6] = ""
		if e.Approval.Reviewer != nil {
			row[6] = strconv.FormatInt(*e.Approval.Reviewer, 10)
		}
		row[7] = deref(e.Approval.Comment)
		row[8] = deref(e.Approval.ReviewDate)
		writeCSVRow(&b, row)
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(f))
	}
	b.WriteByte('\n')
}

// escapeCSV quotes v when it contains a comma, quote or newline, doubling
// any embedded quotes.
func escapeCSV(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// formatAmount prints the shortest decimal that round-trips, keeping one
// fractional digit for whole amounts (100 -> "100.0", 100.50 -> "100.5").
// Magnitudes outside [1e-3, 1e7) switch to scientific form (1e7 -> "1.0E7").
func formatAmount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	if a := math.Abs(v); a != 0 && (a < 1e-3 || a >= 1e7) {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, 64), "E")
		n, _ := strconv.Atoi(exp)
		return withFraction(mantissa) + "E" + strconv.Itoa(n)
	}
	return withFraction(strconv.FormatFloat(v, 'f', -1, 64))
}

func withFraction(s string) string {
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
