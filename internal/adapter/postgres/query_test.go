package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensemanager/internal/domain"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"travel", "travel"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\tmp`, `c:\\tmp`},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, escapeLike(tc.in), tc.in)
	}
}

func TestJoinedExpenses_OrdersNewestFirst(t *testing.T) {
	query, args, err := joinedExpenses().ToSql()
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Contains(t, query, "FROM expenses e JOIN users u ON u.id = e.user_id JOIN approvals a ON a.expense_id = e.id")
	assert.Contains(t, query, "ORDER BY e.date DESC, e.id DESC")
}

func TestByCategory_UsesEscapedSubstring(t *testing.T) {
	query, args, err := byCategory("Travel_50%").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, `e.description ILIKE $1 ESCAPE '\'`)
	assert.Equal(t, []any{`%Travel\_50\%%`}, args)
}

func TestDecisionQuery_OnlyTouchesPendingRows(t *testing.T) {
	comment := "ok"
	query, args, err := decisionQuery(10, domain.StatusApproved, 3, &comment, "2024-01-16 09:30:00").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "UPDATE approvals SET status = $1, reviewer = $2, comment = $3, review_date = $4")
	assert.Contains(t, query, "WHERE expense_id = $5 AND status = $6 AND EXISTS (SELECT 1 FROM users WHERE id = $7)")
	require.Len(t, args, 7)
	assert.Equal(t, domain.StatusApproved, args[0])
	assert.Equal(t, int64(3), args[1])
	assert.Equal(t, int64(10), args[4])
	assert.Equal(t, domain.StatusPending, args[5])
	assert.Equal(t, int64(3), args[6])
}
