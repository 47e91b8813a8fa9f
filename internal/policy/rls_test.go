package policy_test

import (
	"strings"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowPolicies(t *testing.T) {
	stmts := policy.RowPolicies()
	require.NotEmpty(t, stmts)

	var investor, public, files string
	for _, stmt := range stmts {
		switch {
		case strings.HasPrefix(stmt, "CREATE POLICY opportunities_investor_read"):
			investor = stmt
		case strings.HasPrefix(stmt, "CREATE POLICY opportunities_public_read"):
			public = stmt
		case strings.HasPrefix(stmt, "CREATE POLICY files_investor_read"):
			files = stmt
		}
	}

	t.Run("investor policy comes from the rule table", func(t *testing.T) {
		require.NotEmpty(t, investor)
		assert.Contains(t, investor, "visibility IN ('active', 'coming_soon', 'concluded')")
		assert.Contains(t, investor, "visibility IN ('private') AND EXISTS")
		assert.Contains(t, investor, "current_setting('app.user_id', true)")
		assert.NotContains(t, investor, "'draft'")
	})

	t.Run("public policy only exposes featured states", func(t *testing.T) {
		require.NotEmpty(t, public)
		assert.Contains(t, public, "visibility IN ('active', 'coming_soon')")
		assert.NotContains(t, public, "concluded")
	})

	t.Run("file policy covers every file visibility", func(t *testing.T) {
		require.NotEmpty(t, files)
		assert.Contains(t, files, "visibility = 'all'")
		assert.Contains(t, files, "visibility = 'opportunity_viewers'")
		assert.Contains(t, files, "file_user_access")
	})

	t.Run("policies are replaced rather than duplicated", func(t *testing.T) {
		joined := strings.Join(stmts, ";\n")
		assert.Equal(t, 3, strings.Count(joined, "DROP POLICY IF EXISTS"))
	})
}
