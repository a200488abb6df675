// internal/store/store_test.go
package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityQuery(t *testing.T) {
	since := time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("no bounds", func(t *testing.T) {
		query, args := activityQuery("a/b", nil, nil)

		assert.Equal(t, `SELECT date, commits, authors FROM activity WHERE repo = $1 ORDER BY date`, query)
		assert.Equal(t, []any{"a/b"}, args)
	})

	t.Run("both bounds use BETWEEN", func(t *testing.T) {
		query, args := activityQuery("a/b", &since, &until)

		assert.Contains(t, query, `date BETWEEN $2 AND $3`)
		require.Len(t, args, 3)
		assert.Equal(t, since, args[1])
		assert.Equal(t, until, args[2])
	})

	t.Run("since only is a lower bound", func(t *testing.T) {
		query, args := activityQuery("a/b", &since, nil)

		assert.Contains(t, query, `date >= $2`)
		assert.NotContains(t, query, `$3`)
		assert.Equal(t, []any{"a/b", since}, args)
	})

	t.Run("until only is an upper bound", func(t *testing.T) {
		query, args := activityQuery("a/b", nil, &until)

		assert.Contains(t, query, `date <= $2`)
		assert.Equal(t, []any{"a/b", until}, args)
	})
}
