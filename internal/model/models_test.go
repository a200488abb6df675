// internal/model/models_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorsRoundTrip(t *testing.T) {
	t.Run("author list survives storage encoding", func(t *testing.T) {
		authors := []string{"alice", "bob"}

		joined := JoinAuthors(authors)
		assert.Equal(t, "alice | bob", joined)

		assert.Equal(t, authors, SplitAuthors(joined))
	})

	t.Run("single author has no delimiter", func(t *testing.T) {
		joined := JoinAuthors([]string{"alice"})
		assert.Equal(t, "alice", joined)
		assert.Equal(t, []string{"alice"}, SplitAuthors(joined))
	})

	t.Run("empty column decodes to an empty list", func(t *testing.T) {
		assert.Empty(t, SplitAuthors(""))
	})
}
