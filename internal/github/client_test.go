// internal/github/client_test.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github-rank-tracker/internal/errors"
)

// setupTestClient creates a httptest server and a github client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	// We can pass an empty token because we are not authenticating to the real GitHub.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient("", 5*time.Second, logger)

	// Point the client's base URL at our test server.
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	gh := github.NewClient(server.Client())
	gh.BaseURL = base
	client.gh = gh

	return client, server
}

func TestClient_TopRepositories(t *testing.T) {
	t.Run("returns entries ranked in response order", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/repositories", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "stars:>1", q.Get("q"))
			assert.Equal(t, "stars", q.Get("sort"))
			assert.Equal(t, "desc", q.Get("order"))
			assert.Equal(t, "2", q.Get("per_page"))

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"total_count": 2,
				"items": [
					{"full_name": "big/one", "owner": {"login": "big"}, "stargazers_count": 900,
					 "watchers_count": 900, "forks_count": 70, "open_issues_count": 5, "language": "Go"},
					{"full_name": "small/two", "owner": {"login": "small"}, "stargazers_count": 800,
					 "watchers_count": 800, "forks_count": 60, "open_issues_count": 3, "language": null}
				]
			}`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		entries, err := client.TopRepositories(context.Background(), 2)

		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, "big/one", entries[0].FullName)
		assert.Equal(t, "big", entries[0].Owner)
		assert.Equal(t, 900, entries[0].Stars)
		assert.Equal(t, 70, entries[0].Forks)
		assert.Equal(t, 5, entries[0].OpenIssues)
		require.NotNil(t, entries[0].Language)
		assert.Equal(t, "Go", *entries[0].Language)
		assert.Equal(t, 1, entries[0].Position)

		assert.Equal(t, "small/two", entries[1].FullName)
		assert.Nil(t, entries[1].Language)
		assert.Equal(t, 2, entries[1].Position)
	})

	t.Run("non-success status becomes an upstream error", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.TopRepositories(context.Background(), 10)

		require.Error(t, err)
		var upstream *apperrors.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusBadGateway, upstream.Status)
	})
}

func TestClient_CommitActivity(t *testing.T) {
	t.Run("aggregates commits into per-day records with distinct authors", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test/repo/commits", r.URL.Path)

			since, err := time.Parse(time.RFC3339, r.URL.Query().Get("since"))
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), since, time.Minute)

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[
				{"sha": "a1", "commit": {"author": {"name": "alice", "date": "2024-08-12T09:00:00Z"}}},
				{"sha": "a2", "commit": {"author": {"name": "bob",   "date": "2024-08-12T15:30:00Z"}}},
				{"sha": "a3", "commit": {"author": {"name": "alice", "date": "2024-08-12T23:59:59Z"}}},
				{"sha": "b1", "commit": {"author": {"name": "carol", "date": "2024-08-13T01:00:00Z"}}}
			]`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		records, err := client.CommitActivity(context.Background(), "test/repo", 30)

		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "test/repo", records[0].Repo)
		assert.Equal(t, time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC), records[0].Date)
		assert.Equal(t, 3, records[0].Commits)
		assert.Equal(t, []string{"alice", "bob"}, records[0].Authors)

		assert.Equal(t, time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), records[1].Date)
		assert.Equal(t, 1, records[1].Commits)
		assert.Equal(t, []string{"carol"}, records[1].Authors)
	})

	t.Run("zero commits in the window is a valid empty result", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[]`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		records, err := client.CommitActivity(context.Background(), "test/repo", 30)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("malformed repository name is rejected without a network call", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.CommitActivity(context.Background(), "not-a-full-name", 30)

		require.Error(t, err)
		var invalid *apperrors.ErrInvalidRepoFormat
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("non-success status becomes an upstream error", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client, server := setupTestClient(t, handler)
		defer server.Close()

		_, err := client.CommitActivity(context.Background(), "test/repo", 30)

		require.Error(t, err)
		var upstream *apperrors.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusNotFound, upstream.Status)
	})
}
