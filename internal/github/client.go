// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	apperrors "github-rank-tracker/internal/errors"
	"github-rank-tracker/internal/model"
)

// searchQuery matches every repository with at least one star; combined with
// sort=stars it yields the global top list.
const searchQuery = "stars:>1"

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client with the
// given timeout applied to every upstream call.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// OverrideBaseURL points the client at a different API root. Used by tests
// that stand in for the GitHub API.
func (c *Client) OverrideBaseURL(baseURL string) error {
	base, err := url.Parse(baseURL + "/")
	if err != nil {
		return err
	}
	c.gh.BaseURL = base
	return nil
}

// TopRepositories fetches the top n repositories by star count in a single
// search call and translates them into ranked snapshot entries. Ranks are
// 1-based in the order the search API returns them.
func (c *Client) TopRepositories(ctx context.Context, n int) ([]model.SnapshotEntry, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: n,
		},
	}

	c.logger.Debug("Fetching repository ranking", "per_page", n)
	result, resp, err := c.gh.Search.Repositories(ctx, searchQuery, opts)
	if err != nil {
		return nil, upstreamError("search repositories", resp, err)
	}

	entries := make([]model.SnapshotEntry, 0, len(result.Repositories))
	for i, repo := range result.Repositories {
		entries = append(entries, toSnapshotEntry(repo, i+1))
	}
	return entries, nil
}

// CommitActivity fetches all commits of a repository within the trailing
// window and aggregates them into per-day records with distinct author names.
// A repository with no commits in the window yields an empty slice.
func (c *Client) CommitActivity(ctx context.Context, fullName string, windowDays int) ([]model.ActivityRecord, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	opts := &github.CommitsListOptions{
		Since: since,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	c.logger.Debug("Fetching commits", "repo", fullName, "since", since.Format(time.RFC3339))
	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return nil, upstreamError("list commits", resp, err)
	}

	return aggregateActivity(fullName, commits), nil
}

// dayActivity accumulates one calendar day of commits during aggregation.
type dayActivity struct {
	commits int
	authors map[string]struct{}
}

// aggregateActivity buckets commits by the author date truncated to a UTC day.
// Output is sorted by date, author names sorted within each day.
func aggregateActivity(fullName string, commits []*github.RepositoryCommit) []model.ActivityRecord {
	days := make(map[time.Time]*dayActivity)
	for _, commit := range commits {
		authored := commit.GetCommit().GetAuthor().GetDate().Time.UTC()
		day := authored.Truncate(24 * time.Hour)

		agg, ok := days[day]
		if !ok {
			agg = &dayActivity{authors: make(map[string]struct{})}
			days[day] = agg
		}
		agg.commits++
		agg.authors[commit.GetCommit().GetAuthor().GetName()] = struct{}{}
	}

	records := make([]model.ActivityRecord, 0, len(days))
	for day, agg := range days {
		authors := make([]string, 0, len(agg.authors))
		for author := range agg.authors {
			authors = append(authors, author)
		}
		sort.Strings(authors)

		records = append(records, model.ActivityRecord{
			Repo:    fullName,
			Date:    day,
			Commits: agg.commits,
			Authors: authors,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records
}

// toSnapshotEntry translates a github.Repository object to a ranked snapshot entry.
func toSnapshotEntry(r *github.Repository, position int) model.SnapshotEntry {
	return model.SnapshotEntry{
		FullName:   r.GetFullName(),
		Owner:      r.GetOwner().GetLogin(),
		Stars:      r.GetStargazersCount(),
		Watchers:   r.GetWatchersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
		Language:   r.Language,
		Position:   position,
	}
}

func splitFullName(fullName string) (owner, name string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &apperrors.ErrInvalidRepoFormat{Repo: fullName}
	}
	return parts[0], parts[1], nil
}

// upstreamError wraps a failed GitHub call, keeping the HTTP status when the
// response got far enough to carry one.
func upstreamError(op string, resp *github.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	} else {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
	}
	return &apperrors.UpstreamError{Op: op, Status: status, Err: err}
}
