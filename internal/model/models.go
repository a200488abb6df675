// internal/model/models.go
package model

import (
	"strings"
	"time"
)

// AuthorsDelimiter separates distinct author names in the persisted
// activity.authors column.
const AuthorsDelimiter = " | "

// SnapshotEntry represents one repository as seen in a single ranking fetch.
// Position is the 1-based rank by star count within that fetch.
type SnapshotEntry struct {
	FullName   string
	Owner      string
	Stars      int
	Watchers   int
	Forks      int
	OpenIssues int
	Language   *string
	Position   int
}

// RankState is the persisted ranking state of one repository, keyed by full name.
type RankState struct {
	PositionCur  int
	PositionPrev *int
}

// Repository represents a durable row of the repository table.
type Repository struct {
	FullName     string  `json:"repo"`
	Owner        string  `json:"owner"`
	PositionCur  int     `json:"position_cur"`
	PositionPrev *int    `json:"position_prev"`
	Stars        int     `json:"stars"`
	Watchers     int     `json:"watchers"`
	Forks        int     `json:"forks"`
	OpenIssues   int     `json:"open_issues"`
	Language     *string `json:"language"`
}

// ActivityRecord holds the aggregated commit activity of one repository on one
// calendar day. Date is truncated to UTC midnight.
type ActivityRecord struct {
	Repo    string
	Date    time.Time
	Commits int
	Authors []string
}

// DirectiveKind tells the store whether a reconciled row is new or existing.
type DirectiveKind int

const (
	DirectiveInsert DirectiveKind = iota
	DirectiveUpdate
)

// RankingDirective is one reconciled write: insert or update of a repository row.
type RankingDirective struct {
	Kind DirectiveKind
	Row  Repository
}

// JoinAuthors encodes a list of author names for storage.
func JoinAuthors(authors []string) string {
	return strings.Join(authors, AuthorsDelimiter)
}

// SplitAuthors decodes the stored authors column back into a list.
// An empty column yields an empty list, not [""].
func SplitAuthors(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, AuthorsDelimiter)
}
