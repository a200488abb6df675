// internal/errors/errors.go
package errors

import "fmt"

// ErrInvalidRepoFormat is returned when a repository name is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// UpstreamError is returned when the GitHub API answers with a non-success
// status or a payload we cannot use. It is never retried by the pipeline.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StorageConnectionError means the database pool could not be established.
// Fatal; raised before any pipeline work starts.
type StorageConnectionError struct {
	Err error
}

func (e *StorageConnectionError) Error() string {
	return fmt.Sprintf("storage connection failed: %v", e.Err)
}

func (e *StorageConnectionError) Unwrap() error { return e.Err }

// SchemaError means the required tables are absent and could not be created.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema setup failed: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// TransactionError means a multi-statement write failed and was rolled back.
// The previously persisted state is intact.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
