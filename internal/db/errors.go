package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants name the failed command for error context.
const (
	OpPing = "PING"
	OpGet  = "GET"
	OpSet  = "SET"

	OpQuery         = "SELECT"
	OpInsert        = "INSERT"
	OpMigrate       = "MIGRATE"
	OpVectorSearch  = "ANN_SEARCH"
	OpVectorInsert  = "VECTOR_INSERT"
	OpVectorUpsert  = "VECTOR_UPSERT"
	OpEnsureCollect = "ENSURE_COLLECTION"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
