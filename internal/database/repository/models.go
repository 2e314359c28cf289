package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Account represents an account row.
type Account struct {
	ID          string
	Name        string
	AccountType string
	Institution *string
	LastFour    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category represents a category row.
type Category struct {
	ID           string
	ParentID     *string
	Name         string
	CategoryType string
	TaxLine      *string
	FormLine     *string
	Description  *string
	IsActive     bool
	SortOrder    int
}

// Transaction represents a transaction row. Date is an ISO calendar date
// (YYYY-MM-DD); Amount is signed cents, positive inflow, negative outflow.
type Transaction struct {
	ID          string
	AccountID   string
	Date        string
	Description string
	Amount      int64
	CategoryID  *string
	Vendor      *string
	Notes       *string
	IsFlagged   bool
	FlagReason  *string
	ImportID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Rule represents a categorization rule.
type Rule struct {
	ID         string
	Pattern    string
	MatchType  string
	Vendor     *string
	CategoryID string
	Priority   int64
	HitCount   int64
	IsActive   bool
	CreatedAt  time.Time
}

// Import represents the manifest of one accepted statement import.
type Import struct {
	ID             string
	Filename       string
	AccountID      string
	RecordCount    int64
	DateRangeStart *string
	DateRangeEnd   *string
	Checksum       string
	CreatedAt      time.Time
}
