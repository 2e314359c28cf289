package repository

import (
	"context"
)

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, date, description, amount, category_id, vendor, notes,
	 is_flagged, flag_reason, import_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.AccountID, t.Date, t.Description, t.Amount, t.CategoryID, t.Vendor,
		t.Notes, t.IsFlagged, t.FlagReason, t.ImportID)
	return err
}

// Exists reports whether the account already holds a transaction with an
// identical (date, amount, description) triple. Row-level idempotency check.
func (r *TransactionRepo) Exists(ctx context.Context, accountID, date string, amount int64, description string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COUNT(1) FROM transactions
	WHERE account_id = ? AND date = ? AND amount = ? AND description = ?`,
		accountID, date, amount, description)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListUncategorized returns transactions awaiting classification, oldest first.
func (r *TransactionRepo) ListUncategorized(ctx context.Context) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, date, description, amount, category_id, vendor, notes,
	 is_flagged, flag_reason, import_id, created_at, updated_at
	FROM transactions WHERE category_id IS NULL ORDER BY date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Categorize sets category and vendor and clears the review flag.
func (r *TransactionRepo) Categorize(ctx context.Context, id, categoryID string, vendor *string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions
	SET category_id = ?, vendor = ?, is_flagged = 0, flag_reason = NULL, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, categoryID, vendor, id)
	return err
}

// CategorizeMatching categorizes every transaction on the account matching the
// exact (date, amount, description) triple. Used by post-import hooks that can
// attribute their own rows without the rule engine.
func (r *TransactionRepo) CategorizeMatching(ctx context.Context, accountID, date string, amount int64, description, categoryID string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions
	SET category_id = ?, is_flagged = 0, flag_reason = NULL, updated_at = CURRENT_TIMESTAMP
	WHERE account_id = ? AND date = ? AND amount = ? AND description = ?`,
		categoryID, accountID, date, amount, description)
	return err
}

// ListFlagged returns flagged transactions ordered by date.
func (r *TransactionRepo) ListFlagged(ctx context.Context) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, date, description, amount, category_id, vendor, notes,
	 is_flagged, flag_reason, import_id, created_at, updated_at
	FROM transactions WHERE is_flagged = 1 ORDER BY date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Get returns nil when the transaction does not exist.
func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, date, description, amount, category_id, vendor, notes,
	 is_flagged, flag_reason, import_id, created_at, updated_at
	FROM transactions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTransactions(rows rowScanner) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &t.Amount,
			&t.CategoryID, &t.Vendor, &t.Notes, &t.IsFlagged, &t.FlagReason,
			&t.ImportID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
