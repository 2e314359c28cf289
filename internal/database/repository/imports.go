package repository

import (
	"context"
)

// ImportRepo stores import manifests.
type ImportRepo struct {
	db DBTX
}

func NewImportRepo(db DBTX) *ImportRepo {
	return &ImportRepo{db: db}
}

func (r *ImportRepo) Insert(ctx context.Context, im Import) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO imports(id, filename, account_id, record_count, date_range_start, date_range_end, checksum, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, im.ID, im.Filename, im.AccountID, im.RecordCount, im.DateRangeStart, im.DateRangeEnd, im.Checksum)
	return err
}

// ChecksumExists reports whether the account has already accepted a file with
// this content digest. File-level idempotency check.
func (r *ImportRepo) ChecksumExists(ctx context.Context, accountID, checksum string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COUNT(1) FROM imports WHERE account_id = ? AND checksum = ?`, accountID, checksum)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ImportRepo) List(ctx context.Context, accountID string) ([]Import, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, filename, account_id, record_count, date_range_start, date_range_end, checksum, created_at
	FROM imports WHERE account_id = ? ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Import
	for rows.Next() {
		var im Import
		if err := rows.Scan(&im.ID, &im.Filename, &im.AccountID, &im.RecordCount,
			&im.DateRangeStart, &im.DateRangeEnd, &im.Checksum, &im.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}
