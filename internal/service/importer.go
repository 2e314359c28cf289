package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/apperr"
	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/database/repository"
	"github.com/mholloway/tally/internal/importer"
)

// ImportService runs the statement import pipeline: account resolution,
// checksum guard, format resolution, parsing, row-level dedup, manifest
// recording and the format's post-import hook.
type ImportService struct {
	DB       *sql.DB
	Registry importer.Registry
}

// ImportResult reports one import attempt. DuplicateFile distinguishes a
// rejected re-import from a file whose rows all already existed.
type ImportResult struct {
	Imported      int
	Skipped       int
	DuplicateFile bool
}

// ImportFile imports one statement file into the named account. formatKey,
// when non-empty, bypasses detection and must name a registered format.
// Row inserts, the manifest and the post-import hook commit atomically.
func (s *ImportService) ImportFile(ctx context.Context, path, accountName, formatKey string) (ImportResult, error) {
	res := ImportResult{}

	account, err := repository.NewAccountRepo(s.DB).GetByName(ctx, accountName)
	if err != nil {
		return res, fmt.Errorf("resolve account: %w", err)
	}
	if account == nil {
		return res, fmt.Errorf("%w: %s", apperr.ErrUnknownAccount, accountName)
	}

	checksum, err := fileChecksum(path)
	if err != nil {
		return res, err
	}
	seen, err := repository.NewImportRepo(s.DB).ChecksumExists(ctx, account.ID, checksum)
	if err != nil {
		return res, fmt.Errorf("checksum guard: %w", err)
	}
	if seen {
		res.DuplicateFile = true
		return res, nil
	}

	var kind importer.Kind
	if formatKey != "" {
		k, ok := s.Registry.ByKey(formatKey)
		if !ok {
			return res, fmt.Errorf("%w: %s", apperr.ErrUnknownFormat, formatKey)
		}
		kind = k
	} else {
		k, ok := s.Registry.ForFile(account.AccountType, path)
		if !ok {
			return res, fmt.Errorf("%w: %s", apperr.ErrNoImporter, account.AccountType)
		}
		kind = k
	}

	rows, err := kind.Parse(path)
	if err != nil {
		return res, fmt.Errorf("parse %s: %w", kind.Key(), err)
	}

	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		importID := uuid.NewString()

		// the manifest goes in first: transaction rows reference it and
		// sqlite checks foreign keys at insert time, not at commit
		im := repository.Import{
			ID:          importID,
			Filename:    filepath.Base(path),
			AccountID:   account.ID,
			RecordCount: int64(len(rows)),
			Checksum:    checksum,
		}
		if start, end, ok := dateRange(rows); ok {
			im.DateRangeStart = &start
			im.DateRangeEnd = &end
		}
		if err := repository.NewImportRepo(tx).Insert(ctx, im); err != nil {
			return fmt.Errorf("record manifest: %w", err)
		}

		var imported, skipped int
		for _, row := range rows {
			exists, err := txRepo.Exists(ctx, account.ID, row.Date, row.Amount, row.Description)
			if err != nil {
				return fmt.Errorf("dedup check: %w", err)
			}
			if exists {
				skipped++
				continue
			}
			reason := "No matching rule"
			t := repository.Transaction{
				ID:          uuid.NewString(),
				AccountID:   account.ID,
				Date:        row.Date,
				Description: row.Description,
				Amount:      row.Amount,
				IsFlagged:   true,
				FlagReason:  &reason,
				ImportID:    &importID,
			}
			if err := txRepo.Insert(ctx, t); err != nil {
				return fmt.Errorf("insert row: %w", err)
			}
			imported++
		}

		if kind.HasPostImport() {
			if err := kind.PostImport(ctx, tx, account.ID, rows); err != nil {
				return fmt.Errorf("post-import hook: %w", err)
			}
		}
		res.Imported = imported
		res.Skipped = skipped
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// fileChecksum returns the hex-encoded SHA-256 digest of the file contents.
func fileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// dateRange returns the min and max ISO dates observed. ISO dates compare
// lexicographically in chronological order.
func dateRange(rows []importer.Row) (string, string, bool) {
	if len(rows) == 0 {
		return "", "", false
	}
	minDate, maxDate := rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date < minDate {
			minDate = r.Date
		}
		if r.Date > maxDate {
			maxDate = r.Date
		}
	}
	return minDate, maxDate, true
}
