package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mholloway/tally/internal/apperr"
	"github.com/mholloway/tally/internal/database/repository"
	"github.com/mholloway/tally/internal/importer"
)

func TestImportFileInsertsTransactions(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := newTestDB(t)
	addAccount(t, db, "Everyday Checking", "checking")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(false)}

	path := writeCheckingCSV(t, "stmt.csv", [][3]string{
		{"01/15/2025", "PAYMENT ONE", "-100.00"},
		{"01/16/2025", "PAYMENT TWO", "-250.00"},
		{"01/17/2025", "DEPOSIT", "500.00"},
	})
	res, err := svc.ImportFile(ctx, path, "Everyday Checking", "")
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	require.Equal(t, 0, res.Skipped)
	require.False(t, res.DuplicateFile)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count))
	require.Equal(t, 3, count)

	// everything lands flagged and uncategorized
	var flagged int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE is_flagged = 1 AND category_id IS NULL").Scan(&flagged))
	require.Equal(t, 3, flagged)

	// every row references the manifest recorded in the same transaction
	var linked int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions t JOIN imports i ON t.import_id = i.id").Scan(&linked))
	require.Equal(t, 3, linked)
}

func TestImportFileDetectsDuplicateFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	addAccount(t, db, "Everyday Checking", "checking")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(false)}

	path := writeCheckingCSV(t, "stmt.csv", [][3]string{
		{"01/15/2025", "PAYMENT ONE", "-100.00"},
	})
	first, err := svc.ImportFile(ctx, path, "Everyday Checking", "checking")
	require.NoError(t, err)
	require.Equal(t, 1, first.Imported)

	second, err := svc.ImportFile(ctx, path, "Everyday Checking", "checking")
	require.NoError(t, err)
	require.True(t, second.DuplicateFile)
	require.Equal(t, 0, second.Imported)
	require.Equal(t, 0, second.Skipped)

	// only one manifest recorded
	var manifests int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM imports").Scan(&manifests))
	require.Equal(t, 1, manifests)
}

func TestImportFileDeduplicatesRowsAcrossFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	addAccount(t, db, "Everyday Checking", "checking")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(false)}

	first := writeCheckingCSV(t, "jan.csv", [][3]string{
		{"01/15/2025", "PAYMENT ONE", "-100.00"},
		{"01/16/2025", "PAYMENT TWO", "-200.00"},
	})
	_, err := svc.ImportFile(ctx, first, "Everyday Checking", "")
	require.NoError(t, err)

	// overlapping date range: one row already exists
	second := writeCheckingCSV(t, "feb.csv", [][3]string{
		{"01/16/2025", "PAYMENT TWO", "-200.00"},
		{"01/18/2025", "PAYMENT THREE", "-300.00"},
	})
	res, err := svc.ImportFile(ctx, second, "Everyday Checking", "")
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Equal(t, 1, res.Skipped)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE description = 'PAYMENT TWO'").Scan(&count))
	require.Equal(t, 1, count)
}

func TestImportFileRecordsManifest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	acct := addAccount(t, db, "Everyday Checking", "checking")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(false)}

	path := writeCheckingCSV(t, "stmt.csv", [][3]string{
		{"01/17/2025", "DEPOSIT", "500.00"},
		{"01/15/2025", "PAYMENT ONE", "-100.00"},
	})
	_, err := svc.ImportFile(ctx, path, "Everyday Checking", "")
	require.NoError(t, err)

	manifests, err := repository.NewImportRepo(db).List(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	m := manifests[0]
	require.Equal(t, "stmt.csv", m.Filename)
	require.Equal(t, int64(2), m.RecordCount)
	require.NotEmpty(t, m.Checksum)
	require.NotNil(t, m.DateRangeStart)
	require.Equal(t, "2025-01-15", *m.DateRangeStart)
	require.NotNil(t, m.DateRangeEnd)
	require.Equal(t, "2025-01-17", *m.DateRangeEnd)
}

func TestImportPayrollAutoCategorizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	addAccount(t, db, "Payroll", "payroll")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(true)}

	path := writePayrollWorkbook(t)
	res, err := svc.ImportFile(ctx, path, "Payroll", "")
	require.NoError(t, err)
	require.Equal(t, 4, res.Imported)
	require.Equal(t, 0, res.Skipped)

	// the post-import hook attributes every row directly, bypassing rules
	wagesID := categoryID(t, db, "Payroll — Wages")
	taxesID := categoryID(t, db, "Payroll — Taxes")

	var wages, taxes, flagged int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE category_id = ? AND is_flagged = 0", wagesID).Scan(&wages))
	require.Equal(t, 2, wages)
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE category_id = ? AND is_flagged = 0", taxesID).Scan(&taxes))
	require.Equal(t, 2, taxes)
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE is_flagged = 1").Scan(&flagged))
	require.Equal(t, 0, flagged)

	// aggregated outflow amounts survive the round trip
	var wageCents int64
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT amount FROM transactions WHERE date = '2025-01-10' AND category_id = ?", wagesID).Scan(&wageCents))
	require.Equal(t, int64(-300000), wageCents)
}

func TestImportFileErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	addAccount(t, db, "Everyday Checking", "checking")
	svc := &ImportService{DB: db, Registry: importer.NewRegistry(false)}

	path := writeCheckingCSV(t, "stmt.csv", [][3]string{
		{"01/15/2025", "PAYMENT ONE", "-100.00"},
	})

	_, err := svc.ImportFile(ctx, path, "No Such Account", "")
	require.ErrorIs(t, err, apperr.ErrUnknownAccount)

	_, err = svc.ImportFile(ctx, path, "Everyday Checking", "bogus_format")
	require.ErrorIs(t, err, apperr.ErrUnknownFormat)

	addAccount(t, db, "Brokerage", "brokerage")
	_, err = svc.ImportFile(ctx, path, "Brokerage", "")
	require.ErrorIs(t, err, apperr.ErrNoImporter)
}
