package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(context.Background(), db))
	return db
}

func addAccount(t *testing.T, db *sql.DB, name, accountType string) repository.Account {
	t.Helper()
	acct := repository.Account{ID: uuid.NewString(), Name: name, AccountType: accountType}
	require.NoError(t, repository.NewAccountRepo(db).Insert(context.Background(), acct))
	return acct
}

func categoryID(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	cat, err := repository.NewCategoryRepo(db).GetByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, cat, "missing category %s", name)
	return cat.ID
}

func addRule(t *testing.T, db *sql.DB, pattern, matchType, categoryName string, priority int64) repository.Rule {
	t.Helper()
	rule := repository.Rule{
		ID:         uuid.NewString(),
		Pattern:    pattern,
		MatchType:  matchType,
		CategoryID: categoryID(t, db, categoryName),
		Priority:   priority,
		IsActive:   true,
	}
	require.NoError(t, repository.NewRuleRepo(db).Insert(context.Background(), rule))
	return rule
}

func addFlaggedTxn(t *testing.T, db *sql.DB, accountID, date, description string, amount int64) repository.Transaction {
	t.Helper()
	reason := "No matching rule"
	txn := repository.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Date:        date,
		Description: description,
		Amount:      amount,
		IsFlagged:   true,
		FlagReason:  &reason,
	}
	require.NoError(t, repository.NewTransactionRepo(db).Insert(context.Background(), txn))
	return txn
}

func writeCheckingCSV(t *testing.T, name string, rows [][3]string) string {
	t.Helper()
	content := "Date,Description,Amount,Running Bal.\n"
	for _, r := range rows {
		content += r[0] + "," + r[1] + "," + r[2] + ",0.00\n"
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// serial 45667 = 2025-01-10, serial 45681 = 2025-01-24
func writePayrollWorkbook(t *testing.T) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	_, err := wb.NewSheet("payrolls")
	require.NoError(t, err)
	payrollRows := [][]any{
		{"id", "period_start", "period_end", "check_date", "employee", "status", "net", "gross"},
		{"p1", nil, nil, 45667, "Ada", "paid", 700.0, 1000.0},
		{"p2", nil, nil, 45667, "Grace", "paid", 1400.0, 2000.0},
		{"p3", nil, nil, 45681, "Ada", "paid", 700.0, 1000.0},
	}
	for i, row := range payrollRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("payrolls", cell, &row))
	}

	_, err = wb.NewSheet("taxes")
	require.NoError(t, err)
	taxRows := [][]any{
		{"id", "period_start", "period_end", "check_date", "tax", "jurisdiction", "type", "amount"},
		{"t1", nil, nil, 45667, "FICA", "US", "Employer", 76.5},
		{"t2", nil, nil, 45667, "FICA", "US", "Employee", 76.5},
		{"t3", nil, nil, 45681, "FUTA", "US", "Employer", 42.0},
	}
	for i, row := range taxRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("taxes", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "payroll.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func hitCount(t *testing.T, db *sql.DB, ruleID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.QueryRow("SELECT hit_count FROM rules WHERE id = ?", ruleID).Scan(&n))
	return n
}
