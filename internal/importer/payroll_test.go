package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// serial 45667 = 2025-01-10, serial 45681 = 2025-01-24
func writePayrollWorkbook(t *testing.T) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	_, err := wb.NewSheet(payrollSheetName)
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
		require.NoError(t, wb.SetSheetRow(payrollSheetName, cell, &row))
	}

	_, err = wb.NewSheet(taxSheetName)
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
		require.NoError(t, wb.SetSheetRow(taxSheetName, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "payroll.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func TestParsePayrollAggregatesByCheckDate(t *testing.T) {
	t.Parallel()

	path := writePayrollWorkbook(t)
	rows, err := KindPayroll.Parse(path)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byDesc := map[string]Row{}
	for _, r := range rows {
		byDesc[r.Description] = r
	}

	wages1 := byDesc["Payroll — Wages (2025-01-10)"]
	require.Equal(t, int64(-300000), wages1.Amount)
	require.Equal(t, "2025-01-10", wages1.Date)

	wages2 := byDesc["Payroll — Wages (2025-01-24)"]
	require.Equal(t, int64(-100000), wages2.Amount)

	// only the Employer share counts
	taxes1 := byDesc["Payroll — Employer Taxes (2025-01-10)"]
	require.Equal(t, int64(-7650), taxes1.Amount)

	taxes2 := byDesc["Payroll — Employer Taxes (2025-01-24)"]
	require.Equal(t, int64(-4200), taxes2.Amount)
}

func TestDetectPayroll(t *testing.T) {
	t.Parallel()

	path := writePayrollWorkbook(t)
	require.True(t, KindPayroll.Detect(path))

	csvPath := writeFile(t, "not-a-workbook.csv", "Date,Description,Amount\n")
	require.False(t, KindPayroll.Detect(csvPath))

	wb := excelize.NewFile()
	other := filepath.Join(t.TempDir(), "other.xlsx")
	require.NoError(t, wb.SaveAs(other))
	require.NoError(t, wb.Close())
	require.False(t, KindPayroll.Detect(other))
}
