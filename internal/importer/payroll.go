package importer

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mholloway/tally/internal/database/repository"
)

// Payroll workbooks carry a "payrolls" sheet (check date, gross pay) and a
// "taxes" sheet (check date, payer type, amount). Both are aggregated per
// check date into outflow rows. Dates arrive as spreadsheet serial-day
// numbers and are converted through the 1899-12-30 epoch.

const (
	payrollSheetName = "payrolls"
	taxSheetName     = "taxes"

	colCheckDate = 3
	colTaxType   = 6
	colAmount    = 7
)

func detectPayroll(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return false
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return false
	}
	defer wb.Close()
	for _, name := range wb.GetSheetList() {
		if name == payrollSheetName {
			return true
		}
	}
	return false
}

func parsePayroll(path string) ([]Row, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	wages := map[string]int64{}
	if rows, err := wb.GetRows(payrollSheetName, excelize.Options{RawCellValue: true}); err == nil {
		for i, rec := range rows {
			if i == 0 || len(rec) <= colAmount {
				continue
			}
			date := cellDate(rec[colCheckDate])
			if date == "" {
				continue
			}
			gross, ok := cellCents(rec[colAmount])
			if !ok {
				continue
			}
			wages[date] += gross
		}
	}

	taxes := map[string]int64{}
	if rows, err := wb.GetRows(taxSheetName, excelize.Options{RawCellValue: true}); err == nil {
		for i, rec := range rows {
			if i == 0 || len(rec) <= colAmount {
				continue
			}
			// only the employer's share is a ledger outflow
			if strings.TrimSpace(rec[colTaxType]) != "Employer" {
				continue
			}
			date := cellDate(rec[colCheckDate])
			if date == "" {
				continue
			}
			amount, ok := cellCents(rec[colAmount])
			if !ok {
				continue
			}
			taxes[date] += amount
		}
	}

	var out []Row
	for _, date := range sortedKeys(wages) {
		out = append(out, Row{
			Date:        date,
			Description: fmt.Sprintf("Payroll — Wages (%s)", date),
			Amount:      -abs64(wages[date]),
		})
	}
	for _, date := range sortedKeys(taxes) {
		out = append(out, Row{
			Date:        date,
			Description: fmt.Sprintf("Payroll — Employer Taxes (%s)", date),
			Amount:      -abs64(taxes[date]),
		})
	}
	return out, nil
}

// cellDate accepts either a serial-day number or a preformatted date string.
func cellDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelSerialDate(serial)
	}
	return s
}

func cellCents(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// payroll category names resolved from the seeded taxonomy
var payrollCategoryNames = []struct {
	marker   string
	category string
}{
	{"Wages", "Payroll — Wages"},
	{"Taxes", "Payroll — Taxes"},
	{"Benefits", "Payroll — Benefits"},
}

// autoCategorizePayroll attributes freshly imported payroll rows directly:
// the description the parser produced is unambiguous, so the rule engine is
// bypassed for them.
func autoCategorizePayroll(ctx context.Context, db repository.DBTX, accountID string, rows []Row) error {
	catRepo := repository.NewCategoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)

	categoryIDs := map[string]string{}
	for _, pc := range payrollCategoryNames {
		cat, err := catRepo.GetByName(ctx, pc.category)
		if err != nil {
			return err
		}
		if cat != nil {
			categoryIDs[pc.marker] = cat.ID
		}
	}

	for _, row := range rows {
		var categoryID string
		for _, pc := range payrollCategoryNames {
			if id, ok := categoryIDs[pc.marker]; ok && strings.Contains(row.Description, pc.marker) {
				categoryID = id
				break
			}
		}
		if categoryID == "" {
			continue
		}
		if err := txRepo.CategorizeMatching(ctx, accountID, row.Date, row.Amount, row.Description, categoryID); err != nil {
			return err
		}
	}
	return nil
}
