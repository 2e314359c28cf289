package importer

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// cardColumns maps header labels to their positions. Credit-card exports do
// not guarantee column order, so positions are read off the header row and
// parsing fails closed (row skipped) when a label is missing.
type cardColumns struct {
	date, desc, amount, typ int
}

func defaultCardColumns() cardColumns {
	return cardColumns{date: 3, desc: 5, amount: 6, typ: 9}
}

func (c *cardColumns) fromHeader(rec []string) {
	for i, field := range rec {
		switch strings.TrimSpace(field) {
		case "Posting Date":
			c.date = i
		case "Payee":
			c.desc = i
		case "Amount":
			c.amount = i
		case "Type":
			c.typ = i
		}
	}
}

func isCardHeader(rec []string) bool {
	for _, field := range rec {
		if strings.Contains(field, "Posting Date") {
			return true
		}
	}
	return false
}

// The cardholder-identification token appears somewhere in every credit-card
// export, not necessarily in the header row.
func detectCreditCard(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "CardHolder Name")
}

func parseCreditCard(path string) ([]Row, error) {
	return parseCardSchema(path, false)
}

// Line-of-credit exports share the credit-card schema but carry no type
// column worth trusting; draws are recorded by inverting the raw amount.
func parseLineOfCredit(path string) ([]Row, error) {
	return parseCardSchema(path, true)
}

func parseCardSchema(path string, invertAmount bool) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	csvr := newCSVReader(f)
	var rows []Row
	state := stateSeekingHeader
	cols := defaultCardColumns()

	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if state == stateSeekingHeader {
			if isCardHeader(rec) {
				cols.fromHeader(rec)
				state = stateConsumingRows
			}
			continue
		}
		need := []int{cols.date, cols.desc, cols.amount}
		if !invertAmount {
			need = append(need, cols.typ)
		}
		minCols := 0
		for _, i := range need {
			if i >= minCols {
				minCols = i + 1
			}
		}
		// the reference column is blank on non-transaction rows
		if len(rec) < minCols || strings.TrimSpace(rec[2]) == "" {
			continue
		}
		date, ok := ParseDateMDY(rec[cols.date])
		if !ok {
			continue
		}
		description := strings.TrimSpace(rec[cols.desc])
		if description == "" {
			continue
		}
		amount := ParseAmount(rec[cols.amount])
		if invertAmount {
			amount = -amount
		} else {
			// direction comes from the side-band type code, not the sign
			if strings.TrimSpace(rec[cols.typ]) == "D" {
				amount = -abs64(amount)
			} else {
				amount = abs64(amount)
			}
		}
		rows = append(rows, Row{
			Date:        date,
			Description: description,
			Amount:      amount,
		})
	}
	return rows, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
