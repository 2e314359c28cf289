package importer

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// A checking export's header row starts with a literal "Date" column
// followed by a "Description"-prefixed label. Everything above it is
// account preamble.
func isCheckingHeader(rec []string) bool {
	return len(rec) >= 4 &&
		strings.TrimSpace(rec[0]) == "Date" &&
		strings.Contains(rec[1], "Description")
}

func detectChecking(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	csvr := newCSVReader(f)
	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			continue
		}
		if isCheckingHeader(rec) {
			return true
		}
	}
}

func parseChecking(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	csvr := newCSVReader(f)
	var rows []Row
	state := stateSeekingHeader

	for {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if state == stateSeekingHeader {
			if isCheckingHeader(rec) {
				state = stateConsumingRows
			}
			continue
		}
		if len(rec) < 3 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		date, ok := ParseDateMDY(rec[0])
		if !ok {
			continue
		}
		description := strings.TrimSpace(rec[1])
		if description == "" || strings.Contains(description, "Beginning balance") {
			continue
		}
		rows = append(rows, Row{
			Date:        date,
			Description: description,
			Amount:      ParseAmount(rec[2]),
		})
	}
	return rows, nil
}
