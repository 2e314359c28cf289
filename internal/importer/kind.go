package importer

import (
	"context"

	"github.com/mholloway/tally/internal/database/repository"
)

// Kind identifies one supported statement format. The set is closed: adding
// a format means adding a variant here and extending each capability method,
// which the compiler checks, rather than registering a plugin at runtime.
type Kind int

const (
	KindChecking Kind = iota
	KindCreditCard
	KindLineOfCredit
	KindPayroll
)

// Key is the stable identifier accepted as an explicit format override.
func (k Kind) Key() string {
	switch k {
	case KindChecking:
		return "checking"
	case KindCreditCard:
		return "credit_card"
	case KindLineOfCredit:
		return "line_of_credit"
	case KindPayroll:
		return "payroll"
	}
	return "unknown"
}

func (k Kind) Name() string {
	switch k {
	case KindChecking:
		return "Checking CSV"
	case KindCreditCard:
		return "Credit Card CSV"
	case KindLineOfCredit:
		return "Line of Credit CSV"
	case KindPayroll:
		return "Payroll Workbook"
	}
	return "Unknown"
}

// AccountTypes lists the account types this format is valid for.
func (k Kind) AccountTypes() []string {
	switch k {
	case KindChecking:
		return []string{"checking"}
	case KindCreditCard:
		return []string{"credit_card"}
	case KindLineOfCredit:
		return []string{"line_of_credit"}
	case KindPayroll:
		return []string{"payroll"}
	}
	return nil
}

// Detect sniffs file content for this format's signature. Line-of-credit
// exports share the credit-card schema and have no signature of their own;
// they are selected by account type alone.
func (k Kind) Detect(path string) bool {
	switch k {
	case KindChecking:
		return detectChecking(path)
	case KindCreditCard:
		return detectCreditCard(path)
	case KindLineOfCredit:
		return false
	case KindPayroll:
		return detectPayroll(path)
	}
	return false
}

func (k Kind) Parse(path string) ([]Row, error) {
	switch k {
	case KindChecking:
		return parseChecking(path)
	case KindCreditCard:
		return parseCreditCard(path)
	case KindLineOfCredit:
		return parseLineOfCredit(path)
	case KindPayroll:
		return parsePayroll(path)
	}
	return nil, nil
}

func (k Kind) HasPostImport() bool {
	return k == KindPayroll
}

// PostImport runs the format's side effect after rows are persisted. It
// executes on the same DBTX as the import so it commits or rolls back with it.
func (k Kind) PostImport(ctx context.Context, db repository.DBTX, accountID string, rows []Row) error {
	if k == KindPayroll {
		return autoCategorizePayroll(ctx, db, accountID, rows)
	}
	return nil
}

// Registry is the fixed set of formats available to the import coordinator.
// The payroll workbook format is an optional capability: it joins the table
// only when enabled, so the pipeline stays agnostic to which formats exist.
type Registry struct {
	kinds []Kind
}

func NewRegistry(payrollEnabled bool) Registry {
	kinds := []Kind{KindChecking, KindCreditCard, KindLineOfCredit}
	if payrollEnabled {
		kinds = append(kinds, KindPayroll)
	}
	return Registry{kinds: kinds}
}

func (r Registry) Kinds() []Kind {
	return r.kinds
}

// ByKey resolves an explicit format override.
func (r Registry) ByKey(key string) (Kind, bool) {
	for _, k := range r.kinds {
		if k.Key() == key {
			return k, true
		}
	}
	return 0, false
}

// ForFile picks the format for an account type: candidates are filtered by
// type, detectors run in declaration order, and the first candidate is the
// fallback when nothing matches. Best effort rather than an error, since
// some formats are distinguishable only by account type.
func (r Registry) ForFile(accountType, path string) (Kind, bool) {
	var candidates []Kind
	for _, k := range r.kinds {
		for _, at := range k.AccountTypes() {
			if at == accountType {
				candidates = append(candidates, k)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	for _, k := range candidates {
		if k.Detect(path) {
			return k, true
		}
	}
	return candidates[0], true
}
