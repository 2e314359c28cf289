// Package importer turns bank and payroll statement exports into canonical
// transaction rows. Each supported format is a Kind in a closed set; the
// Registry resolves which Kind handles a given file.
package importer

// Row is the canonical shape every format parser converges to. Date is an
// ISO calendar date (YYYY-MM-DD). Amount is signed cents with ledger
// convention: positive inflow, negative outflow, regardless of how the
// source file encodes direction.
type Row struct {
	Date        string
	Description string
	Amount      int64
}
