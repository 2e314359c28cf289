package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/apperr"
	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/database/repository"
)

// ReviewerService backs the manual review of flagged transactions.
type ReviewerService struct {
	DB *sql.DB
}

// FlaggedTransaction is a flagged row joined with its account name.
type FlaggedTransaction struct {
	ID          string
	Date        string
	Description string
	Amount      int64
	AccountName string
}

// ReviewInput describes one review decision. When CreateRule is set, a
// contains rule with RulePattern is created alongside the categorization.
type ReviewInput struct {
	TransactionID string
	CategoryID    string
	Vendor        string
	CreateRule    bool
	RulePattern   string
}

func (s *ReviewerService) ListFlagged(ctx context.Context) ([]FlaggedTransaction, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT t.id, t.date, t.description, t.amount, a.name
	FROM transactions t JOIN accounts a ON t.account_id = a.id
	WHERE t.is_flagged = 1 ORDER BY t.date, t.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FlaggedTransaction
	for rows.Next() {
		var ft FlaggedTransaction
		if err := rows.Scan(&ft.ID, &ft.Date, &ft.Description, &ft.Amount, &ft.AccountName); err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

// Apply commits one review decision. Categorization and optional rule
// creation happen in a single transaction: both or neither.
func (s *ReviewerService) Apply(ctx context.Context, in ReviewInput) error {
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		t, err := txRepo.Get(ctx, in.TransactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: transaction %s", apperr.ErrNotFound, in.TransactionID)
		}
		var vendor *string
		if v := strings.TrimSpace(in.Vendor); v != "" {
			vendor = &v
		}
		if err := txRepo.Categorize(ctx, in.TransactionID, in.CategoryID, vendor); err != nil {
			return err
		}
		if in.CreateRule && strings.TrimSpace(in.RulePattern) != "" {
			rule := repository.Rule{
				ID:         uuid.NewString(),
				Pattern:    strings.TrimSpace(in.RulePattern),
				MatchType:  "contains",
				Vendor:     vendor,
				CategoryID: in.CategoryID,
				IsActive:   true,
			}
			if err := repository.NewRuleRepo(tx).Insert(ctx, rule); err != nil {
				return err
			}
		}
		return nil
	})
}

// similarityThreshold is the minimum levenshtein ratio for two descriptions
// to count as near-duplicates of each other.
const similarityThreshold = 0.6

// Similar returns other flagged transactions whose descriptions closely
// resemble the given one, so a single review decision can be fanned out.
func (s *ReviewerService) Similar(ctx context.Context, transactionID string) ([]FlaggedTransaction, error) {
	flagged, err := s.ListFlagged(ctx)
	if err != nil {
		return nil, err
	}
	var target *FlaggedTransaction
	for i := range flagged {
		if flagged[i].ID == transactionID {
			target = &flagged[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: transaction %s", apperr.ErrNotFound, transactionID)
	}
	var out []FlaggedTransaction
	for _, ft := range flagged {
		if ft.ID == transactionID {
			continue
		}
		if descSimilarity(target.Description, ft.Description) >= similarityThreshold {
			out = append(out, ft)
		}
	}
	return out, nil
}

func descSimilarity(a, b string) float64 {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
