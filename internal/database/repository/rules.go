package repository

import (
	"context"
)

// RuleRepo stores categorization rules.
type RuleRepo struct {
	db DBTX
}

func NewRuleRepo(db DBTX) *RuleRepo {
	return &RuleRepo{db: db}
}

func (r *RuleRepo) Insert(ctx context.Context, rl Rule) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO rules(id, pattern, match_type, vendor, category_id, priority, hit_count, is_active, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, rl.ID, rl.Pattern, rl.MatchType, rl.Vendor, rl.CategoryID, rl.Priority, rl.HitCount, rl.IsActive)
	return err
}

// ListActive returns active rules in evaluation order: priority descending,
// then creation time and id so equal priorities break deterministically.
func (r *RuleRepo) ListActive(ctx context.Context) ([]Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, pattern, match_type, vendor, category_id, priority, hit_count, is_active, created_at
	FROM rules WHERE is_active = 1
	ORDER BY priority DESC, created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Rule
	for rows.Next() {
		var rl Rule
		if err := rows.Scan(&rl.ID, &rl.Pattern, &rl.MatchType, &rl.Vendor, &rl.CategoryID,
			&rl.Priority, &rl.HitCount, &rl.IsActive, &rl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	return out, rows.Err()
}

func (r *RuleRepo) IncrementHitCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rules SET hit_count = hit_count + 1 WHERE id = ?`, id)
	return err
}

func (r *RuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rules SET is_active = ? WHERE id = ?`, active, id)
	return err
}
