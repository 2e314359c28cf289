package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, parent_id, name, category_type, tax_line, form_line, description, is_active, sort_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	ON CONFLICT(id) DO UPDATE SET
	 parent_id=excluded.parent_id,
	 name=excluded.name,
	 category_type=excluded.category_type,
	 tax_line=excluded.tax_line,
	 form_line=excluded.form_line,
	 description=excluded.description,
	 sort_order=excluded.sort_order;
	`, c.ID, c.ParentID, c.Name, c.CategoryType, c.TaxLine, c.FormLine, c.Description, c.SortOrder)
	return err
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, parent_id, name, category_type, tax_line, form_line, description, is_active, sort_order
	FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.CategoryType, &c.TaxLine, &c.FormLine, &c.Description, &c.IsActive, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByName returns nil when no category carries the given name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, parent_id, name, category_type, tax_line, form_line, description, is_active, sort_order
	FROM categories WHERE name = ?`, name)
	var c Category
	err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.CategoryType, &c.TaxLine, &c.FormLine, &c.Description, &c.IsActive, &c.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
