package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// CategoryRow is a category without its catalogs.
type CategoryRow struct {
	ID        string `db:"id"`
	CompanyID string `db:"company_id"`
	Name      string `db:"name"`
	Image     string `db:"image"`
	Eager     bool   `db:"eager"`
}

// Skeleton is the row as a category placeholder with no catalogs.
func (c CategoryRow) Skeleton() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Image: c.Image}
}

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context, companyID string) ([]CategoryRow, error) {
	var out []CategoryRow
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT id, company_id, name, COALESCE(image,'') AS image, eager
	  FROM categories
	  WHERE company_id = ?
	  ORDER BY position, id
	`), companyID)
	return out, err
}

// Get returns sql.ErrNoRows when the category is not the company's.
func (r *CategoryRepo) Get(ctx context.Context, companyID, id string) (CategoryRow, error) {
	var c CategoryRow
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
	  SELECT id, company_id, name, COALESCE(image,'') AS image, eager
	  FROM categories
	  WHERE company_id = ? AND id = ?
	`), companyID, id)
	return c, err
}
