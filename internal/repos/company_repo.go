package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CompanyRepo struct{ db *sqlx.DB }

func NewCompanyRepo(db *sqlx.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// ByDomain returns sql.ErrNoRows when no company owns the tenant domain.
func (r *CompanyRepo) ByDomain(ctx context.Context, tenant string) (domain.CompanyDetails, error) {
	var c domain.CompanyDetails
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
	  SELECT id, domain, name, currency, locale, COALESCE(logo_url,'') AS logo_url
	  FROM companies
	  WHERE domain = ?
	`), tenant)
	return c, err
}

func (r *CompanyRepo) List(ctx context.Context) ([]domain.CompanyDetails, error) {
	var out []domain.CompanyDetails
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, domain, name, currency, locale, COALESCE(logo_url,'') AS logo_url
	  FROM companies
	  ORDER BY domain
	`)
	return out, err
}
