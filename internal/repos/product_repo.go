package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CatalogRow struct {
	ID         string `db:"id"`
	CategoryID string `db:"category_id"`
	Name       string `db:"name"`
}

type productRow struct {
	ID           string  `db:"id"`
	CatalogID    string  `db:"catalog_id"`
	CategoryID   string  `db:"category_id"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	Price        float64 `db:"price"`
	ImagesJSON   string  `db:"images_json"`
	VariantsJSON string  `db:"variants_json"`
	PricingJSON  string  `db:"pricing_json"`
	Rating       float64 `db:"rating"`
}

func (r productRow) product() (domain.Product, error) {
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Rating:      r.Rating,
		CategoryID:  r.CategoryID,
		CatalogID:   r.CatalogID,
	}
	if r.ImagesJSON != "" {
		if err := json.Unmarshal([]byte(r.ImagesJSON), &p.Images); err != nil {
			return p, fmt.Errorf("product %s images: %w", r.ID, err)
		}
	}
	if r.VariantsJSON != "" {
		if err := json.Unmarshal([]byte(r.VariantsJSON), &p.Variants); err != nil {
			return p, fmt.Errorf("product %s variants: %w", r.ID, err)
		}
	}
	if r.PricingJSON != "" {
		p.Pricing = &domain.Pricing{}
		if err := json.Unmarshal([]byte(r.PricingJSON), p.Pricing); err != nil {
			return p, fmt.Errorf("product %s pricing: %w", r.ID, err)
		}
	}
	return p, nil
}

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// CatalogsIn lists the catalogs of the given categories.
func (r *ProductRepo) CatalogsIn(ctx context.Context, categoryIDs []string) ([]CatalogRow, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
	  SELECT id, category_id, name
	  FROM catalogs
	  WHERE category_id IN (?)
	  ORDER BY category_id, position, id
	`, categoryIDs)
	if err != nil {
		return nil, err
	}
	var out []CatalogRow
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// ProductsIn lists the active products of the given catalogs.
func (r *ProductRepo) ProductsIn(ctx context.Context, catalogIDs []string) ([]domain.Product, error) {
	if len(catalogIDs) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
	  SELECT
	    p.id, p.catalog_id, c.category_id, p.name,
	    COALESCE(p.description,'') AS description, p.price,
	    COALESCE(p.images_json,'') AS images_json,
	    COALESCE(p.variants_json,'') AS variants_json,
	    COALESCE(p.pricing_json,'') AS pricing_json,
	    p.rating
	  FROM products p
	  JOIN catalogs c ON c.id = p.catalog_id
	  WHERE p.catalog_id IN (?) AND p.active = 1
	  ORDER BY p.catalog_id, p.position, p.id
	`, catalogIDs)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Populate attaches catalogs and products to the given categories, keeping
// their order. Categories with no catalogs stay skeletons.
func (r *ProductRepo) Populate(ctx context.Context, cats []domain.Category) ([]domain.Category, error) {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	catalogs, err := r.CatalogsIn(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalogIDs := make([]string, len(catalogs))
	for i, c := range catalogs {
		catalogIDs[i] = c.ID
	}
	products, err := r.ProductsIn(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}

	byCatalog := make(map[string][]domain.Product, len(catalogs))
	for _, p := range products {
		byCatalog[p.CatalogID] = append(byCatalog[p.CatalogID], p)
	}
	byCategory := make(map[string][]domain.Catalog, len(cats))
	for _, c := range catalogs {
		byCategory[c.CategoryID] = append(byCategory[c.CategoryID], domain.Catalog{
			ID:       c.ID,
			Name:     c.Name,
			Products: byCatalog[c.ID],
		})
	}

	out := make([]domain.Category, len(cats))
	for i, c := range cats {
		c.Catalogs = byCategory[c.ID]
		out[i] = c
	}
	return out, nil
}
