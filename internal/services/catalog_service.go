package services

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

var ErrCategoryNotFound = errors.New("category not found")

// CatalogSource is the company/catalog collaborator a page load fetches from.
type CatalogSource interface {
	// FetchCompanyDetails returns nil, nil when no company owns tenantID.
	FetchCompanyDetails(ctx context.Context, tenantID string) (*domain.CompanyDetails, error)
	// FetchCategories returns the company's categories, some populated and
	// the rest as skeletons.
	FetchCategories(ctx context.Context, companyID string) ([]domain.Category, error)
	// FetchCategory returns one fully populated category.
	FetchCategory(ctx context.Context, companyID, categoryID string) (domain.Category, error)
}

type CatalogService struct {
	Companies *repos.CompanyRepo
	Cats      *repos.CategoryRepo
	Prods     *repos.ProductRepo
	// Eager caps how many eager-flagged categories ship populated; <= 0 means all.
	Eager int
}

func NewCatalogService(companies *repos.CompanyRepo, cats *repos.CategoryRepo, prods *repos.ProductRepo, eager int) *CatalogService {
	return &CatalogService{Companies: companies, Cats: cats, Prods: prods, Eager: eager}
}

func (s *CatalogService) FetchCompanyDetails(ctx context.Context, tenantID string) (*domain.CompanyDetails, error) {
	c, err := s.Companies.ByDomain(ctx, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) FetchCategories(ctx context.Context, companyID string) ([]domain.Category, error) {
	rows, err := s.Cats.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var eager []domain.Category
	for _, r := range rows {
		if r.Eager && (s.Eager <= 0 || len(eager) < s.Eager) {
			eager = append(eager, r.Skeleton())
		}
	}
	full, err := s.Prods.Populate(ctx, eager)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Category, len(full))
	for _, c := range full {
		byID[c.ID] = c
	}

	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		if c, ok := byID[r.ID]; ok {
			out = append(out, c)
		} else {
			out = append(out, r.Skeleton())
		}
	}
	return out, nil
}

func (s *CatalogService) FetchCategory(ctx context.Context, companyID, categoryID string) (domain.Category, error) {
	row, err := s.Cats.Get(ctx, companyID, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, err
	}
	full, err := s.Prods.Populate(ctx, []domain.Category{row.Skeleton()})
	if err != nil {
		return domain.Category{}, err
	}
	return full[0], nil
}
