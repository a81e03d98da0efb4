package repos

import (
	"encoding/json"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"storefront/internal/domain"
)

// DriverFor picks the sql driver from the DSN: postgres URLs use pgx,
// everything else is a SQLite path.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo tenants if DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return err
		}
	}
	schema := `
-- Tenants
CREATE TABLE IF NOT EXISTS companies(
  id TEXT PRIMARY KEY,
  domain TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  locale TEXT NOT NULL DEFAULT 'en-US',
  logo_url TEXT
);

-- Categories: eager ones ship populated on page load, the rest as skeletons
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  image TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  eager INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_categories_company ON categories(company_id, position);

CREATE TABLE IF NOT EXISTS catalogs(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_catalogs_category ON catalogs(category_id, position);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  catalog_id TEXT NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT,
  price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
  images_json TEXT,
  variants_json TEXT,
  pricing_json TEXT,
  rating DOUBLE PRECISION NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_products_catalog ON products(catalog_id, position);

-- Durable per-device snapshots (catalog cache, wishlist)
CREATE TABLE IF NOT EXISTS persisted_state(
  state_key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  expires_at TEXT,
  updated_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

type seedProduct struct {
	id, name, desc string
	price, rating  float64
	images         []domain.Image
	variants       []domain.Variant
	pricing        *domain.Pricing
}

type seedCatalog struct {
	id, name string
	products []seedProduct
}

type seedCategory struct {
	id, name, image string
	eager           bool
	catalogs        []seedCatalog
}

type seedCompany struct {
	domain.CompanyDetails
	categories []seedCategory
}

func img(path string) []domain.Image { return []domain.Image{{URL: path, Primary: true}} }

var sizes = []domain.Variant{{Name: "size", Options: []string{"S", "M", "L", "XL"}}}

var demoCompanies = []seedCompany{
	{
		CompanyDetails: domain.CompanyDetails{ID: "co-mashallah", Domain: "mashallah", Name: "Mashallah Market", Currency: "USD", Locale: "en-US"},
		categories: []seedCategory{
			{id: "mash-apparel", name: "Apparel", image: "categories/apparel.jpg", eager: true, catalogs: []seedCatalog{
				{id: "mash-apparel-tees", name: "Tees", products: []seedProduct{
					{id: "mash-tee-001", name: "Classic Tee", desc: "Heavyweight cotton tee", price: 24, rating: 4.5, images: img("products/mash-tee-001/main.jpg"), variants: sizes},
					{id: "mash-tee-002", name: "Pocket Tee", desc: "Garment dyed, chest pocket", price: 28, rating: 4.2, images: img("products/mash-tee-002/main.jpg"), variants: sizes,
						pricing: &domain.Pricing{CompareAt: 35, Discount: 20}},
				}},
			}},
			{id: "mash-home", name: "Home", image: "categories/home.jpg", eager: true, catalogs: []seedCatalog{
				{id: "mash-home-kitchen", name: "Kitchen", products: []seedProduct{
					{id: "mash-mug-001", name: "Stoneware Mug", desc: "Hand glazed, 350ml", price: 16, rating: 4.8, images: img("products/mash-mug-001/main.jpg")},
				}},
			}},
			{id: "mash-gifts", name: "Gifts", image: "categories/gifts.jpg", catalogs: []seedCatalog{
				{id: "mash-gifts-cards", name: "Gift cards", products: []seedProduct{
					{id: "mash-card-025", name: "Gift Card 25", price: 25, rating: 5},
					{id: "mash-card-050", name: "Gift Card 50", price: 50, rating: 5},
				}},
			}},
		},
	},
	{
		CompanyDetails: domain.CompanyDetails{ID: "co-acme", Domain: "acme", Name: "Acme Supply", Currency: "EUR", Locale: "de-DE"},
		categories: []seedCategory{
			{id: "acme-tools", name: "Tools", eager: true, catalogs: []seedCatalog{
				{id: "acme-tools-hand", name: "Hand tools", products: []seedProduct{
					{id: "acme-hammer", name: "Claw Hammer", desc: "16oz steel", price: 19.9, rating: 4.1, images: img("products/acme-hammer/main.jpg")},
					{id: "acme-gloves", name: "Work Gloves", price: 9.5, rating: 3.9, variants: []domain.Variant{{Name: "size", Options: []string{"M", "L"}}}},
				}},
			}},
			{id: "acme-anvils", name: "Anvils", catalogs: []seedCatalog{
				{id: "acme-anvils-all", name: "All anvils", products: []seedProduct{
					{id: "acme-anvil-50", name: "Anvil 50kg", price: 349, rating: 4.9},
				}},
			}},
		},
	},
	{
		CompanyDetails: domain.CompanyDetails{ID: "co-demo", Domain: "demo", Name: "Demo Store", Currency: "GBP", Locale: "en-GB"},
		categories: []seedCategory{
			{id: "demo-books", name: "Books", eager: true, catalogs: []seedCatalog{
				{id: "demo-books-fiction", name: "Fiction", products: []seedProduct{
					{id: "demo-book-001", name: "The Long Field", price: 12.99, rating: 4.3},
				}},
			}},
		},
	},
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM companies`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo companies/categories/products")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, co := range demoCompanies {
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO companies(id,domain,name,currency,locale,logo_url) VALUES(?,?,?,?,?,?)`),
			co.ID, co.Domain, co.Name, co.Currency, co.Locale, co.LogoURL); err != nil {
			return err
		}
		for ci, cat := range co.categories {
			if _, err := tx.Exec(tx.Rebind(`INSERT INTO categories(id,company_id,name,image,position,eager) VALUES(?,?,?,?,?,?)`),
				cat.id, co.ID, cat.name, cat.image, ci, boolInt(cat.eager)); err != nil {
				return err
			}
			for li, cl := range cat.catalogs {
				if _, err := tx.Exec(tx.Rebind(`INSERT INTO catalogs(id,category_id,name,position) VALUES(?,?,?,?)`),
					cl.id, cat.id, cl.name, li); err != nil {
					return err
				}
				for pi, p := range cl.products {
					if _, err := tx.Exec(tx.Rebind(`
						INSERT INTO products(id,catalog_id,name,description,price,images_json,variants_json,pricing_json,rating,position)
						VALUES(?,?,?,?,?,?,?,?,?,?)`),
						p.id, cl.id, p.name, p.desc, p.price,
						jsonOrNil(p.images), jsonOrNil(p.variants), jsonOrNil(p.pricing), p.rating, pi); err != nil {
						return err
					}
				}
			}
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func jsonOrNil[T any](v T) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" || string(b) == "[]" {
		return nil
	}
	return string(b)
}
