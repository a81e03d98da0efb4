package domain

import "strings"

type Image struct {
	URL     string `json:"url" db:"url"`
	Alt     string `json:"alt,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type Pricing struct {
	CompareAt float64 `json:"compareAt,omitempty"`
	Discount  float64 `json:"discount,omitempty"` // percent, 0-100
}

// Product is a value type; identity is ID.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Images      []Image   `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	Pricing     *Pricing  `json:"pricing,omitempty"`
	Rating      float64   `json:"rating"`
	CategoryID  string    `json:"categoryId,omitempty"`
	CatalogID   string    `json:"catalogId,omitempty"`
	// ImageURL is the display image derived from Images; set by the catalog store.
	ImageURL string `json:"imageUrl,omitempty"`
}

// PrimaryImage returns the image flagged primary, else the first one.
func (p Product) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.Primary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return Image{}, false
}

// HasVariant reports whether name/option is a selectable variant of p.
func (p Product) HasVariant(name, option string) bool {
	for _, v := range p.Variants {
		if v.Name != name {
			continue
		}
		for _, o := range v.Options {
			if o == option {
				return true
			}
		}
	}
	return false
}

type Catalog struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Category is either a skeleton (no catalogs, lazy-load placeholder) or populated.
type Category struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image,omitempty"`
	Catalogs []Catalog `json:"catalogs,omitempty"`
}

func (c Category) IsSkeleton() bool { return len(c.Catalogs) == 0 }

// CompanyDetails is what the company service knows about a tenant.
type CompanyDetails struct {
	ID       string `json:"id" db:"id"`
	Domain   string `json:"domain" db:"domain"`
	Name     string `json:"name" db:"name"`
	Currency string `json:"currency" db:"currency"`
	Locale   string `json:"locale" db:"locale"`
	LogoURL  string `json:"logoUrl,omitempty" db:"logo_url"`
}

// MediaURL resolves a stored image path against the media mount.
func MediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + path
}
