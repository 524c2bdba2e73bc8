package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"noiressence/internal/domain"
	"noiressence/internal/repos"
)

var (
	ErrInvalidDraft   = errors.New("invalid product draft")
	ErrProductMissing = errors.New("product not found")
)

type CatalogService struct {
	Prods *repos.ProductRepo
	Cats  *repos.CategoryRepo
}

func NewCatalogService(prods *repos.ProductRepo, cats *repos.CategoryRepo) *CatalogService {
	return &CatalogService{Prods: prods, Cats: cats}
}

func (s *CatalogService) List() ([]domain.Product, error) { return s.Prods.List() }

func (s *CatalogService) NewArrivals(limit int) ([]domain.Product, error) {
	return s.Prods.ListNew(limit)
}

// Browse backs the collection page; an empty category means all.
func (s *CatalogService) Browse(q string, cat domain.Category) ([]domain.Product, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" && cat == "" {
		return s.Prods.List()
	}
	if q == "" {
		return s.Prods.ListByCategory(cat)
	}
	return s.Prods.Search(q, cat)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductMissing, id)
	}
	return p, err
}

func (s *CatalogService) CategoryCounts() ([]repos.CategoryCount, error) { return s.Cats.Counts() }

type CatalogStats struct {
	Count    int
	AvgPrice decimal.Decimal
}

func (s *CatalogService) Stats() (CatalogStats, error) {
	ps, err := s.Prods.List()
	if err != nil {
		return CatalogStats{}, err
	}
	st := CatalogStats{Count: len(ps), AvgPrice: decimal.Zero}
	if len(ps) == 0 {
		return st, nil
	}
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Price)
	}
	st.AvgPrice = sum.Div(decimal.NewFromInt(int64(len(ps)))).Round(2)
	return st, nil
}

// Create validates the draft, fills defaults and appends it to the catalog.
func (s *CatalogService) Create(d domain.Draft) (domain.Product, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil || !price.IsPositive() {
		return domain.Product{}, fmt.Errorf("%w: price must be a positive number", ErrInvalidDraft)
	}
	cat := domain.Unisex
	if strings.TrimSpace(d.Category) != "" {
		if cat, err = domain.ParseCategory(d.Category); err != nil {
			return domain.Product{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Brand:       orDefault(d.Brand, domain.HouseBrand),
		Price:       price,
		Description: strings.TrimSpace(d.Description),
		Notes:       cleanNotes(d.Notes),
		Image:       orDefault(d.Image, domain.PlaceholderImage),
		Category:    cat,
		IsNew:       true,
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Delete removes id; deleting an unknown id is not an error.
func (s *CatalogService) Delete(id string) (bool, error) {
	return s.Prods.Delete(id)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// cleanNotes trims and drops blanks but keeps order and duplicates.
func cleanNotes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
