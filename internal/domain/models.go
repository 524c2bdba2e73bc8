package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	HouseBrand       = "Noir Essence"
	PlaceholderImage = "https://picsum.photos/400/600"
)

type Category string

const (
	Men    Category = "Men"
	Women  Category = "Women"
	Unisex Category = "Unisex"
)

var Categories = []Category{Men, Women, Unisex}

// ParseCategory accepts the closed set case-insensitively; anything else is rejected.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Brand       string          `db:"brand" json:"brand"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	NotesJSON   string          `db:"notes_json" json:"-"`
	Notes       []string        `db:"-" json:"notes"`
	Image       string          `db:"image" json:"image"`
	Category    Category        `db:"category" json:"category"`
	IsNew       bool            `db:"is_new" json:"isNew"`
	CreatedAt   string          `db:"created_at" json:"-"`
}

// Draft is the admin's proposed product before validation and defaults.
type Draft struct {
	Name        string
	Brand       string
	Price       string
	Description string
	Notes       []string
	Image       string
	Category    string
}

type JournalPost struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Excerpt   string `db:"excerpt"`
	Image     string `db:"image"`
	Published string `db:"published"`
}

type Testimonial struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Role    string `db:"role"`
	Content string `db:"content"`
	Rating  int    `db:"rating"`
	Avatar  string `db:"avatar"`
}
