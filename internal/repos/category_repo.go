package repos

import (
	"github.com/jmoiron/sqlx"

	"noiressence/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

type CategoryCount struct {
	Category domain.Category `db:"category"`
	Count    int             `db:"n"`
}

// Counts returns one row per category in the closed set, zero-filled.
func (r *CategoryRepo) Counts() ([]CategoryCount, error) {
	var rows []CategoryCount
	if err := r.db.Select(&rows, `
	  SELECT category, COUNT(*) AS n
	  FROM products
	  GROUP BY category
	`); err != nil {
		return nil, err
	}
	byCat := make(map[domain.Category]int, len(rows))
	for _, row := range rows {
		byCat[row.Category] = row.Count
	}
	out := make([]CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryCount{Category: c, Count: byCat[c]})
	}
	return out, nil
}
