package repos

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"noiressence/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, brand, price, description, notes_json, image, category, is_new,
    COALESCE(created_at,'') AS created_at`

func decodeNotes(ps []domain.Product) error {
	for i := range ps {
		if err := json.Unmarshal([]byte(ps[i].NotesJSON), &ps[i].Notes); err != nil {
			return fmt.Errorf("product %s notes: %w", ps[i].ID, err)
		}
		if ps[i].Notes == nil {
			ps[i].Notes = []string{}
		}
	}
	return nil
}

func (r *ProductRepo) selectProducts(query string, args ...any) ([]domain.Product, error) {
	out := []domain.Product{}
	if err := r.db.Select(&out, query, args...); err != nil {
		return nil, err
	}
	return out, decodeNotes(out)
}

// List returns the whole catalog in insertion order.
func (r *ProductRepo) List() ([]domain.Product, error) {
	return r.selectProducts(`SELECT ` + productCols + ` FROM products ORDER BY seq`)
}

func (r *ProductRepo) ListByCategory(cat domain.Category) ([]domain.Product, error) {
	return r.selectProducts(`SELECT `+productCols+` FROM products WHERE category = ? ORDER BY seq`, string(cat))
}

func (r *ProductRepo) ListNew(limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	return r.selectProducts(`SELECT `+productCols+` FROM products WHERE is_new = 1 ORDER BY seq DESC LIMIT ?`, limit)
}

// likeEscaper makes q match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches q against name, description and notes; an empty cat means all categories.
func (r *ProductRepo) Search(q string, cat domain.Category) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		where += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(notes_json) LIKE ? ESCAPE '\')`
		args = append(args, like, like, like)
	}
	if cat != "" {
		where += ` AND category = ?`
		args = append(args, string(cat))
	}
	return r.selectProducts(`SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY seq`, args...)
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	if err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id); err != nil {
		return domain.Product{}, err
	}
	ps := []domain.Product{p}
	if err := decodeNotes(ps); err != nil {
		return domain.Product{}, err
	}
	return ps[0], nil
}

// Create appends p to the end of the catalog.
func (r *ProductRepo) Create(p domain.Product) error {
	notes := p.Notes
	if notes == nil {
		notes = []string{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
	  INSERT INTO products(id, name, brand, price, description, notes_json, image, category, is_new)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Brand, p.Price.String(), p.Description, string(b), p.Image, string(p.Category), p.IsNew)
	return err
}

// Delete reports whether a row was removed.
func (r *ProductRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
