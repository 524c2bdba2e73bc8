package repos

import (
	"github.com/jmoiron/sqlx"

	"noiressence/internal/domain"
)

// ContentRepo serves the read-only marketing copy.
type ContentRepo struct{ db *sqlx.DB }

func NewContentRepo(db *sqlx.DB) *ContentRepo { return &ContentRepo{db: db} }

func (r *ContentRepo) JournalPosts() ([]domain.JournalPost, error) {
	out := []domain.JournalPost{}
	err := r.db.Select(&out, `SELECT id, title, excerpt, image, published FROM journal_posts ORDER BY seq`)
	return out, err
}

func (r *ContentRepo) Testimonials() ([]domain.Testimonial, error) {
	out := []domain.Testimonial{}
	err := r.db.Select(&out, `SELECT id, name, role, content, rating, avatar FROM testimonials ORDER BY seq`)
	return out, err
}
