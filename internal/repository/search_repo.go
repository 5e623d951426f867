package repository

import (
	"strings"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// SearchLimit caps the number of hits returned
const SearchLimit = 50

// SearchRepository page search. Postgres uses its text search ranking,
// other dialects fall back to a LIKE scan.
type SearchRepository interface {
	Search(query string, publicOnly bool) ([]*domain.SearchResult, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) Search(query string, publicOnly bool) ([]*domain.SearchResult, error) {
	if r.db.Dialector.Name() == "postgres" {
		return r.fullText(query, publicOnly)
	}
	return r.like(query, publicOnly)
}

const tsDocument = "to_tsvector('english', pages.title || ' ' || pages.content)"

func (r *searchRepository) fullText(query string, publicOnly bool) ([]*domain.SearchResult, error) {
	q := r.db.Model(&domain.Page{}).
		Select("pages.id, pages.title, pages.slug, pages.content_type, pages.category, pages.content, pages.updated_at, "+
			"ts_rank("+tsDocument+", plainto_tsquery('english', ?)) AS rank", query).
		Where(tsDocument+" @@ plainto_tsquery('english', ?)", query).
		Where("pages.is_published = ?", true)
	if publicOnly {
		q = q.Where("pages.is_public = ?", true)
	}

	var results []*domain.SearchResult
	err := q.Order("rank DESC").Limit(SearchLimit).Scan(&results).Error
	return results, err
}

func (r *searchRepository) like(query string, publicOnly bool) ([]*domain.SearchResult, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	q := r.db.Model(&domain.Page{}).
		Select("pages.id, pages.title, pages.slug, pages.content_type, pages.category, pages.content, pages.updated_at, "+
			"CASE WHEN LOWER(pages.title) LIKE ? ESCAPE '!' THEN 1.0 ELSE 0.5 END AS rank", pattern).
		Where("(LOWER(pages.title) LIKE ? ESCAPE '!' OR LOWER(pages.content) LIKE ? ESCAPE '!')", pattern, pattern).
		Where("pages.is_published = ?", true)
	if publicOnly {
		q = q.Where("pages.is_public = ?", true)
	}

	var results []*domain.SearchResult
	err := q.Order("rank DESC, pages.updated_at DESC").Limit(SearchLimit).Scan(&results).Error
	return results, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
