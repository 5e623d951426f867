package repository

import (
	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository page revision data access
type RevisionRepository interface {
	WithTx(tx *gorm.DB) RevisionRepository
	Create(rev *domain.PageRevision) error
	ListByPage(pageID uint64) ([]*domain.RevisionWithAuthor, error)
	CountByPage(pageID uint64) (int64, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) WithTx(tx *gorm.DB) RevisionRepository {
	return &revisionRepository{db: tx}
}

func (r *revisionRepository) Create(rev *domain.PageRevision) error {
	return r.db.Omit("Page").Create(rev).Error
}

// ListByPage returns revisions newest first
func (r *revisionRepository) ListByPage(pageID uint64) ([]*domain.RevisionWithAuthor, error) {
	var revs []*domain.RevisionWithAuthor
	err := r.db.Model(&domain.PageRevision{}).
		Select("page_revisions.*, users.username AS author_name").
		Joins("LEFT JOIN users ON users.id = page_revisions.author_id").
		Where("page_revisions.page_id = ?", pageID).
		Order("page_revisions.created_at DESC, page_revisions.id DESC").
		Scan(&revs).Error
	return revs, err
}

func (r *revisionRepository) CountByPage(pageID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.PageRevision{}).Where("page_id = ?", pageID).Count(&count).Error
	return count, err
}
