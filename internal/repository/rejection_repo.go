package repository

import (
	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// RejectionRepository page rejection audit log
type RejectionRepository interface {
	WithTx(tx *gorm.DB) RejectionRepository
	Create(rej *domain.PageRejection) error
	List(limit int) ([]*domain.PageRejection, error)
}

type rejectionRepository struct {
	db *gorm.DB
}

// NewRejectionRepository creates a new RejectionRepository
func NewRejectionRepository(db *gorm.DB) RejectionRepository {
	return &rejectionRepository{db: db}
}

func (r *rejectionRepository) WithTx(tx *gorm.DB) RejectionRepository {
	return &rejectionRepository{db: tx}
}

func (r *rejectionRepository) Create(rej *domain.PageRejection) error {
	return r.db.Create(rej).Error
}

func (r *rejectionRepository) List(limit int) ([]*domain.PageRejection, error) {
	var rows []*domain.PageRejection
	q := r.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
