package repository

import (
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// PendingEditRepository pending page edit data access
type PendingEditRepository interface {
	WithTx(tx *gorm.DB) PendingEditRepository

	Create(edit *domain.PendingPageEdit) error
	FindPending(pageID, editorID uint64) (*domain.PendingPageEdit, error)
	// UpdateProposal overwrites the proposed fields and refreshes created_at
	UpdateProposal(id uint64, fields PageFields, at time.Time) error
	FindByID(id uint64) (*domain.PendingPageEdit, error)
	FindByIDForUpdate(id uint64) (*domain.PendingPageEdit, error)
	ListPending(editorID *uint64) ([]*domain.PendingEditView, error)
	FindDetail(id uint64) (*domain.PendingEditDetail, error)
	// MarkReviewed moves a pending edit to a terminal status; 0 rows means it was not pending
	MarkReviewed(id uint64, status domain.EditStatus, reviewer uint64, reason *string, at time.Time) (int64, error)
	// DeletePending removes an edit only while it is pending; reviewed edits are history
	DeletePending(id uint64) (int64, error)
	CountByPage(pageID uint64, status domain.EditStatus) (int64, error)
}

type pendingEditRepository struct {
	db *gorm.DB
}

// NewPendingEditRepository creates a new PendingEditRepository
func NewPendingEditRepository(db *gorm.DB) PendingEditRepository {
	return &pendingEditRepository{db: db}
}

func (r *pendingEditRepository) WithTx(tx *gorm.DB) PendingEditRepository {
	return &pendingEditRepository{db: tx}
}

func (r *pendingEditRepository) Create(edit *domain.PendingPageEdit) error {
	return r.db.Omit("Page").Create(edit).Error
}

func (r *pendingEditRepository) FindPending(pageID, editorID uint64) (*domain.PendingPageEdit, error) {
	var edit domain.PendingPageEdit
	err := r.db.
		Where("page_id = ? AND editor_id = ? AND status = ?", pageID, editorID, domain.EditPending).
		First(&edit).Error
	if err != nil {
		return nil, err
	}
	return &edit, nil
}

func (r *pendingEditRepository) UpdateProposal(id uint64, fields PageFields, at time.Time) error {
	return r.db.Model(&domain.PendingPageEdit{}).
		Where("id = ? AND status = ?", id, domain.EditPending).
		Updates(map[string]interface{}{
			"title":        fields.Title,
			"content":      fields.Content,
			"content_type": fields.ContentType,
			"category":     fields.Category,
			"is_public":    fields.IsPublic,
			"created_at":   at,
		}).Error
}

func (r *pendingEditRepository) FindByID(id uint64) (*domain.PendingPageEdit, error) {
	var edit domain.PendingPageEdit
	if err := r.db.Where("id = ?", id).First(&edit).Error; err != nil {
		return nil, err
	}
	return &edit, nil
}

func (r *pendingEditRepository) FindByIDForUpdate(id uint64) (*domain.PendingPageEdit, error) {
	var edit domain.PendingPageEdit
	if err := forUpdate(r.db).Where("id = ?", id).First(&edit).Error; err != nil {
		return nil, err
	}
	return &edit, nil
}

func (r *pendingEditRepository) view() *gorm.DB {
	return r.db.Model(&domain.PendingPageEdit{}).
		Joins("JOIN pages ON pages.id = pending_page_edits.page_id").
		Joins("LEFT JOIN users ON users.id = pending_page_edits.editor_id")
}

func (r *pendingEditRepository) ListPending(editorID *uint64) ([]*domain.PendingEditView, error) {
	q := r.view().
		Select("pending_page_edits.*, pages.slug AS page_slug, pages.title AS page_title, users.username AS editor_name").
		Where("pending_page_edits.status = ?", domain.EditPending)
	if editorID != nil {
		q = q.Where("pending_page_edits.editor_id = ?", *editorID)
	}

	var edits []*domain.PendingEditView
	err := q.Order("pending_page_edits.created_at DESC, pending_page_edits.id DESC").Scan(&edits).Error
	return edits, err
}

func (r *pendingEditRepository) FindDetail(id uint64) (*domain.PendingEditDetail, error) {
	var rows []*domain.PendingEditDetail
	err := r.view().
		Select(`pending_page_edits.*, pages.slug AS page_slug, pages.title AS page_title,
			users.username AS editor_name,
			pages.title AS current_title, pages.content AS current_content,
			pages.content_type AS current_content_type, pages.category AS current_category,
			pages.is_public AS current_is_public`).
		Where("pending_page_edits.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}

func (r *pendingEditRepository) MarkReviewed(id uint64, status domain.EditStatus, reviewer uint64, reason *string, at time.Time) (int64, error) {
	res := r.db.Model(&domain.PendingPageEdit{}).
		Where("id = ? AND status = ?", id, domain.EditPending).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewed_by":      reviewer,
			"reviewed_at":      at,
			"rejection_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *pendingEditRepository) DeletePending(id uint64) (int64, error) {
	res := r.db.Where("id = ? AND status = ?", id, domain.EditPending).Delete(&domain.PendingPageEdit{})
	return res.RowsAffected, res.Error
}

func (r *pendingEditRepository) CountByPage(pageID uint64, status domain.EditStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.PendingPageEdit{}).
		Where("page_id = ? AND status = ?", pageID, status).
		Count(&count).Error
	return count, err
}
