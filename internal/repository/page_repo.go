package repository

import (
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// Scope narrows a page query, e.g. to what a requester may see
type Scope = func(*gorm.DB) *gorm.DB

// PageRepository page data access
type PageRepository interface {
	WithTx(tx *gorm.DB) PageRepository

	Create(page *domain.Page) error
	FindBySlug(slug string) (*domain.Page, error)
	// FindBySlugForUpdate locks the page row for the rest of the transaction
	FindBySlugForUpdate(slug string) (*domain.Page, error)
	FindByIDForUpdate(id uint64) (*domain.Page, error)
	SlugExists(slug string) (bool, error)

	List(sort domain.SortOrder, scopes ...Scope) ([]*domain.PageWithAuthor, error)
	FindWithAuthor(slug string, scopes ...Scope) (*domain.PageWithAuthor, error)
	ListUnpublished() ([]*domain.PageWithAuthor, error)

	UpdateContent(id uint64, fields PageFields) error
	Publish(id uint64) error
	UpdateDisplayOrder(slug string, order int) (int64, error)
	// Delete removes the page with its revisions and pending edits
	Delete(id uint64) error
}

// PageFields are the columns an edit may overwrite
type PageFields struct {
	Title       string
	Content     string
	ContentType domain.ContentType
	Category    *string
	IsPublic    bool
}

func (f PageFields) columns(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"title":        f.Title,
		"content":      f.Content,
		"content_type": f.ContentType,
		"category":     f.Category,
		"is_public":    f.IsPublic,
		"updated_at":   now,
	}
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository creates a new PageRepository
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) WithTx(tx *gorm.DB) PageRepository {
	return &pageRepository{db: tx}
}

func (r *pageRepository) Create(page *domain.Page) error {
	return r.db.Create(page).Error
}

func (r *pageRepository) FindBySlug(slug string) (*domain.Page, error) {
	var page domain.Page
	if err := r.db.Where("slug = ?", slug).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) FindBySlugForUpdate(slug string) (*domain.Page, error) {
	var page domain.Page
	if err := forUpdate(r.db).Where("slug = ?", slug).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) FindByIDForUpdate(id uint64) (*domain.Page, error) {
	var page domain.Page
	if err := forUpdate(r.db).Where("id = ?", id).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Page{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *pageRepository) withAuthor() *gorm.DB {
	return r.db.Model(&domain.Page{}).
		Select("pages.*, users.username AS author_name").
		Joins("LEFT JOIN users ON users.id = pages.author_id")
}

func (r *pageRepository) List(sort domain.SortOrder, scopes ...Scope) ([]*domain.PageWithAuthor, error) {
	var pages []*domain.PageWithAuthor
	err := r.withAuthor().
		Scopes(scopes...).
		Order(orderClause(sort)).
		Scan(&pages).Error
	return pages, err
}

func (r *pageRepository) FindWithAuthor(slug string, scopes ...Scope) (*domain.PageWithAuthor, error) {
	var pages []*domain.PageWithAuthor
	err := r.withAuthor().
		Where("pages.slug = ?", slug).
		Scopes(scopes...).
		Limit(1).
		Scan(&pages).Error
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return pages[0], nil
}

func (r *pageRepository) ListUnpublished() ([]*domain.PageWithAuthor, error) {
	var pages []*domain.PageWithAuthor
	err := r.withAuthor().
		Where("pages.is_published = ?", false).
		Order("pages.created_at DESC, pages.id DESC").
		Scan(&pages).Error
	return pages, err
}

func (r *pageRepository) UpdateContent(id uint64, fields PageFields) error {
	return r.db.Model(&domain.Page{}).
		Where("id = ?", id).
		Updates(fields.columns(time.Now())).Error
}

func (r *pageRepository) Publish(id uint64) error {
	return r.db.Model(&domain.Page{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_published": true, "updated_at": time.Now()}).Error
}

func (r *pageRepository) UpdateDisplayOrder(slug string, order int) (int64, error) {
	res := r.db.Model(&domain.Page{}).
		Where("slug = ?", slug).
		UpdateColumn("display_order", order)
	return res.RowsAffected, res.Error
}

func (r *pageRepository) Delete(id uint64) error {
	if err := r.db.Where("page_id = ?", id).Delete(&domain.PendingPageEdit{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("page_id = ?", id).Delete(&domain.PageRevision{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&domain.Page{}).Error
}

func orderClause(sort domain.SortOrder) string {
	switch sort {
	case domain.SortAlphabetical:
		return "pages.title ASC, pages.id ASC"
	case domain.SortCategory:
		return "CASE WHEN pages.category IS NULL THEN 1 ELSE 0 END, pages.category ASC, pages.title ASC"
	case domain.SortCreator:
		return "users.username ASC, pages.title ASC"
	case domain.SortCustom:
		return "pages.display_order ASC, pages.title ASC"
	default:
		return "pages.updated_at DESC, pages.id DESC"
	}
}
