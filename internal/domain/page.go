package domain

import (
	"strings"
	"time"
)

// ContentType is the page body format
type ContentType string

const (
	ContentMarkdown ContentType = "markdown"
	ContentHTML     ContentType = "html"
)

// NormalizeContentType maps client values onto a known type; "wysiwyg" is an alias for html
func NormalizeContentType(v string) (ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "markdown", "md":
		return ContentMarkdown, true
	case "html", "wysiwyg":
		return ContentHTML, true
	}
	return "", false
}

// SortOrder selects the page list ordering
type SortOrder string

const (
	SortAlphabetical SortOrder = "alphabetical"
	SortCategory     SortOrder = "category"
	SortRecent       SortOrder = "recent"
	SortCreator      SortOrder = "creator"
	SortCustom       SortOrder = "custom"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortAlphabetical, SortCategory, SortRecent, SortCreator, SortCustom:
		return true
	}
	return false
}

// Page is a wiki page. Slug is its immutable identity.
type Page struct {
	ID           uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title        string      `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug         string      `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Content      string      `gorm:"column:content;type:text;not null" json:"content"`
	ContentType  ContentType `gorm:"column:content_type;type:varchar(20);not null;default:'markdown'" json:"content_type"`
	Category     *string     `gorm:"column:category;type:varchar(100);index" json:"category"`
	DisplayOrder int         `gorm:"column:display_order;not null;default:0" json:"display_order"`
	AuthorID     *uint64     `gorm:"column:author_id;index" json:"author_id"`
	IsPublished  bool        `gorm:"column:is_published;not null;index" json:"is_published"`
	IsPublic     bool        `gorm:"column:is_public;not null" json:"is_public"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Page) TableName() string { return "pages" }

// OwnedBy reports whether userID authored the page
func (p *Page) OwnedBy(userID uint64) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}

// PageWithAuthor is a page joined with its author's username
type PageWithAuthor struct {
	Page
	AuthorName *string `gorm:"column:author_name" json:"author_name"`
}

// PageRevision is an append-only snapshot taken before a page is overwritten
type PageRevision struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PageID    uint64    `gorm:"column:page_id;not null;index" json:"page_id"`
	Title     string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	AuthorID  *uint64   `gorm:"column:author_id" json:"author_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Page *Page `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PageRevision) TableName() string { return "page_revisions" }

// RevisionWithAuthor adds the revision author's username
type RevisionWithAuthor struct {
	PageRevision
	AuthorName *string `gorm:"column:author_name" json:"author_name"`
}

// PageRejection records an unpublished page an admin rejected
type PageRejection struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PageSlug   string    `gorm:"column:page_slug;type:varchar(255);index" json:"page_slug"`
	PageTitle  string    `gorm:"column:page_title;type:varchar(255)" json:"page_title"`
	AuthorID   *uint64   `gorm:"column:author_id" json:"author_id"`
	RejectedBy uint64    `gorm:"column:rejected_by" json:"rejected_by"`
	Reason     *string   `gorm:"column:reason;type:text" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PageRejection) TableName() string { return "page_rejections" }

// PageInput holds the editable page fields shared by create, update and pending edits
type PageInput struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Content     string  `json:"content"`
	ContentType string  `json:"content_type"`
	Category    *string `json:"category"`
	IsPublic    *bool   `json:"is_public"`
}

// PublicFlag returns is_public, defaulting to false
func (in PageInput) PublicFlag() bool {
	return in.IsPublic != nil && *in.IsPublic
}

// NormalizedCategory trims the category and maps blank to nil
func (in PageInput) NormalizedCategory() *string {
	if in.Category == nil {
		return nil
	}
	c := strings.TrimSpace(*in.Category)
	if c == "" {
		return nil
	}
	return &c
}

// ReorderRequest sets a page's display_order
type ReorderRequest struct {
	DisplayOrder *int `json:"display_order"`
}

// RejectRequest carries an optional reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// SearchResult is a ranked search hit
type SearchResult struct {
	ID          uint64      `gorm:"column:id" json:"id"`
	Title       string      `gorm:"column:title" json:"title"`
	Slug        string      `gorm:"column:slug" json:"slug"`
	ContentType ContentType `gorm:"column:content_type" json:"content_type"`
	Category    *string     `gorm:"column:category" json:"category"`
	Excerpt     string      `gorm:"-" json:"excerpt"`
	Content     string      `gorm:"column:content" json:"-"`
	Rank        float64     `gorm:"column:rank" json:"rank"`
	UpdatedAt   time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

// PageMutation is returned from create and direct update. RequiresApproval is
// set when the page was created unpublished and waits for an admin.
type PageMutation struct {
	*Page
	RequiresApproval bool   `json:"requires_approval"`
	Message          string `json:"message,omitempty"`
}

// PublishResult is returned after an admin publishes or rejects a page
type PublishResult struct {
	Message string  `json:"message"`
	Slug    string  `json:"slug"`
	Reason  *string `json:"reason,omitempty"`
}
