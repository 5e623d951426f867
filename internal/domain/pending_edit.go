package domain

import "time"

// EditStatus is the review state of a pending edit
type EditStatus string

const (
	EditPending  EditStatus = "pending"
	EditApproved EditStatus = "approved"
	EditRejected EditStatus = "rejected"
)

// PendingPageEdit is an editor's proposed change awaiting admin review.
// Only one pending row may exist per (page, editor).
type PendingPageEdit struct {
	ID              uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PageID          uint64      `gorm:"column:page_id;not null;index" json:"page_id"`
	Title           string      `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content         string      `gorm:"column:content;type:text;not null" json:"content"`
	ContentType     ContentType `gorm:"column:content_type;type:varchar(20);not null;default:'markdown'" json:"content_type"`
	Category        *string     `gorm:"column:category;type:varchar(100)" json:"category"`
	IsPublic        bool        `gorm:"column:is_public;not null" json:"is_public"`
	EditorID        uint64      `gorm:"column:editor_id;not null;index" json:"editor_id"`
	Status          EditStatus  `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy      *uint64     `gorm:"column:reviewed_by" json:"reviewed_by"`
	ReviewedAt      *time.Time  `gorm:"column:reviewed_at" json:"reviewed_at"`
	RejectionReason *string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	CreatedAt       time.Time   `gorm:"column:created_at" json:"created_at"`

	Page *Page `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PendingPageEdit) TableName() string { return "pending_page_edits" }

// IsPending reports whether the edit still awaits review
func (e *PendingPageEdit) IsPending() bool {
	return e.Status == EditPending
}

// PendingEditView joins an edit with its page slug/title and editor name
type PendingEditView struct {
	PendingPageEdit
	PageSlug   string  `gorm:"column:page_slug" json:"page_slug"`
	PageTitle  string  `gorm:"column:page_title" json:"page_title"`
	EditorName *string `gorm:"column:editor_name" json:"editor_name"`
}

// PendingEditDetail adds the page's current fields for side-by-side review
type PendingEditDetail struct {
	PendingEditView
	CurrentTitle       string      `gorm:"column:current_title" json:"current_title"`
	CurrentContent     string      `gorm:"column:current_content" json:"current_content"`
	CurrentContentType ContentType `gorm:"column:current_content_type" json:"current_content_type"`
	CurrentCategory    *string     `gorm:"column:current_category" json:"current_category"`
	CurrentIsPublic    bool        `gorm:"column:current_is_public" json:"current_is_public"`
}

// SubmitEditRequest proposes a change to an existing page
type SubmitEditRequest struct {
	PageSlug string `json:"page_slug" binding:"required"`
	PageInput
}

// PendingEditResult is returned when a change was queued instead of applied
type PendingEditResult struct {
	PendingEdit      *PendingPageEdit `json:"pending_edit"`
	RequiresApproval bool             `json:"requires_approval"`
	Message          string           `json:"message"`
}

// ReviewResult is returned after an admin approves or rejects an edit
type ReviewResult struct {
	Message  string  `json:"message"`
	PageSlug string  `json:"page_slug"`
	Reason   *string `json:"reason,omitempty"`
}
