package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/logger"
	"gorm.io/gorm"
)

// PendingEditService handles review of queued page edits
type PendingEditService struct {
	db        *gorm.DB
	pageSvc   *PageService
	pages     repository.PageRepository
	revisions repository.RevisionRepository
	edits     repository.PendingEditRepository
	events    EventPublisher
}

// NewPendingEditService creates a new PendingEditService. Submissions share PageService's queueing path.
func NewPendingEditService(
	db *gorm.DB,
	pageSvc *PageService,
	pages repository.PageRepository,
	revisions repository.RevisionRepository,
	edits repository.PendingEditRepository,
) *PendingEditService {
	return &PendingEditService{
		db:        db,
		pageSvc:   pageSvc,
		pages:     pages,
		revisions: revisions,
		edits:     edits,
		events:    nopPublisher{},
	}
}

// SetEventPublisher sets where review events are sent
func (s *PendingEditService) SetEventPublisher(p EventPublisher) {
	if p != nil {
		s.events = p
	}
}

// List returns pending edits: all of them for admins, the caller's own for editors
func (s *PendingEditService) List(ctx context.Context, req domain.Requester) ([]*domain.PendingEditView, error) {
	var editorID *uint64
	switch {
	case req.IsAdmin():
	case req.IsEditor():
		id := req.UserID
		editorID = &id
	default:
		return nil, common.ErrEditorRequired
	}

	edits, err := s.edits.ListPending(editorID)
	if err != nil {
		return nil, fmt.Errorf("list pending edits: %w", err)
	}
	if edits == nil {
		edits = []*domain.PendingEditView{}
	}
	return edits, nil
}

// Get returns one edit with the page's current fields alongside
func (s *PendingEditService) Get(ctx context.Context, id uint64, req domain.Requester) (*domain.PendingEditDetail, error) {
	if !CanCreate(req) {
		return nil, common.ErrEditorRequired
	}
	detail, err := s.edits.FindDetail(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrEditNotFound
		}
		return nil, fmt.Errorf("find pending edit %d: %w", id, err)
	}
	if !req.IsAdmin() && detail.EditorID != req.UserID {
		return nil, common.ErrNotEditOwner
	}
	return detail, nil
}

// Submit queues a change to an existing page for review
func (s *PendingEditService) Submit(ctx context.Context, req domain.Requester, in domain.SubmitEditRequest) (*domain.PendingEditResult, error) {
	if req.IsAdmin() {
		return nil, common.ErrAdminEditsLive
	}
	if !CanCreate(req) {
		return nil, common.ErrEditorRequired
	}
	pageSlug := strings.TrimSpace(in.PageSlug)
	if pageSlug == "" {
		return nil, common.ErrPageNotFound
	}

	fields, err := s.pageSvc.normalize(in.PageInput)
	if err != nil {
		return nil, err
	}
	return s.pageSvc.queueEdit(ctx, req, pageSlug, fields)
}

// Approve applies a pending edit to its page, snapshotting the page first
func (s *PendingEditService) Approve(ctx context.Context, id uint64, req domain.Requester) (*domain.ReviewResult, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}

	var (
		pageSlug string
		editorID uint64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edits := s.edits.WithTx(tx)
		pages := s.pages.WithTx(tx)

		// page row before edit row, the same order queueEdit takes
		target, err := edits.FindByID(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrEditNotPending
			}
			return err
		}
		page, err := pages.FindByIDForUpdate(target.PageID)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrPageNotFound
			}
			return err
		}

		edit, err := edits.FindByIDForUpdate(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrEditNotPending
			}
			return err
		}
		if !edit.IsPending() || edit.PageID != page.ID {
			return common.ErrEditNotPending
		}

		editor := edit.EditorID
		if err := s.revisions.WithTx(tx).Create(&domain.PageRevision{
			PageID:   page.ID,
			Title:    page.Title,
			Content:  page.Content,
			AuthorID: &editor,
		}); err != nil {
			return fmt.Errorf("snapshot revision: %w", err)
		}

		if err := pages.UpdateContent(page.ID, repository.PageFields{
			Title:       edit.Title,
			Content:     edit.Content,
			ContentType: edit.ContentType,
			Category:    edit.Category,
			IsPublic:    edit.IsPublic,
		}); err != nil {
			return fmt.Errorf("apply edit: %w", err)
		}

		n, err := edits.MarkReviewed(edit.ID, domain.EditApproved, req.UserID, nil, time.Now())
		if err != nil {
			return fmt.Errorf("mark edit approved: %w", err)
		}
		if n != 1 {
			return common.ErrEditNotPending
		}

		pageSlug = page.Slug
		editorID = edit.EditorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	reviewsTotal.WithLabelValues("edit", "approved").Inc()
	s.events.Publish(ctx, domain.ReviewEvent{
		Type:        domain.EventEditApproved,
		Slug:        pageSlug,
		EditID:      id,
		ActorID:     req.UserID,
		RecipientID: editorID,
		At:          time.Now(),
	})
	logger.GetLogger().Info().Uint64("edit_id", id).Str("slug", pageSlug).Str("admin_id", req.IDString()).Msg("pending edit approved")

	return &domain.ReviewResult{Message: "Edit approved and applied successfully", PageSlug: pageSlug}, nil
}

// Reject closes a pending edit without touching the page
func (s *PendingEditService) Reject(ctx context.Context, id uint64, req domain.Requester, reason string) (*domain.ReviewResult, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}

	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}

	var detail *domain.PendingEditDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edits := s.edits.WithTx(tx)
		var err error
		detail, err = edits.FindDetail(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrEditNotPending
			}
			return err
		}
		n, err := edits.MarkReviewed(id, domain.EditRejected, req.UserID, reasonPtr, time.Now())
		if err != nil {
			return fmt.Errorf("mark edit rejected: %w", err)
		}
		if n != 1 {
			return common.ErrEditNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reviewsTotal.WithLabelValues("edit", "rejected").Inc()
	event := domain.ReviewEvent{
		Type:        domain.EventEditRejected,
		Slug:        detail.PageSlug,
		EditID:      id,
		ActorID:     req.UserID,
		RecipientID: detail.EditorID,
		At:          time.Now(),
	}
	if reasonPtr != nil {
		event.Data = map[string]interface{}{"reason": *reasonPtr}
	}
	s.events.Publish(ctx, event)

	return &domain.ReviewResult{Message: "Edit rejected successfully", PageSlug: detail.PageSlug, Reason: reasonPtr}, nil
}

// Delete withdraws a pending edit. Editors may only withdraw their own; nobody
// may remove an edit once it has been approved or rejected.
func (s *PendingEditService) Delete(ctx context.Context, id uint64, req domain.Requester) error {
	if !CanCreate(req) {
		return common.ErrEditorRequired
	}
	edit, err := s.edits.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return common.ErrEditNotFound
		}
		return fmt.Errorf("find pending edit %d: %w", id, err)
	}
	if !req.IsAdmin() && edit.EditorID != req.UserID {
		return common.ErrNotEditOwner
	}
	if !edit.IsPending() {
		return common.ErrEditNotPending
	}

	n, err := s.edits.DeletePending(id)
	if err != nil {
		return fmt.Errorf("delete pending edit %d: %w", id, err)
	}
	if n == 0 {
		// reviewed or withdrawn since the lookup
		return common.ErrEditNotPending
	}
	return nil
}
