package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/damoang/angple-wiki/pkg/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const maxTitleLength = 255

// PageService handles the page lifecycle: create, update (direct or queued), publish, reject and delete
type PageService struct {
	db         *gorm.DB
	pages      repository.PageRepository
	revisions  repository.RevisionRepository
	edits      repository.PendingEditRepository
	rejections repository.RejectionRepository
	gate       *ApprovalGate
	events     EventPublisher
	policy     *bluemonday.Policy
}

// NewPageService creates a new PageService
func NewPageService(
	db *gorm.DB,
	pages repository.PageRepository,
	revisions repository.RevisionRepository,
	edits repository.PendingEditRepository,
	rejections repository.RejectionRepository,
	gate *ApprovalGate,
) *PageService {
	return &PageService{
		db:         db,
		pages:      pages,
		revisions:  revisions,
		edits:      edits,
		rejections: rejections,
		gate:       gate,
		events:     nopPublisher{},
		policy:     bluemonday.UGCPolicy(),
	}
}

// SetEventPublisher sets where review events are sent
func (s *PageService) SetEventPublisher(p EventPublisher) {
	if p != nil {
		s.events = p
	}
}

// UpdateOutcome is the result of PUT /pages/:slug. Exactly one field is set.
type UpdateOutcome struct {
	Page    *domain.PageMutation
	Pending *domain.PendingEditResult
}

// ParseSortOrder maps the sort query parameter; empty means recent
func ParseSortOrder(v string) (domain.SortOrder, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return domain.SortRecent, nil
	}
	order := domain.SortOrder(v)
	if !order.Valid() {
		return "", common.ErrInvalidSort
	}
	return order, nil
}

// ListVisiblePages lists the pages req may read
func (s *PageService) ListVisiblePages(ctx context.Context, req domain.Requester, order domain.SortOrder) ([]*domain.PageWithAuthor, error) {
	pages, err := s.pages.List(order, VisibilityScope(req))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if pages == nil {
		pages = []*domain.PageWithAuthor{}
	}
	return pages, nil
}

// GetVisiblePage returns a page if req may read it; otherwise ErrPageNotFound
func (s *PageService) GetVisiblePage(ctx context.Context, slugValue string, req domain.Requester) (*domain.PageWithAuthor, error) {
	page, err := s.pages.FindWithAuthor(slugValue, VisibilityScope(req))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrPageNotFound
		}
		return nil, fmt.Errorf("find page %s: %w", slugValue, err)
	}
	return page, nil
}

// ListRevisions returns a visible page's revision history, newest first
func (s *PageService) ListRevisions(ctx context.Context, slugValue string, req domain.Requester) ([]*domain.RevisionWithAuthor, error) {
	page, err := s.GetVisiblePage(ctx, slugValue, req)
	if err != nil {
		return nil, err
	}
	revs, err := s.revisions.ListByPage(page.ID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	if revs == nil {
		revs = []*domain.RevisionWithAuthor{}
	}
	return revs, nil
}

// CreatePage creates a page. Editors create unpublished pages while the approval workflow is on.
func (s *PageService) CreatePage(ctx context.Context, req domain.Requester, in domain.PageInput) (*domain.PageMutation, error) {
	if !CanCreate(req) {
		return nil, common.ErrEditorRequired
	}

	fields, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	pageSlug := strings.TrimSpace(in.Slug)
	if pageSlug == "" {
		pageSlug = slug.Make(fields.Title)
	}
	if pageSlug == "" {
		return nil, common.ErrPageFieldsMissing
	}
	if !slug.Valid(pageSlug) {
		return nil, common.ErrInvalidSlug
	}
	if slug.Reserved(pageSlug) {
		return nil, common.ErrReservedSlug
	}

	gated := s.gate.RequiresApproval(ctx, req.Role)
	authorID := req.UserID
	page := &domain.Page{
		Title:       fields.Title,
		Slug:        pageSlug,
		Content:     fields.Content,
		ContentType: fields.ContentType,
		Category:    fields.Category,
		AuthorID:    &authorID,
		IsPublished: !gated,
		IsPublic:    fields.IsPublic,
	}

	exists, err := s.pages.SlugExists(pageSlug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return nil, common.ErrSlugExists
	}
	if err := s.pages.WithTx(s.db.WithContext(ctx)).Create(page); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, common.ErrSlugExists
		}
		return nil, fmt.Errorf("create page: %w", err)
	}

	result := &domain.PageMutation{Page: page}
	if gated {
		pagesCreatedTotal.WithLabelValues("awaiting_approval").Inc()
		result.RequiresApproval = true
		result.Message = "Page created and awaiting admin approval"
		s.events.Publish(ctx, domain.ReviewEvent{
			Type:    domain.EventPagePending,
			Slug:    page.Slug,
			ActorID: req.UserID,
			Data:    map[string]interface{}{"title": page.Title},
			At:      time.Now(),
		})
	} else {
		pagesCreatedTotal.WithLabelValues("published").Inc()
	}

	logger.GetLogger().Info().
		Str("slug", page.Slug).
		Str("user_id", req.IDString()).
		Bool("published", page.IsPublished).
		Msg("page created")
	return result, nil
}

// UpdatePage applies a change directly, or queues it as a pending edit when the workflow gates req
func (s *PageService) UpdatePage(ctx context.Context, req domain.Requester, slugValue string, in domain.PageInput) (*UpdateOutcome, error) {
	if !CanCreate(req) {
		return nil, common.ErrEditorRequired
	}
	fields, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	if s.gate.RequiresApproval(ctx, req.Role) {
		pending, err := s.queueEdit(ctx, req, slugValue, fields)
		if err != nil {
			return nil, err
		}
		pageChangesTotal.WithLabelValues("queued").Inc()
		return &UpdateOutcome{Pending: pending}, nil
	}

	var updated *domain.Page
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := s.pages.WithTx(tx)
		page, err := pages.FindBySlugForUpdate(slugValue)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrPageNotFound
			}
			return err
		}
		if !CanEdit(page, req) {
			return common.ErrPageNotFound
		}

		authorID := req.UserID
		if err := s.revisions.WithTx(tx).Create(&domain.PageRevision{
			PageID:   page.ID,
			Title:    page.Title,
			Content:  page.Content,
			AuthorID: &authorID,
		}); err != nil {
			return fmt.Errorf("snapshot revision: %w", err)
		}
		if err := pages.UpdateContent(page.ID, fields); err != nil {
			return fmt.Errorf("update page: %w", err)
		}
		updated, err = pages.FindBySlug(slugValue)
		return err
	})
	if err != nil {
		return nil, err
	}

	pageChangesTotal.WithLabelValues("direct").Inc()
	return &UpdateOutcome{Page: &domain.PageMutation{Page: updated}}, nil
}

// queueEdit records fields as req's pending edit on the page, replacing any earlier pending proposal
func (s *PageService) queueEdit(ctx context.Context, req domain.Requester, slugValue string, fields repository.PageFields) (*domain.PendingEditResult, error) {
	var edit *domain.PendingPageEdit
	run := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			page, err := s.pages.WithTx(tx).FindBySlugForUpdate(slugValue)
			if err != nil {
				if repository.IsNotFound(err) {
					return common.ErrPageNotFound
				}
				return err
			}
			if !CanEdit(page, req) {
				return common.ErrPageNotFound
			}
			edit, err = upsertPendingEdit(s.edits.WithTx(tx), page.ID, req.UserID, fields)
			return err
		})
	}

	err := run()
	if repository.IsDuplicateKey(err) {
		// concurrent insert hit the one-pending-per-editor index; retry updates that row
		err = run()
	}
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, domain.ReviewEvent{
		Type:    domain.EventEditSubmitted,
		Slug:    slugValue,
		EditID:  edit.ID,
		ActorID: req.UserID,
		At:      time.Now(),
	})
	return &domain.PendingEditResult{
		PendingEdit:      edit,
		RequiresApproval: true,
		Message:          "Your changes have been submitted for admin approval",
	}, nil
}

// upsertPendingEdit must run inside a transaction that holds the page row lock
func upsertPendingEdit(edits repository.PendingEditRepository, pageID, editorID uint64, fields repository.PageFields) (*domain.PendingPageEdit, error) {
	now := time.Now()
	existing, err := edits.FindPending(pageID, editorID)
	switch {
	case err == nil:
		if err := edits.UpdateProposal(existing.ID, fields, now); err != nil {
			return nil, fmt.Errorf("update pending edit: %w", err)
		}
		return edits.FindByID(existing.ID)
	case repository.IsNotFound(err):
		edit := &domain.PendingPageEdit{
			PageID:      pageID,
			Title:       fields.Title,
			Content:     fields.Content,
			ContentType: fields.ContentType,
			Category:    fields.Category,
			IsPublic:    fields.IsPublic,
			EditorID:    editorID,
			Status:      domain.EditPending,
			CreatedAt:   now,
		}
		if err := edits.Create(edit); err != nil {
			return nil, err
		}
		return edit, nil
	default:
		return nil, fmt.Errorf("find pending edit: %w", err)
	}
}

// DeletePage removes a page with its revisions and pending edits
func (s *PageService) DeletePage(ctx context.Context, req domain.Requester, slugValue string) error {
	if !CanDelete(req) {
		return common.ErrAdminRequired
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := s.pages.WithTx(tx)
		page, err := pages.FindBySlugForUpdate(slugValue)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrPageNotFound
			}
			return err
		}
		return pages.Delete(page.ID)
	})
}

// Reorder sets a page's display_order
func (s *PageService) Reorder(ctx context.Context, req domain.Requester, slugValue string, order *int) (*domain.Page, error) {
	if !req.IsAdmin() {
		return nil, common.ErrAdminRequired
	}
	if order == nil || *order < 0 {
		return nil, common.ErrInvalidOrder
	}

	if _, err := s.pages.FindBySlug(slugValue); err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrPageNotFound
		}
		return nil, err
	}
	if _, err := s.pages.UpdateDisplayOrder(slugValue, *order); err != nil {
		return nil, fmt.Errorf("update display order: %w", err)
	}
	return s.pages.FindBySlug(slugValue)
}

// ListUnpublished returns pages waiting for an admin decision
func (s *PageService) ListUnpublished(ctx context.Context, req domain.Requester) ([]*domain.PageWithAuthor, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}
	pages, err := s.pages.ListUnpublished()
	if err != nil {
		return nil, fmt.Errorf("list unpublished: %w", err)
	}
	if pages == nil {
		pages = []*domain.PageWithAuthor{}
	}
	return pages, nil
}

// Publish makes an unpublished page visible
func (s *PageService) Publish(ctx context.Context, req domain.Requester, slugValue string) (*domain.Page, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}

	var published *domain.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := s.pages.WithTx(tx)
		page, err := pages.FindBySlugForUpdate(slugValue)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrPageNotFound
			}
			return err
		}
		if page.IsPublished {
			return common.ErrAlreadyPublished
		}
		if err := pages.Publish(page.ID); err != nil {
			return fmt.Errorf("publish page: %w", err)
		}
		published, err = pages.FindBySlug(slugValue)
		return err
	})
	if err != nil {
		return nil, err
	}

	reviewsTotal.WithLabelValues("page", "approved").Inc()
	event := domain.ReviewEvent{Type: domain.EventPagePublished, Slug: slugValue, ActorID: req.UserID, At: time.Now()}
	if published.AuthorID != nil {
		event.RecipientID = *published.AuthorID
	}
	s.events.Publish(ctx, event)
	return published, nil
}

// Reject deletes an unpublished page and records the rejection
func (s *PageService) Reject(ctx context.Context, req domain.Requester, slugValue, reason string) (*domain.PublishResult, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}

	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}

	var authorID *uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := s.pages.WithTx(tx)
		page, err := pages.FindBySlugForUpdate(slugValue)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrPageNotFound
			}
			return err
		}
		if page.IsPublished {
			return common.ErrAlreadyPublished
		}
		authorID = page.AuthorID

		if err := s.rejections.WithTx(tx).Create(&domain.PageRejection{
			PageSlug:   page.Slug,
			PageTitle:  page.Title,
			AuthorID:   page.AuthorID,
			RejectedBy: req.UserID,
			Reason:     reasonPtr,
		}); err != nil {
			return fmt.Errorf("record rejection: %w", err)
		}
		return pages.Delete(page.ID)
	})
	if err != nil {
		return nil, err
	}

	reviewsTotal.WithLabelValues("page", "rejected").Inc()
	event := domain.ReviewEvent{Type: domain.EventPageRejected, Slug: slugValue, ActorID: req.UserID, At: time.Now()}
	if authorID != nil {
		event.RecipientID = *authorID
	}
	if reasonPtr != nil {
		event.Data = map[string]interface{}{"reason": *reasonPtr}
	}
	s.events.Publish(ctx, event)

	return &domain.PublishResult{Message: "Page rejected and deleted", Slug: slugValue, Reason: reasonPtr}, nil
}

// ListRejections returns the most recent page rejections
func (s *PageService) ListRejections(ctx context.Context, req domain.Requester, limit int) ([]*domain.PageRejection, error) {
	if !CanReview(req) {
		return nil, common.ErrAdminRequired
	}
	rows, err := s.rejections.List(limit)
	if err != nil {
		return nil, fmt.Errorf("list rejections: %w", err)
	}
	if rows == nil {
		rows = []*domain.PageRejection{}
	}
	return rows, nil
}

// normalize validates the editable fields and sanitizes HTML bodies
func (s *PageService) normalize(in domain.PageInput) (repository.PageFields, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return repository.PageFields{}, common.ErrPageFieldsMissing
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return repository.PageFields{}, common.NewValidationError("title must be at most 255 characters")
	}

	ct, ok := domain.NormalizeContentType(in.ContentType)
	if !ok {
		return repository.PageFields{}, common.ErrInvalidContent
	}
	content := in.Content
	if ct == domain.ContentHTML {
		content = s.policy.Sanitize(content)
	}

	return repository.PageFields{
		Title:       title,
		Content:     content,
		ContentType: ct,
		Category:    in.NormalizedCategory(),
		IsPublic:    in.PublicFlag(),
	}, nil
}
