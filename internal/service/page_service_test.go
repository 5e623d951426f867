package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePage_WorkflowOff_EditorPublishes(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)

	res := e.createPage(t, editor, "X", "x", false)

	assert.True(t, res.IsPublished)
	assert.False(t, res.RequiresApproval)
	assert.False(t, res.IsPublic)
	assert.Equal(t, domain.ContentMarkdown, res.ContentType)
	require.NotNil(t, res.AuthorID)
	assert.Equal(t, editor.UserID, *res.AuthorID)

	var pending int64
	require.NoError(t, e.db.Model(&domain.PendingPageEdit{}).Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestCreatePage_WorkflowOn_EditorNeedsApproval(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.setWorkflow(t, true)

	res := e.createPage(t, editor, "Y", "y", false)
	assert.False(t, res.IsPublished)
	assert.True(t, res.RequiresApproval)
	assert.Contains(t, e.events.types(), domain.EventPagePending)

	unpublished, err := e.pageSvc.ListUnpublished(ctx, admin)
	require.NoError(t, err)
	require.Len(t, unpublished, 1)
	assert.Equal(t, "y", unpublished[0].Slug)
	require.NotNil(t, unpublished[0].AuthorName)
	assert.Equal(t, "ed", *unpublished[0].AuthorName)

	published, err := e.pageSvc.Publish(ctx, admin, "y")
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	_, err = e.pageSvc.Publish(ctx, admin, "y")
	assert.ErrorIs(t, err, common.ErrAlreadyPublished)
	assert.Equal(t, http.StatusBadRequest, common.StatusFromError(err))
}

func TestCreatePage_AdminBypassesWorkflow(t *testing.T) {
	e := newTestEnv(t)
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	e.setWorkflow(t, true)

	res := e.createPage(t, admin, "Admin Page", "", true)
	assert.True(t, res.IsPublished)
	assert.False(t, res.RequiresApproval)
	assert.Equal(t, "admin-page", res.Slug)
}

func TestCreatePage_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	editor := e.addUser(t, "ed", domain.RoleEditor)
	viewer := e.addUser(t, "viewer", domain.RoleViewer)

	tests := []struct {
		name string
		req  domain.Requester
		in   domain.PageInput
		want error
	}{
		{"viewer", viewer, domain.PageInput{Title: "A", Content: "c"}, common.ErrEditorRequired},
		{"anonymous", domain.Anonymous(), domain.PageInput{Title: "A", Content: "c"}, common.ErrEditorRequired},
		{"missing title", editor, domain.PageInput{Content: "c"}, common.ErrPageFieldsMissing},
		{"missing content", editor, domain.PageInput{Title: "A"}, common.ErrPageFieldsMissing},
		{"bad slug", editor, domain.PageInput{Title: "A", Slug: "Not A Slug", Content: "c"}, common.ErrInvalidSlug},
		{"reserved slug", editor, domain.PageInput{Title: "A", Slug: "rejections", Content: "c"}, common.ErrReservedSlug},
		{"bad content type", editor, domain.PageInput{Title: "A", Content: "c", ContentType: "rtf"}, common.ErrInvalidContent},
		{"unsluggable title", editor, domain.PageInput{Title: "!!!", Content: "c"}, common.ErrPageFieldsMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.pageSvc.CreatePage(ctx, tt.req, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreatePage_DuplicateSlugConflicts(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.createPage(t, editor, "Dup", "dup", false)

	_, err := e.pageSvc.CreatePage(context.Background(), editor, domain.PageInput{Title: "Dup", Slug: "dup", Content: "c"})
	assert.ErrorIs(t, err, common.ErrSlugExists)
	assert.Equal(t, http.StatusConflict, common.StatusFromError(err))
}

func TestCreatePage_SanitizesHTML(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)

	res, err := e.pageSvc.CreatePage(context.Background(), editor, domain.PageInput{
		Title:       "Html",
		Content:     `<p onclick="x()">hi</p><script>alert(1)</script>`,
		ContentType: "wysiwyg",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentHTML, res.ContentType)
	assert.NotContains(t, res.Content, "script")
	assert.NotContains(t, res.Content, "onclick")
	assert.Contains(t, res.Content, "<p>hi</p>")
}

func TestCreatePage_MarkdownKeptVerbatim(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)

	body := "# Title\n\n<b>raw</b>"
	res, err := e.pageSvc.CreatePage(context.Background(), editor, domain.PageInput{Title: "Md", Content: body})
	require.NoError(t, err)
	assert.Equal(t, body, res.Content)
}

func TestUpdatePage_DirectWritesRevision(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.createPage(t, editor, "Doc", "doc", false)

	cat := " Guides "
	out, err := e.pageSvc.UpdatePage(ctx, editor, "doc", domain.PageInput{
		Title:    "Doc v2",
		Content:  "new body",
		Category: &cat,
		IsPublic: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Page)
	assert.Nil(t, out.Pending)
	assert.Equal(t, "Doc v2", out.Page.Title)
	assert.Equal(t, "doc", out.Page.Slug)
	assert.True(t, out.Page.IsPublic)
	require.NotNil(t, out.Page.Category)
	assert.Equal(t, "Guides", *out.Page.Category)

	revs, err := e.pageSvc.ListRevisions(ctx, "doc", editor)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, "Doc", revs[0].Title)
	assert.Equal(t, "content of Doc", revs[0].Content)
	require.NotNil(t, revs[0].AuthorID)
	assert.Equal(t, editor.UserID, *revs[0].AuthorID)
}

func TestUpdatePage_Gated(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.createPage(t, admin, "Stable", "stable", true)

	before, err := e.pages.FindBySlug("stable")
	require.NoError(t, err)

	e.setWorkflow(t, true)

	out, err := e.pageSvc.UpdatePage(ctx, editor, "stable", domain.PageInput{Title: "Proposal 1", Content: "first"})
	require.NoError(t, err)
	require.NotNil(t, out.Pending)
	assert.Nil(t, out.Page)
	assert.True(t, out.Pending.RequiresApproval)
	firstID := out.Pending.PendingEdit.ID

	after, err := e.pages.FindBySlug("stable")
	require.NoError(t, err)
	assert.Equal(t, before, after, "gated update must not touch the page row")

	count, err := e.revisions.CountByPage(before.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// a second proposal replaces the first
	out, err = e.pageSvc.UpdatePage(ctx, editor, "stable", domain.PageInput{Title: "Proposal 2", Content: "second"})
	require.NoError(t, err)
	assert.Equal(t, firstID, out.Pending.PendingEdit.ID)
	assert.Equal(t, "Proposal 2", out.Pending.PendingEdit.Title)

	pending, err := e.edits.CountByPage(before.ID, domain.EditPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
	assert.Contains(t, e.events.types(), domain.EventEditSubmitted)
}

func TestUpdatePage_AdminIgnoresWorkflow(t *testing.T) {
	e := newTestEnv(t)
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	e.createPage(t, admin, "P", "p", false)
	e.setWorkflow(t, true)

	out, err := e.pageSvc.UpdatePage(context.Background(), admin, "p", domain.PageInput{Title: "P2", Content: "b"})
	require.NoError(t, err)
	require.NotNil(t, out.Page)
	assert.Equal(t, "P2", out.Page.Title)
}

func TestUpdatePage_Missing(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)

	_, err := e.pageSvc.UpdatePage(context.Background(), editor, "nope", domain.PageInput{Title: "T", Content: "c"})
	assert.ErrorIs(t, err, common.ErrPageNotFound)

	e.setWorkflow(t, true)
	_, err = e.pageSvc.UpdatePage(context.Background(), editor, "nope", domain.PageInput{Title: "T", Content: "c"})
	assert.ErrorIs(t, err, common.ErrPageNotFound)
}

func TestUpdatePage_EditorCannotSeeOthersDraft(t *testing.T) {
	e := newTestEnv(t)
	author := e.addUser(t, "author", domain.RoleEditor)
	other := e.addUser(t, "other", domain.RoleEditor)
	e.setWorkflow(t, true)
	e.createPage(t, author, "Draft", "draft", false)
	e.setWorkflow(t, false)

	_, err := e.pageSvc.UpdatePage(context.Background(), other, "draft", domain.PageInput{Title: "T", Content: "c"})
	assert.ErrorIs(t, err, common.ErrPageNotFound)
}

func TestReject_DeletesAndRecords(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.setWorkflow(t, true)
	e.createPage(t, editor, "Spam", "spam", false)

	res, err := e.pageSvc.Reject(ctx, admin, "spam", "  off topic ")
	require.NoError(t, err)
	require.NotNil(t, res.Reason)
	assert.Equal(t, "off topic", *res.Reason)

	_, err = e.pages.FindBySlug("spam")
	assert.Error(t, err)

	rows, err := e.pageSvc.ListRejections(ctx, admin, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "spam", rows[0].PageSlug)
	assert.Equal(t, admin.UserID, rows[0].RejectedBy)
	assert.Contains(t, e.events.types(), domain.EventPageRejected)
}

func TestReject_PublishedPageRefused(t *testing.T) {
	e := newTestEnv(t)
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	e.createPage(t, admin, "Live", "live", true)

	_, err := e.pageSvc.Reject(context.Background(), admin, "live", "")
	assert.ErrorIs(t, err, common.ErrAlreadyPublished)

	_, err = e.pageSvc.Reject(context.Background(), admin, "ghost", "")
	assert.ErrorIs(t, err, common.ErrPageNotFound)
}

func TestReviewActionsRequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	editor := e.addUser(t, "ed", domain.RoleEditor)

	_, err := e.pageSvc.Publish(ctx, editor, "x")
	assert.ErrorIs(t, err, common.ErrAdminRequired)
	_, err = e.pageSvc.Reject(ctx, editor, "x", "")
	assert.ErrorIs(t, err, common.ErrAdminRequired)
	assert.ErrorIs(t, e.pageSvc.DeletePage(ctx, editor, "x"), common.ErrAdminRequired)
	_, err = e.pageSvc.ListUnpublished(ctx, editor)
	assert.ErrorIs(t, err, common.ErrAdminRequired)
	assert.Equal(t, http.StatusForbidden, common.StatusFromError(err))
}

func TestDeletePage_RemovesRevisionsAndEdits(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	editor := e.addUser(t, "ed", domain.RoleEditor)
	e.createPage(t, admin, "Gone", "gone", true)

	_, err := e.pageSvc.UpdatePage(ctx, admin, "gone", domain.PageInput{Title: "Gone 2", Content: "b"})
	require.NoError(t, err)
	e.setWorkflow(t, true)
	_, err = e.pageSvc.UpdatePage(ctx, editor, "gone", domain.PageInput{Title: "Gone 3", Content: "c"})
	require.NoError(t, err)

	page, err := e.pages.FindBySlug("gone")
	require.NoError(t, err)

	require.NoError(t, e.pageSvc.DeletePage(ctx, admin, "gone"))

	var revs, edits int64
	require.NoError(t, e.db.Model(&domain.PageRevision{}).Where("page_id = ?", page.ID).Count(&revs).Error)
	require.NoError(t, e.db.Model(&domain.PendingPageEdit{}).Where("page_id = ?", page.ID).Count(&edits).Error)
	assert.Zero(t, revs)
	assert.Zero(t, edits)

	assert.ErrorIs(t, e.pageSvc.DeletePage(ctx, admin, "gone"), common.ErrPageNotFound)
}

func TestReorder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin", domain.RoleAdmin)
	e.createPage(t, admin, "B", "b", true)
	e.createPage(t, admin, "A", "a", true)

	order := func(n int) *int { return &n }

	page, err := e.pageSvc.Reorder(ctx, admin, "a", order(5))
	require.NoError(t, err)
	assert.Equal(t, 5, page.DisplayOrder)

	_, err = e.pageSvc.Reorder(ctx, admin, "a", order(-1))
	assert.ErrorIs(t, err, common.ErrInvalidOrder)
	_, err = e.pageSvc.Reorder(ctx, admin, "a", nil)
	assert.ErrorIs(t, err, common.ErrInvalidOrder)
	_, err = e.pageSvc.Reorder(ctx, admin, "zzz", order(1))
	assert.ErrorIs(t, err, common.ErrPageNotFound)

	pages, err := e.pageSvc.ListVisiblePages(ctx, admin, domain.SortCustom)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "b", pages[0].Slug)
	assert.Equal(t, "a", pages[1].Slug)
}

func TestListVisiblePages_SortOrders(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	zed := e.addUser(t, "zed", domain.RoleAdmin)
	amy := e.addUser(t, "amy", domain.RoleEditor)

	cat := "Alpha"
	_, err := e.pageSvc.CreatePage(ctx, zed, domain.PageInput{Title: "Charlie", Content: "c", Category: &cat})
	require.NoError(t, err)
	e.createPage(t, amy, "Bravo", "", true)
	e.createPage(t, zed, "Able", "", true)

	slugs := func(order domain.SortOrder) []string {
		pages, err := e.pageSvc.ListVisiblePages(ctx, zed, order)
		require.NoError(t, err)
		var out []string
		for _, p := range pages {
			out = append(out, p.Slug)
		}
		return out
	}

	assert.Equal(t, []string{"able", "bravo", "charlie"}, slugs(domain.SortAlphabetical))
	assert.Equal(t, "charlie", slugs(domain.SortCategory)[0])
	assert.Equal(t, "bravo", slugs(domain.SortCreator)[0])
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRecent, order)

	order, err = ParseSortOrder(" Alphabetical ")
	require.NoError(t, err)
	assert.Equal(t, domain.SortAlphabetical, order)

	_, err = ParseSortOrder("random")
	assert.ErrorIs(t, err, common.ErrInvalidSort)
}

func TestCreatePage_LongTitle(t *testing.T) {
	e := newTestEnv(t)
	editor := e.addUser(t, "ed", domain.RoleEditor)

	_, err := e.pageSvc.CreatePage(context.Background(), editor, domain.PageInput{
		Title:   strings.Repeat("a", maxTitleLength+1),
		Slug:    "long",
		Content: "c",
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}
