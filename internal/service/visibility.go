package service

import (
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"gorm.io/gorm"
)

// Read visibility:
//
//	anonymous  is_published AND is_public
//	viewer     is_published
//	editor     is_published OR author_id = self
//	admin      everything
//
// VisibilityScope and CanView must agree; the tests check both against the same fixtures.

// VisibilityScope restricts a pages query to rows req may read
func VisibilityScope(req domain.Requester) repository.Scope {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case !req.Authenticated:
			return db.Where("pages.is_published = ? AND pages.is_public = ?", true, true)
		case req.Role == domain.RoleAdmin:
			return db
		case req.Role == domain.RoleEditor:
			return db.Where("(pages.is_published = ? OR pages.author_id = ?)", true, req.UserID)
		default:
			return db.Where("pages.is_published = ?", true)
		}
	}
}

// CanView reports whether req may read page
func CanView(page *domain.Page, req domain.Requester) bool {
	if page == nil {
		return false
	}
	switch {
	case !req.Authenticated:
		return page.IsPublished && page.IsPublic
	case req.Role == domain.RoleAdmin:
		return true
	case req.Role == domain.RoleEditor:
		return page.IsPublished || page.OwnedBy(req.UserID)
	default:
		return page.IsPublished
	}
}

// CanCreate reports whether req may create pages
func CanCreate(req domain.Requester) bool {
	return req.Authenticated && req.Role.CanWrite()
}

// CanEdit reports whether req may change page, directly or through review
func CanEdit(page *domain.Page, req domain.Requester) bool {
	return CanCreate(req) && CanView(page, req)
}

// CanDelete reports whether req may delete pages
func CanDelete(req domain.Requester) bool {
	return req.IsAdmin()
}

// CanReview reports whether req may publish, reject and approve
func CanReview(req domain.Requester) bool {
	return req.IsAdmin()
}

// CanManageUsers reports whether req may manage accounts, invitations and settings
func CanManageUsers(req domain.Requester) bool {
	return req.IsAdmin()
}

// searchPublicOnly reports whether search must be limited to public pages
func searchPublicOnly(req domain.Requester) bool {
	return !req.Authenticated
}
