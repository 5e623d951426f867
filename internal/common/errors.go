package common

import (
	"errors"
	"net/http"
)

// Error kinds. Every business error wraps exactly one of these so handlers can map it to a status.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	// ErrExternal is an SMTP or webhook failure surfaced to an admin test request
	ErrExternal = errors.New("external dependency error")
)

// kindError attaches a kind to a client-facing message
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// NewValidationError creates an ad hoc validation error with a client-safe message
func NewValidationError(msg string) error {
	return newKind(ErrValidation, msg)
}

// NewExternalError reports a failed outbound call. The cause text is shown to the admin who ran the test.
func NewExternalError(prefix string, cause error) error {
	return newKind(ErrExternal, prefix+": "+cause.Error())
}

// Business logic errors
var (
	// Auth errors
	ErrInvalidCredentials = newKind(ErrUnauthorized, "invalid username or password")
	ErrAuthRequired       = newKind(ErrUnauthorized, "authentication required")

	// Permission errors
	ErrEditorRequired = newKind(ErrForbidden, "editor or admin role required")
	ErrAdminRequired  = newKind(ErrForbidden, "admin role required")
	ErrSelfRoleChange = newKind(ErrForbidden, "you cannot change your own role")
	ErrSelfDelete     = newKind(ErrForbidden, "you cannot delete your own account")
	ErrLastAdmin      = newKind(ErrForbidden, "cannot remove the last admin")
	ErrNotEditOwner   = newKind(ErrForbidden, "you can only access your own pending edits")

	// Page errors
	ErrPageNotFound      = newKind(ErrNotFound, "page not found")
	ErrSlugExists        = newKind(ErrConflict, "slug already exists")
	ErrInvalidSlug       = newKind(ErrValidation, "slug must contain only lowercase letters, numbers and single hyphens")
	ErrReservedSlug      = newKind(ErrValidation, "slug is reserved")
	ErrPageFieldsMissing = newKind(ErrValidation, "title, slug and content are required")
	ErrInvalidContent    = newKind(ErrValidation, "content_type must be markdown or html")
	ErrAlreadyPublished  = newKind(ErrValidation, "page is already published")
	ErrInvalidOrder      = newKind(ErrValidation, "display_order must be a non-negative number")
	ErrInvalidSort       = newKind(ErrValidation, "unknown sort order")

	// Pending edit errors
	ErrEditNotFound   = newKind(ErrNotFound, "pending edit not found")
	ErrEditNotPending = newKind(ErrNotFound, "pending edit not found or already reviewed")
	ErrAdminEditsLive = newKind(ErrValidation, "admins edit pages directly")

	// User errors
	ErrUserNotFound     = newKind(ErrNotFound, "user not found")
	ErrUserExists       = newKind(ErrConflict, "a user with this username or email already exists")
	ErrInvalidRole      = newKind(ErrValidation, "role must be viewer, editor or admin")
	ErrUserFieldMissing = newKind(ErrValidation, "username, email and password are required")
	ErrWeakPassword     = newKind(ErrValidation, "password must be at least 6 characters")
	ErrInvalidEmail     = newKind(ErrValidation, "invalid email address")

	// Invitation errors
	ErrInvitationExists   = newKind(ErrConflict, "an active invitation already exists for this email")
	ErrInvitationNotFound = newKind(ErrNotFound, "invitation not found")
	ErrInvitationInvalid  = newKind(ErrNotFound, "invalid or expired invitation")
	ErrInvitationRequired = newKind(ErrValidation, "an invitation token is required to register")
	ErrInvitationMismatch = newKind(ErrValidation, "email does not match the invitation")
	ErrInvalidMethod      = newKind(ErrValidation, "method must be link, smtp or webhook")

	// Setting errors
	ErrSettingNotFound       = newKind(ErrNotFound, "setting not found")
	ErrSettingNotPublic      = newKind(ErrForbidden, "setting is not public")
	ErrInvalidSettingValue   = newKind(ErrValidation, "invalid value for setting")
	ErrInvalidSettingKey     = newKind(ErrValidation, "invalid setting key")
	ErrEncryptionUnavailable = newKind(ErrValidation, "settings encryption key is not configured")
	ErrWebhookURLRequired    = newKind(ErrValidation, "webhook url is required")
	ErrWebhookURLBlocked     = newKind(ErrValidation, "webhook url must be a public http or https address")

	// Search errors
	ErrQueryRequired = newKind(ErrValidation, "search query is required")
)

// StatusFromError maps an error kind to an HTTP status
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrExternal):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show to a client
func ClientMessage(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return "Internal server error"
}
