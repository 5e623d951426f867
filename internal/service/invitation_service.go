package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/logger"
	"gorm.io/gorm"
)

const (
	invitationTokenBytes       = 32
	defaultNotificationTimeout = 10 * time.Second
)

var errNotificationTimeout = errors.New("notification timed out")

// InvitationService issues, validates and redeems invitations
type InvitationService struct {
	db          *gorm.DB
	invitations repository.InvitationRepository
	users       repository.UserRepository
	notifier    InvitationNotifier
	events      EventPublisher
	baseURL     string
	timeout     time.Duration
	now         func() time.Time
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	db *gorm.DB,
	invitations repository.InvitationRepository,
	users repository.UserRepository,
	notifier InvitationNotifier,
	baseURL string,
	timeout time.Duration,
) *InvitationService {
	if timeout <= 0 {
		timeout = defaultNotificationTimeout
	}
	return &InvitationService{
		db:          db,
		invitations: invitations,
		users:       users,
		notifier:    notifier,
		events:      nopPublisher{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		now:         time.Now,
	}
}

// SetEventPublisher sets where review events are sent
func (s *InvitationService) SetEventPublisher(p EventPublisher) {
	if p != nil {
		s.events = p
	}
}

// NormalizeEmail trims and lowercases an address and checks its format
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

// Create issues an invitation. It is committed before any notification is attempted,
// and a notification failure is reported in the result instead of failing the call.
func (s *InvitationService) Create(ctx context.Context, req domain.Requester, in domain.CreateInvitationRequest) (*domain.InvitationResult, error) {
	if !CanManageUsers(req) {
		return nil, common.ErrAdminRequired
	}

	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleViewer
	}
	if !role.Valid() {
		return nil, common.ErrInvalidRole
	}
	method := in.Method
	if method == "" {
		method = domain.NotifyLink
	}
	if !method.Valid() {
		return nil, common.ErrInvalidMethod
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	inviter := req.UserID
	inv := &domain.Invitation{
		Email:     email,
		Token:     token,
		Role:      role,
		InvitedBy: &inviter,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.InvitationTTL),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.users.WithTx(tx).ExistsByEmail(email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrUserExists
		}

		invitations := s.invitations.WithTx(tx)
		prev, err := invitations.FindByEmail(email)
		switch {
		case err == nil:
			if prev.Active(now) {
				return common.ErrInvitationExists
			}
			// email is unique, so a spent or expired invitation makes way for the new one
			if _, err := invitations.Delete(prev.ID); err != nil {
				return err
			}
		case !repository.IsNotFound(err):
			return err
		}
		return invitations.Create(inv)
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, common.ErrInvitationExists
		}
		return nil, err
	}

	invitationsIssuedTotal.WithLabelValues(string(method)).Inc()
	link := s.baseURL + "/register?token=" + token
	result := &domain.InvitationResult{
		Invitation:     inv,
		InvitationLink: link,
		Method:         method,
		Message:        "Invitation created successfully",
	}

	if method != domain.NotifyLink {
		if err := s.notify(ctx, method, inv, link); err != nil {
			notificationFailuresTotal.WithLabelValues(string(method)).Inc()
			msg := notificationLabel(method, err)
			result.NotificationError = &msg
			result.Message = "Invitation created, but the notification could not be sent. Share the link manually."
			logger.GetLogger().Warn().Err(err).Str("method", string(method)).Uint64("invitation_id", inv.ID).Msg("invitation notification failed")
		} else {
			result.NotificationSent = true
			result.Message = "Invitation created and sent successfully"
		}
	}

	s.events.Publish(ctx, domain.ReviewEvent{
		Type:    domain.EventInvitationCreated,
		ActorID: req.UserID,
		Data:    map[string]interface{}{"email": email, "role": role},
		At:      now,
	})
	return result, nil
}

// notify runs the notifier with a fixed deadline that is independent of the request's cancellation
func (s *InvitationService) notify(ctx context.Context, method domain.NotifyMethod, inv *domain.Invitation, link string) error {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.notifier.Notify(nctx, method, inv, link)
	}()

	select {
	case err := <-done:
		return err
	case <-nctx.Done():
		return fmt.Errorf("%w after %s", errNotificationTimeout, s.timeout)
	}
}

// notificationLabel is the client-facing form of a notification failure.
// Transport details such as hosts and dial errors stay in the server log.
func notificationLabel(method domain.NotifyMethod, err error) string {
	channel := "SMTP"
	if method == domain.NotifyWebhook {
		channel = "Webhook"
	}
	switch {
	case errors.Is(err, errSMTPNotConfigured), errors.Is(err, errWebhookNotConfigured):
		return err.Error()
	case errors.Is(err, errNotificationTimeout):
		return channel + " delivery timed out"
	default:
		return channel + " delivery failed"
	}
}

// Validate returns the email and role bound to an unused, unexpired token
func (s *InvitationService) Validate(ctx context.Context, token string) (*domain.InvitationCheck, error) {
	inv, err := s.invitations.FindActiveByToken(strings.TrimSpace(token), s.now())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrInvitationInvalid
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return &domain.InvitationCheck{Email: inv.Email, Role: inv.Role}, nil
}

// Redeem consumes token for email inside tx. Only one caller can succeed per token.
func (s *InvitationService) Redeem(tx *gorm.DB, token, email string) (*domain.Invitation, error) {
	invitations := s.invitations.WithTx(tx)
	now := s.now()

	inv, err := invitations.FindActiveByToken(strings.TrimSpace(token), now)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrInvitationInvalid
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv.Email != email {
		return nil, common.ErrInvitationMismatch
	}

	n, err := invitations.Consume(inv.Token, email, now)
	if err != nil {
		return nil, fmt.Errorf("consume invitation: %w", err)
	}
	if n != 1 {
		return nil, common.ErrInvitationInvalid
	}
	inv.Used = true
	inv.UsedAt = &now
	return inv, nil
}

// Revoke deletes an invitation
func (s *InvitationService) Revoke(ctx context.Context, req domain.Requester, id uint64) error {
	if !CanManageUsers(req) {
		return common.ErrAdminRequired
	}
	n, err := s.invitations.Delete(id)
	if err != nil {
		return fmt.Errorf("delete invitation %d: %w", id, err)
	}
	if n == 0 {
		return common.ErrInvitationNotFound
	}
	return nil
}

// List returns all invitations, newest first
func (s *InvitationService) List(ctx context.Context, req domain.Requester) ([]*domain.InvitationView, error) {
	if !CanManageUsers(req) {
		return nil, common.ErrAdminRequired
	}
	rows, err := s.invitations.List()
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if rows == nil {
		rows = []*domain.InvitationView{}
	}
	return rows, nil
}

// PurgeExpired deletes unused invitations that expired more than retain ago
func (s *InvitationService) PurgeExpired(ctx context.Context, retain time.Duration) (int64, error) {
	n, err := s.invitations.WithTx(s.db.WithContext(ctx)).PurgeExpired(s.now().Add(-retain))
	if err != nil {
		return 0, fmt.Errorf("purge invitations: %w", err)
	}
	invitationsPurgedTotal.Add(float64(n))
	return n, nil
}

func newInvitationToken() (string, error) {
	buf := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
