package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/pkg/mailer"
)

var (
	errSMTPNotConfigured    = errors.New("SMTP is not configured")
	errWebhookNotConfigured = errors.New("webhook URL is not configured")
)

// InvitationNotifier delivers an invitation link to the invitee
type InvitationNotifier interface {
	Notify(ctx context.Context, method domain.NotifyMethod, inv *domain.Invitation, link string) error
}

// Notifier sends invitations through the SMTP and webhook channels configured in settings
type Notifier struct {
	settings *SettingsService
}

// NewNotifier creates a new Notifier
func NewNotifier(settings *SettingsService) *Notifier {
	return &Notifier{settings: settings}
}

// Notify sends through method. The link method sends nothing.
func (n *Notifier) Notify(ctx context.Context, method domain.NotifyMethod, inv *domain.Invitation, link string) error {
	switch method {
	case domain.NotifySMTP:
		return n.sendMail(ctx, inv, link)
	case domain.NotifyWebhook:
		return n.sendWebhook(ctx, inv, link)
	default:
		return nil
	}
}

func (n *Notifier) sendMail(ctx context.Context, inv *domain.Invitation, link string) error {
	cfg, err := n.settings.SMTPConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Host == "" || cfg.From == "" {
		return errSMTPNotConfigured
	}

	body := fmt.Sprintf(
		"You have been invited to join the wiki as %s.\r\n\r\n"+
			"Create your account here:\r\n%s\r\n\r\n"+
			"This invitation expires on %s.\r\n",
		inv.Role, link, inv.ExpiresAt.UTC().Format(time.RFC1123),
	)
	return n.settings.mail.Send(ctx, cfg, mailer.Message{
		To:      []string{inv.Email},
		Subject: "You're invited to the wiki",
		Body:    body,
	})
}

func (n *Notifier) sendWebhook(ctx context.Context, inv *domain.Invitation, link string) error {
	url, headers, err := n.settings.WebhookTarget(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		return errWebhookNotConfigured
	}

	payload := map[string]interface{}{
		"event":           domain.EventInvitationCreated,
		"email":           inv.Email,
		"role":            inv.Role,
		"invitation_link": link,
		"expires_at":      inv.ExpiresAt.UTC().Format(time.RFC3339),
	}
	_, err = n.settings.webhook.Post(ctx, url, headers, payload)
	return err
}
