package domain

import "time"

// InvitationTTL is how long an invitation stays redeemable
const InvitationTTL = 7 * 24 * time.Hour

// NotifyMethod selects how an invitation reaches the invitee
type NotifyMethod string

const (
	NotifyLink    NotifyMethod = "link"
	NotifySMTP    NotifyMethod = "smtp"
	NotifyWebhook NotifyMethod = "webhook"
)

func (m NotifyMethod) Valid() bool {
	switch m {
	case NotifyLink, NotifySMTP, NotifyWebhook:
		return true
	}
	return false
}

// Invitation binds an email to a role until redeemed or expired
type Invitation struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Token     string     `gorm:"column:token;type:varchar(64);uniqueIndex;not null" json:"token"`
	Role      Role       `gorm:"column:role;type:varchar(20);not null" json:"role"`
	InvitedBy *uint64    `gorm:"column:invited_by" json:"invited_by"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	Used      bool       `gorm:"column:used;not null" json:"used"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at"`
}

func (Invitation) TableName() string { return "invitations" }

// Active reports whether the invitation can still be redeemed at now
func (i *Invitation) Active(now time.Time) bool {
	return !i.Used && i.ExpiresAt.After(now)
}

// InvitationView adds the inviter's username
type InvitationView struct {
	Invitation
	InvitedByName *string `gorm:"column:invited_by_name" json:"invited_by_name"`
}

// CreateInvitationRequest is the admin payload for a new invitation
type CreateInvitationRequest struct {
	Email  string       `json:"email" binding:"required"`
	Role   Role         `json:"role"`
	Method NotifyMethod `json:"method"`
}

// InvitationResult is returned after creating an invitation. Notification
// failures are reported here rather than failing the request.
type InvitationResult struct {
	Invitation        *Invitation  `json:"invitation"`
	InvitationLink    string       `json:"invitation_link"`
	Method            NotifyMethod `json:"method"`
	NotificationSent  bool         `json:"notification_sent"`
	NotificationError *string      `json:"notification_error"`
	Message           string       `json:"message"`
}

// InvitationCheck is the public result of validating a token
type InvitationCheck struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
