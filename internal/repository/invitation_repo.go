package repository

import (
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// InvitationRepository invitation data access
type InvitationRepository interface {
	WithTx(tx *gorm.DB) InvitationRepository

	Create(inv *domain.Invitation) error
	FindByEmail(email string) (*domain.Invitation, error)
	FindActiveByToken(token string, now time.Time) (*domain.Invitation, error)
	List() ([]*domain.InvitationView, error)
	Delete(id uint64) (int64, error)
	// Consume marks an active invitation used. It affects one row at most once per token.
	Consume(token, email string, now time.Time) (int64, error)
	// PurgeExpired deletes unused invitations that expired before cutoff
	PurgeExpired(cutoff time.Time) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) WithTx(tx *gorm.DB) InvitationRepository {
	return &invitationRepository{db: tx}
}

func (r *invitationRepository) Create(inv *domain.Invitation) error {
	return r.db.Create(inv).Error
}

func (r *invitationRepository) FindByEmail(email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := forUpdate(r.db).Where("email = ?", email).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) FindActiveByToken(token string, now time.Time) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.
		Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) List() ([]*domain.InvitationView, error) {
	var rows []*domain.InvitationView
	err := r.db.Model(&domain.Invitation{}).
		Select("invitations.*, users.username AS invited_by_name").
		Joins("LEFT JOIN users ON users.id = invitations.invited_by").
		Order("invitations.created_at DESC, invitations.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *invitationRepository) Delete(id uint64) (int64, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.Invitation{})
	return res.RowsAffected, res.Error
}

func (r *invitationRepository) Consume(token, email string, now time.Time) (int64, error) {
	res := r.db.Model(&domain.Invitation{}).
		Where("token = ? AND email = ? AND used = ? AND expires_at > ?", token, email, false, now).
		Updates(map[string]interface{}{"used": true, "used_at": now})
	return res.RowsAffected, res.Error
}

func (r *invitationRepository) PurgeExpired(cutoff time.Time) (int64, error) {
	res := r.db.
		Where("used = ? AND expires_at < ?", false, cutoff).
		Delete(&domain.Invitation{})
	return res.RowsAffected, res.Error
}
