package repository

import (
	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user data access
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository

	Create(user *domain.User) error
	FindByID(id uint64) (*domain.User, error)
	// FindByIDForUpdate locks the user row for the rest of the transaction
	FindByIDForUpdate(id uint64) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	List() ([]*domain.User, error)
	Count() (int64, error)
	// LockAdminIDs locks every admin row and returns their IDs
	LockAdminIDs() ([]uint64, error)
	UpdateRole(id uint64, role domain.Role) error
	Delete(id uint64) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(id uint64) (*domain.User, error) {
	var user domain.User
	if err := forUpdate(r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List() ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.Order("created_at DESC, id DESC").Find(&users).Error
	return users, err
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) LockAdminIDs() ([]uint64, error) {
	var admins []domain.User
	err := forUpdate(r.db).
		Select("id").
		Where("role = ?", domain.RoleAdmin).
		Order("id").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (r *userRepository) UpdateRole(id uint64, role domain.Role) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *userRepository) Delete(id uint64) (int64, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}
