package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/auth"
	"github.com/damoang/angple-wiki/pkg/logger"
	"gorm.io/gorm"
)

// UserService account management for admins
type UserService interface {
	List(ctx context.Context, req domain.Requester) ([]*domain.User, error)
	Create(ctx context.Context, req domain.Requester, in domain.CreateUserRequest) (*domain.User, error)
	ChangeRole(ctx context.Context, req domain.Requester, targetID uint64, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, req domain.Requester, targetID uint64) error
}

type userService struct {
	db    *gorm.DB
	users repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, users repository.UserRepository) UserService {
	return &userService{db: db, users: users}
}

func (s *userService) List(ctx context.Context, req domain.Requester) ([]*domain.User, error) {
	if !CanManageUsers(req) {
		return nil, common.ErrAdminRequired
	}
	users, err := s.users.List()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, req domain.Requester, in domain.CreateUserRequest) (*domain.User, error) {
	if !CanManageUsers(req) {
		return nil, common.ErrAdminRequired
	}
	role := in.Role
	if role == "" {
		role = domain.RoleViewer
	}
	if !role.Valid() {
		return nil, common.ErrInvalidRole
	}

	user, err := newUser(in.Username, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	if err := createUser(s.users.WithTx(s.db.WithContext(ctx)), user); err != nil {
		return nil, err
	}

	logger.GetLogger().Info().Uint64("user_id", user.ID).Str("role", string(role)).Str("by", req.IDString()).Msg("user created")
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, req domain.Requester, targetID uint64, role domain.Role) (*domain.User, error) {
	if !CanManageUsers(req) {
		return nil, common.ErrAdminRequired
	}
	if !role.Valid() {
		return nil, common.ErrInvalidRole
	}
	if targetID == req.UserID {
		return nil, common.ErrSelfRoleChange
	}

	var updated *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		target, err := users.FindByIDForUpdate(targetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrUserNotFound
			}
			return err
		}
		if target.Role == domain.RoleAdmin && role != domain.RoleAdmin {
			if err := guardLastAdmin(users); err != nil {
				return err
			}
		}
		if err := users.UpdateRole(targetID, role); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		updated, err = users.FindByID(targetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info().Uint64("user_id", targetID).Str("role", string(role)).Str("by", req.IDString()).Msg("user role changed")
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, req domain.Requester, targetID uint64) error {
	if !CanManageUsers(req) {
		return common.ErrAdminRequired
	}
	if targetID == req.UserID {
		return common.ErrSelfDelete
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		target, err := users.FindByIDForUpdate(targetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return common.ErrUserNotFound
			}
			return err
		}
		if target.Role == domain.RoleAdmin {
			if err := guardLastAdmin(users); err != nil {
				return err
			}
		}
		n, err := users.Delete(targetID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n == 0 {
			return common.ErrUserNotFound
		}
		return nil
	})
}

// guardLastAdmin locks every admin row and refuses when removing one would leave none
func guardLastAdmin(users repository.UserRepository) error {
	ids, err := users.LockAdminIDs()
	if err != nil {
		return fmt.Errorf("lock admins: %w", err)
	}
	if len(ids) <= 1 {
		return common.ErrLastAdmin
	}
	return nil
}

// newUser validates account fields and hashes the password
func newUser(username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, common.ErrUserFieldMissing
	}
	if utf8.RuneCountInString(username) > 100 {
		return nil, common.NewValidationError("username must be at most 100 characters")
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &domain.User{
		Username:     username,
		Email:        normalized,
		PasswordHash: hash,
		Role:         role,
	}, nil
}

func createUser(users repository.UserRepository, user *domain.User) error {
	exists, err := users.ExistsByUsernameOrEmail(user.Username, user.Email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		return common.ErrUserExists
	}
	if err := users.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return common.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
