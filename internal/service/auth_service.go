package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/auth"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/damoang/angple-wiki/pkg/logger"
	"gorm.io/gorm"
)

// AuthService authentication business logic
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Me(ctx context.Context, userID uint64) (*domain.User, error)
	// EnsureAdmin creates the given admin account when no users exist yet
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

type authService struct {
	db          *gorm.DB
	users       repository.UserRepository
	invitations *InvitationService
	jwtManager  *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, users repository.UserRepository, invitations *InvitationService, jwtManager *jwt.Manager) AuthService {
	return &authService{
		db:          db,
		users:       users,
		invitations: invitations,
		jwtManager:  jwtManager,
	}
}

// Login verifies credentials and issues an access token
func (s *authService) Login(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	user, err := s.users.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Register creates an account. The very first account becomes admin; after that
// an invitation for the same email is required and fixes the role.
func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	user, err := newUser(req.Username, req.Email, req.Password, domain.RoleViewer)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		count, err := users.Count()
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}

		if count == 0 {
			user.Role = domain.RoleAdmin
		} else {
			if strings.TrimSpace(req.Token) == "" {
				return common.ErrInvitationRequired
			}
			inv, err := s.invitations.Redeem(tx, req.Token, user.Email)
			if err != nil {
				return err
			}
			user.Role = inv.Role
		}
		return createUser(users, user)
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

// Me returns the signed-in user
func (s *authService) Me(ctx context.Context, userID uint64) (*domain.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || email == "" || password == "" {
		return false, nil
	}
	user, err := newUser(username, email, password, domain.RoleAdmin)
	if err != nil {
		return false, err
	}

	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		count, err := users.Count()
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := createUser(users, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (s *authService) issue(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.jwtManager.GenerateToken(strconv.FormatUint(user.ID, 10), user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &domain.AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtManager.ExpiresIn().Seconds()),
		User:      user,
	}, nil
}
