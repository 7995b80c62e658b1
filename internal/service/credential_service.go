package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"marketplace/internal/auth"
	"marketplace/internal/entity"
	"marketplace/internal/model"
	"marketplace/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// selfServiceRoles can be picked freely at registration.
var selfServiceRoles = []entity.Role{entity.RoleGuest, entity.RoleCustomer, entity.RoleSeller}

// CredentialService owns user records: registration, login checks and admin
// user management.
type CredentialService struct {
	repo       model.Repository
	storage    storage.Storage
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialService creates the service. store is used to clean up the
// media of products removed along with a user and may be nil. bcryptCost
// outside bcrypt's range falls back to the library default.
func NewCredentialService(repo model.Repository, store storage.Storage, bcryptCost int) *CredentialService {
	return &CredentialService{repo: repo, storage: store, bcryptCost: bcryptCost}
}

// RegisterInput is the normalised registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates an account. The admin role is only granted while the
// users table is empty.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*entity.DbUser, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if strings.Contains(username, "@") {
		return nil, fmt.Errorf("%w: username must not contain '@'", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
	}

	role := entity.RoleCustomer
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := entity.ParseRole(in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
		}
		role = parsed
	}
	if role == entity.RoleAdmin {
		count, err := s.repo.CountUsers(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: admin accounts cannot self-register", ErrForbidden)
		}
	} else if err := auth.Authorize(role, selfServiceRoles...); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if email != "" {
		if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
			return nil, ErrDuplicateIdentity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	hash, err := auth.HashPasswordWithCost(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if email != "" {
		user.Email = &email
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// A concurrent registration can slip past the lookups above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")
	return user, nil
}

// Authenticate checks a username-or-email and password pair. Unknown users
// and wrong passwords both return ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, identifier, password string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Burn the same bcrypt work as a real comparison.
		_ = auth.VerifyPassword(s.dummyPasswordHash(), password)
		logrus.WithField("identifier", identifier).Warn("login failed: unknown user")
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		logrus.WithField("user_id", user.ID).Warn("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func (s *CredentialService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPasswordWithCost("marketplace-dummy-password", s.bcryptCost)
		if err != nil {
			logrus.WithError(err).Error("failed to build dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// GetByID loads a user or returns ErrUserNotFound.
func (s *CredentialService) GetByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	return userOrNotFound(s.repo.GetUserByID(ctx, id))
}

// GetByEmail loads a user or returns ErrUserNotFound.
func (s *CredentialService) GetByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	return userOrNotFound(s.repo.GetUserByEmail(ctx, email))
}

// GetByUsername loads a user or returns ErrUserNotFound.
func (s *CredentialService) GetByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	return userOrNotFound(s.repo.GetUserByUsername(ctx, username))
}

func userOrNotFound(user *entity.DbUser, err error) (*entity.DbUser, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns one page of users. Admin only.
func (s *CredentialService) ListUsers(ctx context.Context, requester *entity.DbUser, query entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, nil, err
	}
	query.Normalize()
	return s.repo.ListUsers(ctx, &query)
}

// UpdateUser changes another user's role or active flag. Admin only.
func (s *CredentialService) UpdateUser(ctx context.Context, requester *entity.DbUser, id uint, req entity.UserUpdateRequest) (*entity.DbUser, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	var updates entity.UserUpdates
	if req.Role != nil {
		role, ok := entity.ParseRole(*req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *req.Role)
		}
		updates.Role = &role
	}
	updates.IsActive = req.IsActive

	if id == requester.ID {
		if updates.Role != nil && *updates.Role != entity.RoleAdmin {
			return nil, ErrCannotModifySelf
		}
		if updates.IsActive != nil && !*updates.IsActive {
			return nil, ErrCannotModifySelf
		}
	}

	if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"admin_id":  requester.ID,
		"user_id":   user.ID,
		"role":      user.Role,
		"is_active": user.IsActive,
	}).Info("user updated")
	return user, nil
}

// DeleteUser removes a user and the products they own. Admin only; admins
// cannot delete themselves.
func (s *CredentialService) DeleteUser(ctx context.Context, requester *entity.DbUser, id uint) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if id == requester.ID {
		return ErrCannotModifySelf
	}
	if id == 0 {
		return ErrUserNotFound
	}
	products, err := s.repo.ListProducts(ctx, &entity.ProductQuery{OwnerID: id})
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUserCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	var keys []string
	for idx := range products {
		keys = append(keys, products[idx].MediaPaths...)
	}
	removeMedia(ctx, s.storage, keys)

	logrus.WithFields(logrus.Fields{
		"admin_id": requester.ID,
		"user_id":  id,
		"products": len(products),
	}).Info("user deleted")
	return nil
}

func requireAdmin(requester *entity.DbUser) error {
	if requester == nil {
		return ErrForbidden
	}
	return auth.Authorize(requester.Role, entity.RoleAdmin)
}
