package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/session"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/repository"
)

// UseCase owns registration, login, and the per-request identity resolution
// gate every protected endpoint goes through.
type UseCase struct {
	users  repository.UserRepository
	signer *session.Signer
	logger *zap.Logger
}

func New(users repository.UserRepository, signer *session.Signer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		signer: signer,
		logger: logger,
	}
}

// Register creates an identity with a freshly hashed password and issues a
// session token for it. The hash is computed exactly once, here.
func (uc *UseCase) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateRegistration(name, email, password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        domain.NormalizeEmail(email),
		PasswordHash: string(hash),
	}

	created, err := uc.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := uc.issue(created)
	if err != nil {
		return nil, "", err
	}

	logger.FromContext(ctx, uc.logger).Info("user registered", zap.String("user_id", created.ID))
	return created, token, nil
}

// Login verifies credentials against the stored hash. Unknown email and wrong
// password collapse to the same error so neither is probeable.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if err := domain.ValidateLogin(email, password); err != nil {
		return nil, "", err
	}

	user, err := uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.issue(user)
	if err != nil {
		return nil, "", err
	}

	logger.FromContext(ctx, uc.logger).Info("user logged in", zap.String("user_id", user.ID))
	return user, token, nil
}

// ResolveCurrentUser turns a presented token into a full identity record.
// Every failure mode (missing token, bad signature, expiry, identity deleted
// after issuance) collapses to ErrNotAuthenticated.
func (uc *UseCase) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	id, err := uc.signer.Verify(token)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := uc.users.GetByID(ctx, id.UserID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) issue(user *domain.User) (string, error) {
	token, err := uc.signer.Issue(session.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign session token", err)
	}
	return token, nil
}
