package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/apperrors"
	"github.com/akovalyov/inkwell/internal/logger"
	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/repository"
	"github.com/akovalyov/inkwell/internal/service/auth/tokenmanager"
	"github.com/akovalyov/inkwell/internal/service/validate"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Logger for security events (token reuse)
	// No-op logger is used if not set
	Logger logger.Logger
}

type RegisterParams struct {
	Username string
	Email    string
	Password string

	// Requested role from untrusted input
	// Always forced to 'user': there is no self-escalation path at registration
	Role string
}

type AuthService struct {
	token  *tokenmanager.TokenManager
	hasher PasswordHasher
	logger logger.Logger

	userRepo repository.UserRepo

	// Hash compared against on unknown-identity logins
	// so both failure paths spend one bcrypt compare
	decoyHash string
}

func NewService(cfg Config, tm *tokenmanager.TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	decoyHash, err := hasher.Hash("inkwell-decoy-password")
	if err != nil {
		return nil, fmt.Errorf("error while preparing decoy hash. Err: %w", err)
	}

	return &AuthService{
		token:     tm,
		hasher:    hasher,
		logger:    log,
		userRepo:  userRepo,
		decoyHash: decoyHash,
	}, nil
}

// Register new user and issue the first token pair
// The stored role is always 'user' no matter what was requested
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	if err := validateRegistration(arg); err != nil {
		return models.User{}, pair, err
	}

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:       arg.Username,
		Email:          arg.Email,
		HashedPassword: hash,
		Role:           models.RoleUser,
	})
	if err != nil {
		return models.User{}, pair, err
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Login with username or email
// Unknown identity and wrong password are indistinguishable for the caller
func (s *AuthService) Login(ctx context.Context, usernameOrEmail string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.userRepo.GetUserByLogin(ctx, usernameOrEmail)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn a compare so the miss costs the same as a wrong password
		_ = s.hasher.Compare(s.decoyHash, password)
		return models.User{}, pair, apperrors.ErrInvalidCredentials
	default:
		return models.User{}, pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, pair, apperrors.ErrInvalidCredentials
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Refresh consumes the refresh token and issues a new pair (rotation)
// Reuse of an already consumed token is treated as a possible theft:
// every live session of the owner is revoked
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	token, err := s.token.UseRefresh(ctx, refresh)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRefreshTokenIsUsed):
		s.logger.Warn("refresh token reuse detected, revoking all user sessions", "user_id", token.UserID)
		if _, revokeErr := s.token.RevokeAllForUser(ctx, token.UserID); revokeErr != nil {
			s.logger.Error("failed to revoke user sessions after token reuse", "user_id", token.UserID, "error", revokeErr.Error())
		}
		return pair, err
	default:
		return pair, err
	}

	user, err := s.userRepo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return pair, fmt.Errorf("error while loading token owner. Err: %w", err)
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Logout revokes the single refresh token
// Already issued access tokens stay valid until their short expiry, that's accepted
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.token.RevokeRefresh(ctx, refresh)
	return err
}

// Authenticate validates the access token and returns the identity snapshot from its claims
// No storage lookups: the claims carry everything the middleware needs
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	claims, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// GetUser returns the fresh user record (used by /me, where claims may be stale)
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func validateRegistration(arg RegisterParams) error {
	if err := validate.Username(arg.Username); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if err := validate.Email(arg.Email); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if err := validate.Password(arg.Password); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	return nil
}
