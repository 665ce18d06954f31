package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/credentials"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

const TokenTypeBearer = "bearer"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer issues and verifies signed bearer tokens whose subject is a username.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

type UseCase struct {
	users  repository.UserRepository
	cache  repository.IdentityCache
	hasher PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger

	// dummyHash is verified against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// New builds the auth use case. cache may be nil.
func New(users repository.UserRepository, cache repository.IdentityCache, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:  users,
		cache:  cache,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
	if hash, err := hasher.Hash("timing-equaliser"); err == nil {
		uc.dummyHash = hash
	}
	return uc
}

// Register creates a user with a hashed password.
func (uc *UseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.Invalid("username is required")
	}
	if password == "" {
		return nil, domain.Invalid("password is required")
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		if credentials.IsTooLong(err) {
			return nil, domain.Invalid("password is too long")
		}
		return nil, err
	}

	user := &domain.User{Username: username, HashedPassword: hash}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (uc *UseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if uc.dummyHash != "" {
				uc.hasher.Verify(password, uc.dummyHash)
			}
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !uc.hasher.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues an access token for the user.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := uc.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	access, expiresAt, err := uc.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	uc.remember(ctx, user)
	return &Token{AccessToken: access, TokenType: TokenTypeBearer, ExpiresAt: expiresAt}, nil
}

// ResolveIdentity verifies token and loads the user it names. Any failure,
// including a subject that no longer exists, is domain.ErrInvalidCredentials.
func (uc *UseCase) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	log := logger.WithRequestID(ctx, uc.logger)

	username, err := uc.tokens.Verify(token)
	if err != nil {
		log.Debug("token rejected", zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}

	if user := uc.cached(ctx, username); user != nil {
		return user, nil
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Debug("token subject not found")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	uc.remember(ctx, user)
	return user, nil
}

func (uc *UseCase) cached(ctx context.Context, username string) *domain.User {
	if uc.cache == nil {
		return nil
	}
	user, err := uc.cache.Get(ctx, username)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("identity cache read failed", zap.Error(err))
		return nil
	}
	return user
}

func (uc *UseCase) remember(ctx context.Context, user *domain.User) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, user); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("identity cache write failed", zap.Error(err))
	}
}
