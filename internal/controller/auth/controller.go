package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cinescore/internal/repository"
	"cinescore/pkg/logging"
	"cinescore/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserExists returned when the email is already registered.
var ErrUserExists = errors.New("user already exists")

// ErrBadCredentials returned on login with an unknown email or a
// wrong password. The two cases are indistinguishable to the caller.
var ErrBadCredentials = errors.New("bad email or password")

// ErrInvalidToken returned when a bearer token is missing, malformed
// or carries a bad signature.
var ErrInvalidToken = errors.New("invalid token")

// ErrUserNotFound returned when a valid token references a user that
// no longer exists.
var ErrUserNotFound = errors.New("user not found")

// SecretProvider defines a provider of the token signing secret.
type SecretProvider func() []byte

type userRepository interface {
	CreateUser(ctx context.Context, email string, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserById(ctx context.Context, id model.UserId) (*model.User, error)
}

// Controller defines an auth controller: registration, credential
// verification and bearer-token identity resolution.
type Controller struct {
	repo           userRepository
	secretProvider SecretProvider
	tokenTTL       time.Duration
	logger         *zap.Logger
}

// New creates an auth controller.
func New(repo userRepository, secretProvider SecretProvider, tokenTTL time.Duration, logger *zap.Logger) *Controller {
	logger = logger.With(
		zap.String(logging.FieldComponent, "controller"),
		zap.String(logging.FieldType, "auth"),
	)
	return &Controller{repo: repo, secretProvider: secretProvider, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a user with a bcrypt-hashed password.
func (c *Controller) Register(ctx context.Context, email string, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := c.repo.CreateUser(ctx, email, string(hash))
	if errors.Is(err, repository.ErrUserExists) {
		return nil, ErrUserExists
	} else if err != nil {
		return nil, err
	}
	c.logger.Info("Registered user", zap.Int64(logging.FieldUserId, int64(u.Id)))
	return u, nil
}

// Login verifies the credentials and issues a signed access token
// whose subject is the user id.
func (c *Controller) Login(ctx context.Context, email string, password string) (string, error) {
	u, err := c.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrBadCredentials
	} else if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(int64(u.Id), 10),
		"iat": now.Unix(),
		"exp": now.Add(c.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(c.secretProvider())
	if err != nil {
		c.logger.Error("Failed to sign token", zap.Error(err))
		return "", err
	}
	return signed, nil
}

// Authenticate validates an access token and returns the user id it
// was issued for. It does not check that the user still exists.
func (c *Controller) Authenticate(_ context.Context, tokenString string) (model.UserId, error) {
	if tokenString == "" {
		return 0, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secretProvider(), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return model.UserId(id), nil
}

// Whoami resolves a user id to the stored account, or ErrUserNotFound
// when the token outlived the user.
func (c *Controller) Whoami(ctx context.Context, id model.UserId) (*model.User, error) {
	u, err := c.repo.GetUserById(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return u, nil
}
