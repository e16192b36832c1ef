package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued credential stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	activity   *ActivityService
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive ttl selects
// DefaultTokenTTL; activity may be nil.
func NewAuthService(userRepo repositories.UserRepository, activity *ActivityService, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:   userRepo,
		activity:   activity,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// TokenTTL returns the validity of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenDurat
}

// RegisterUser registers a new user, hashes their password, and saves them.
// New users are never administrators.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("%w: email '%s' already registered", ErrEmailTaken, user.Email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to register user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.IsAdmin = false

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: email '%s' already registered", ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.activity.record(ctx, models.LogUserRegistered,
		fmt.Sprintf("New user registered: %s (%s)", user.Name, user.Email), user.ID)
	return nil
}

// LoginUser authenticates a user by email and password and returns the user
// together with a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken signs an HS256 token carrying the user id.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"exp":    now.Add(s.tokenDurat).Unix(),
		"iat":    now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Authenticate resolves a token to the user it was issued for. The returned
// user never carries the password hash.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: token carries no user", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		slog.Error("failed to resolve token user", "user", userID, "err", err)
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// GetProfile returns the user without the password hash.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateAddress stores the shipping address of a user.
func (s *AuthService) UpdateAddress(ctx context.Context, id, address string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Address = strings.TrimSpace(address)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	user.Password = ""
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
