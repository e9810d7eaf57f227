package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and for wrong
	// passwords alike, so login failures never reveal which case occurred.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

type AuthService struct {
	userRepository repository.UserRepository
	gamification   *GamificationService
	jwtSecret      string
	jwtExpiry      time.Duration
	isProduction   bool
}

func NewAuthService(
	userRepository repository.UserRepository,
	gamification *GamificationService,
	jwtSecret string,
	jwtExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		gamification:   gamification,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		isProduction:   isProduction,
	}
}

func (s *AuthService) Register(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	err := validation.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Points:       0,
		Streak:       0,
		LastLogin:    dateOf(now),
		CreatedAt:    now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and, on success, applies the daily login bonus
// and streak update. The returned bool reports whether the bonus applied.
func (s *AuthService) Login(username, password string) (*model.User, bool, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, false, ErrInvalidCredentials
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, false, ErrInvalidCredentials
	}

	bonus, err := s.gamification.ApplyLoginBonus(user, time.Now())
	if err != nil {
		return nil, false, err
	}

	return user, bonus, nil
}

func (s *AuthService) UserByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}
