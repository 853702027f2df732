package service

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wake_scheduler/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// Domain errors for auth flows.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrSignUpClosed    = errors.New("sign-up closed: sign in as an operator or present the sign-up token")
)

// AuthConfig configures token signing and sign-up. An empty SigningKey is
// replaced by a random per-process key, so tokens do not survive a reboot.
// An empty SignUpToken disables token-based sign-up.
type AuthConfig struct {
	SigningKey  []byte
	TokenTTL    time.Duration
	SignUpToken string
}

// AuthService handles operator auth logic.
type AuthService struct {
	operators   repository.Operators
	signingKey  []byte
	tokenTTL    time.Duration
	signUpToken string

	// serializes the operator count check with the insert
	signUpMu sync.Mutex
}

func NewAuthService(repo repository.Operators, cfg AuthConfig) *AuthService {
	key := cfg.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("generate signing key: %v", err))
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{operators: repo, signingKey: key, tokenTTL: ttl, signUpToken: cfg.SignUpToken}
}

// SignUp hashes password and creates a new operator. Only the first operator
// of a device registers freely; later ones need the grant of a signed-in
// operator or the configured sign-up token.
func (s *AuthService) SignUp(username, password string, grant SignUpGrant) (int, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}

	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()

	ok, err := s.signUpAllowed(grant)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSignUpClosed
	}
	return s.operators.Create(username, hash)
}

func (s *AuthService) signUpAllowed(grant SignUpGrant) (bool, error) {
	if grant.OperatorID > 0 {
		return true, nil
	}
	if s.signUpToken != "" && subtle.ConstantTimeCompare([]byte(grant.Token), []byte(s.signUpToken)) == 1 {
		return true, nil
	}
	n, err := s.operators.Count()
	if err != nil {
		return false, fmt.Errorf("count operators: %w", err)
	}
	return n == 0, nil
}

// Claims defines JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// GenerateToken validates credentials and returns a JWT.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	op, err := s.operators.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrUserNotFound
	}
	if err := verifyPassword(op.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(op.ID)
}

// ParseToken parses a JWT and returns the operator id.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.OperatorID, nil
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) issueToken(operatorID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: operatorID,
	})
	return token.SignedString(s.signingKey)
}
