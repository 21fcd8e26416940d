package service

import (
	"bigbrain/internal/clock"
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"bigbrain/internal/validator"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin registration, login and token validation
type AuthService struct {
	docs      *store.Documents
	locker    *lock.Locker
	clock     clock.Clock
	jwtSecret []byte
	hashCost  int
}

// NewAuthService creates a new auth service
func NewAuthService(docs *store.Documents, locker *lock.Locker, clk clock.Clock, jwtSecret string) *AuthService {
	return &AuthService{
		docs:      docs,
		locker:    locker,
		clock:     clk,
		jwtSecret: []byte(jwtSecret),
		hashCost:  bcrypt.DefaultCost,
	}
}

// Register creates an admin and returns a token for it
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validator.ValidateEmail(email); err != nil {
		return "", inputErrorf("Invalid email address")
	}
	if password == "" {
		return "", inputErrorf("Password must be supplied")
	}

	return lock.With(ctx, s.locker, lock.UserAuth, func(ctx context.Context) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}

		err = s.docs.UpdateAdmins(ctx, func(admins model.Admins) error {
			if _, exists := admins[email]; exists {
				return inputErrorf("Email address already registered")
			}
			admins[email] = &model.Admin{
				Name:          name,
				Password:      string(hash),
				SessionActive: true,
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return s.issueToken(email)
	})
}

// Login checks credentials, marks the admin active and returns a token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	return lock.With(ctx, s.locker, lock.UserAuth, func(ctx context.Context) (string, error) {
		err := s.docs.UpdateAdmins(ctx, func(admins model.Admins) error {
			admin, ok := admins[email]
			if !ok || !s.checkPassword(admin, password) {
				return inputErrorf("Invalid username or password")
			}
			if !isHashed(admin.Password) {
				hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
				if err != nil {
					return fmt.Errorf("failed to hash password: %w", err)
				}
				admin.Password = string(hash)
			}
			admin.SessionActive = true
			return nil
		})
		if err != nil {
			return "", err
		}
		return s.issueToken(email)
	})
}

// Logout marks the admin inactive, which invalidates their tokens
func (s *AuthService) Logout(ctx context.Context, email string) error {
	_, err := lock.With(ctx, s.locker, lock.UserAuth, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.docs.UpdateAdmins(ctx, func(admins model.Admins) error {
			admin, ok := admins[email]
			if !ok {
				return inputErrorf("Invalid admin")
			}
			admin.SessionActive = false
			return nil
		})
	})
	return err
}

// Authenticate resolves an Authorization header value to an admin email
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (string, error) {
	token := strings.TrimSpace(authorization)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", accessErrorf("Authorization token not provided")
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		return "", accessErrorf("Invalid token")
	}

	admins, err := s.docs.Admins(ctx)
	if err != nil {
		return "", err
	}
	admin, ok := admins[claims.Email]
	if !ok || !admin.SessionActive {
		return "", accessErrorf("Invalid token")
	}
	return claims.Email, nil
}

// ValidateToken validates an admin JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issueToken(email string) (string, error) {
	claims := &model.AdminClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(s.clock.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) checkPassword(admin *model.Admin, password string) bool {
	if isHashed(admin.Password) {
		return bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) == nil
	}
	// records written before hashing was introduced
	return admin.Password != "" && admin.Password == password
}

func isHashed(password string) bool {
	_, err := bcrypt.Cost([]byte(password))
	return err == nil
}
