package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	adminRepo "clinicbook/database/repository/admin"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrSessionNotFound = errors.New("admin session not found")

// AdminService authenticates dashboard users.
type AdminService interface {
	Login(ctx context.Context, email, password string) (token string, admin *models.Admin, err error)
	Logout(ctx context.Context, token string) error
	// ValidateSession returns ErrSessionNotFound for unknown or expired tokens.
	ValidateSession(ctx context.Context, token string) (*models.AdminSession, error)
	EnsureBootstrapAdmin(ctx context.Context, email, password string) error
}

// DefaultAdminService keeps sessions in the auth Redis DB.
type DefaultAdminService struct {
	Repo       adminRepo.AdminRepository
	Sessions   *redis.Client
	SessionTTL time.Duration
}

func sessionKey(token string) string {
	return utils.AdminSessionPrefix + token
}

func (s *DefaultAdminService) Login(ctx context.Context, email, password string) (string, *models.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, utils.NewValidationError("email and password are required")
	}

	admin, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		utils.GetLogger().Error("Login: failed to fetch admin", zap.Error(err))
		return "", nil, utils.NewServerError("Authentication failed, please try again", err)
	}
	if admin == nil {
		return "", nil, utils.NewValidationError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.NewValidationError("invalid email or password")
	}

	token := uuid.NewString()
	raw, err := json.Marshal(models.AdminSession{AdminID: admin.ID.Hex(), Email: admin.Email, CreatedAt: time.Now()})
	if err != nil {
		return "", nil, utils.NewServerError("Failed to create admin session", err)
	}
	if err := s.Sessions.Set(ctx, sessionKey(token), raw, s.ttl()).Err(); err != nil {
		return "", nil, utils.NewServerError("Failed to create admin session", err)
	}

	if err := s.Repo.TouchLastLogin(ctx, admin.ID); err != nil {
		utils.GetLogger().Warn("Login: failed to record last login", zap.Error(err))
	}
	utils.GetLogger().Info("Admin logged in", zap.String("email", admin.Email))
	return token, admin, nil
}

func (s *DefaultAdminService) Logout(ctx context.Context, token string) error {
	if err := s.Sessions.Del(ctx, sessionKey(token)).Err(); err != nil {
		return utils.NewServerError("Failed to end admin session", err)
	}
	return nil
}

func (s *DefaultAdminService) ValidateSession(ctx context.Context, token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := s.Sessions.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load admin session: %w", err)
	}
	var sess models.AdminSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode admin session: %w", err)
	}
	// Sliding expiry.
	s.Sessions.Expire(ctx, sessionKey(token), s.ttl())
	return &sess, nil
}

// EnsureBootstrapAdmin creates the first admin when none exist yet.
func (s *DefaultAdminService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := &models.Admin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         "Administrator",
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, admin); err != nil {
		return err
	}
	utils.GetLogger().Info("Bootstrap admin created", zap.String("email", admin.Email))
	return nil
}

func (s *DefaultAdminService) ttl() time.Duration {
	if s.SessionTTL <= 0 {
		return 12 * time.Hour
	}
	return s.SessionTTL
}
