// Package service implements the application's use cases on top of the
// repository layer.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/tasks"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenIssuer and TokenAudience are embedded in every signed token and
	// checked on verification.
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
)

// AuthService handles credential verification and token lifecycle.
type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	queue    *tasks.Queue
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenResult is returned from login/register: a token pair plus a user summary.
type TokenResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

// NewAuthService returns a new AuthService. queue may be nil; deferred work
// is then skipped.
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config, queue *tasks.Queue) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg, queue: queue}
}

// Register creates a new account and returns a fresh token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResult, error) {
	span, ctx := observability.NewSpan(ctx, "auth.register")
	defer span.End()

	fields := map[string]string{}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if err := validation.ValidateName(in.FirstName); err != nil {
		fields["first_name"] = err.Error()
	}
	if err := validation.ValidateName(in.LastName); err != nil {
		fields["last_name"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return nil, models.NewConflictError("User with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:          in.Email,
		HashedPassword: string(hashed),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           models.RoleUser,
		IsActive:       true,
		IsVerified:     false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.queue != nil {
		// Best-effort; registration does not fail when the queue is down.
		_ = s.queue.Enqueue(ctx, tasks.NewWelcomeEmailTask(user.ID, user.Email, user.FullName()))
	}

	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	return s.issueTokenPair(user)
}

// Login verifies credentials and returns a token pair.
// Invalid credentials and inactive accounts both yield an unauthorized error
// without detail about which check failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	span, ctx := observability.NewSpan(ctx, "auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, models.NewUnauthorizedError("Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, models.NewUnauthorizedError("Incorrect email or password")
	}

	if !user.IsActive {
		observability.AuthAttempts.WithLabelValues("login", "inactive").Inc()
		return nil, models.NewUnauthorizedError("Incorrect email or password")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	observability.AuthAttempts.WithLabelValues("login", "success").Inc()
	return s.issueTokenPair(user)
}

// Refresh verifies a refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	userID, err := s.verifyRefreshToken(refreshToken)
	if err != nil {
		observability.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil || !user.IsActive {
		observability.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	access, expiresIn, err := s.generateAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.AuthAttempts.WithLabelValues("refresh", "success").Inc()
	return &TokenResult{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(currentPassword)); err != nil {
		return models.NewValidationError("Current password is incorrect")
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewFieldValidationError(map[string]string{"new_password": err.Error()})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.HashedPassword = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// VerifyAccount marks the user's account as verified and queues a
// confirmation email.
func (s *AuthService) VerifyAccount(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}

	user.IsVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if s.queue != nil {
		_ = s.queue.Enqueue(ctx, tasks.NewVerificationEmailTask(user.ID, user.Email))
	}
	return nil
}

func (s *AuthService) issueTokenPair(user *models.User) (*TokenResult, error) {
	access, expiresIn, err := s.generateAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &TokenResult{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		User:         user,
	}, nil
}

// generateAccessToken creates a signed short-lived access token.
func (s *AuthService) generateAccessToken(user *models.User) (string, int, error) {
	if s.cfg.JWTSecret == "" {
		return "", 0, fmt.Errorf("JWT secret not configured")
	}

	expiry := time.Duration(s.cfg.JWTExpireMinutes) * time.Minute
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  TokenIssuer,
		"aud":  TokenAudience,
		"exp":  now.Add(expiry).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int(expiry.Seconds()), nil
}

// generateRefreshToken creates a signed long-lived refresh token marked with
// typ=refresh so it cannot be used as an access token.
func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	now := time.Now()
	expiry := time.Duration(s.cfg.RefreshExpireDays) * 24 * time.Hour
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"typ": "refresh",
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// verifyRefreshToken parses a refresh token and returns the user ID it names.
func (s *AuthService) verifyRefreshToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return 0, fmt.Errorf("not a refresh token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(userID), nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
