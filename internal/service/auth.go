package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/domain"
	"library-backend/internal/logger"
	"library-backend/internal/repository"
	"library-backend/internal/security"
)

const resetTokenTTL = 30 * time.Minute

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
	}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, "", "", domain.NewError(domain.ErrKindInvalidState, "name and email are required")
	}
	if len(password) < 8 {
		return nil, "", "", domain.NewError(domain.ErrKindInvalidState, "password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", "", domain.NewError(domain.ErrKindInvalidState, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	user := &domain.User{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		Role:             domain.RoleStudent,
		MembershipStatus: domain.MembershipPending,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", "", err
	}

	access, refresh, err := s.issueTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", domain.NewError(domain.ErrKindUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", domain.NewError(domain.ErrKindUnauthorized, "invalid email or password")
	}

	access, refresh, err := s.issueTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", domain.NewError(domain.ErrKindUnauthorized, "invalid refresh token")
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", domain.NewError(domain.ErrKindUnauthorized, "not a refresh token")
	}

	// Re-read the user so a role change since issuance takes effect.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", domain.NewError(domain.ErrKindUnauthorized, "account no longer exists")
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *domain.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address exists.
		logger.Info("Password reset requested for unknown email", "email", email)
		return nil
	}

	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresOn = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.emailSvc.SendPasswordReset(ctx, user.Email, user.Name, token)
}

func (s *authService) ValidateResetToken(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return domain.NewError(domain.ErrKindNotFound, "reset token is invalid")
	}
	if user.ResetTokenExpiresOn == nil || time.Now().After(*user.ResetTokenExpiresOn) {
		return domain.NewError(domain.ErrKindInvalidState, "reset token has expired")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.NewError(domain.ErrKindInvalidState, "password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return domain.NewError(domain.ErrKindNotFound, "reset token is invalid")
	}
	if user.ResetTokenExpiresOn == nil || time.Now().After(*user.ResetTokenExpiresOn) {
		return domain.NewError(domain.ErrKindInvalidState, "reset token has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.ResetToken = nil
	user.ResetTokenExpiresOn = nil
	return s.userRepo.Update(ctx, user)
}
