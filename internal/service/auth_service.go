package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"ai-docassist/internal/config"
	"ai-docassist/internal/dto"
	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/mailer"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"

	"ai-docassist/pkg/events"
	pktNats "ai-docassist/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthResult struct {
	User   *dto.UserResponse
	Tokens *dto.TokenPairResponse
}

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	GetUser(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	Logout(ctx context.Context, userId uuid.UUID) error
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	cfg            *config.Config
	log            logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	cfg *config.Config,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		log:            log,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func toUserResponse(user *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:         user.Id,
		Username:   user.Username,
		Email:      user.Email,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func (s *authService) accessTTL() time.Duration {
	return time.Duration(s.cfg.JWT.AccessTTLMinutes) * time.Minute
}

func (s *authService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.JWT.RefreshTTLDays) * 24 * time.Hour
}

// issueTokens mints the access/refresh pair and persists the sha256 hash
// of the refresh token.
func (s *authService) issueTokens(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, ipAddress, userAgent string) (*dto.TokenPairResponse, error) {
	accessToken, err := serverutils.NewAccessToken(s.cfg.JWT.Secret, user.Id, s.accessTTL())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := serverutils.NewRefreshToken(s.cfg.JWT.Secret, user.Id, s.refreshTTL())
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	tokenRow := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: serverutils.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.refreshTTL()),
		Revoked:   false,
		CreatedAt: time.Now(),
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, tokenRow); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (s *authService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.log.Warn("auth", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*AuthResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Uniqueness checks
	if existing, _ := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username}); existing != nil {
		return nil, serverutils.NewApiError(fiber.StatusConflict, "username already taken")
	}
	if existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email}); existing != nil {
		return nil, serverutils.NewApiError(fiber.StatusConflict, "email already registered")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// 3. Create user: active immediately, verification is advisory
	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &hashStr,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// 4. OTP for email verification
	otpCode, err := generateOTP()
	if err != nil {
		return nil, err
	}
	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, uow, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	go func() {
		if emailErr := s.emailService.SendOTP(user.Email, otpCode); emailErr != nil {
			s.log.Warn("auth", "failed to send verification email", map[string]interface{}{
				"email": user.Email,
				"error": emailErr.Error(),
			})
		}
	}()

	s.publishEvent(ctx, events.UserRegistered, map[string]interface{}{
		"user_id":  user.Id,
		"username": user.Username,
	})

	return &AuthResult{User: toUserResponse(user), Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*AuthResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Identifier matches either username or email
	user, err := uow.UserRepository().FindOne(ctx, specification.ByIdentifier{Identifier: req.Username})
	if err != nil || user == nil {
		return nil, serverutils.NewApiError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if user.PasswordHash == nil {
		return nil, serverutils.NewApiError(fiber.StatusUnauthorized, "account uses social login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.NewApiError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if !user.IsActive {
		return nil, serverutils.NewApiError(fiber.StatusForbidden, "account is disabled")
	}

	tokens, err := s.issueTokens(ctx, uow, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.UserLogin, map[string]interface{}{
		"user_id": user.Id,
		"device":  userAgent,
	})

	return &AuthResult{User: toUserResponse(user), Tokens: tokens}, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is never rotated here.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := serverutils.ParseToken(s.cfg.JWT.Secret, refreshToken)
	if err != nil {
		return "", serverutils.NewApiError(fiber.StatusUnauthorized, "invalid refresh token")
	}
	if tokenType, _ := claims["type"].(string); tokenType != serverutils.TokenTypeRefresh {
		return "", serverutils.NewApiError(fiber.StatusUnauthorized, "invalid token type")
	}
	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return "", serverutils.NewApiError(fiber.StatusUnauthorized, "invalid refresh token")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The server only keeps hashes; the presented token must match a
	// live row.
	row, err := uow.UserRepository().FindRefreshToken(ctx,
		specification.ByTokenHash{Hash: serverutils.HashToken(refreshToken)},
		specification.NotRevoked{},
		specification.NotExpired{},
	)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", serverutils.NewApiError(fiber.StatusUnauthorized, "refresh token revoked or expired")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", serverutils.NewApiError(fiber.StatusUnauthorized, "account unavailable")
	}

	accessToken, err := serverutils.NewAccessToken(s.cfg.JWT.Secret, user.Id, s.accessTTL())
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return accessToken, nil
}

func (s *authService) GetUser(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "user not found")
	}
	return toUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "user not found")
	}

	if req.Username != "" && req.Username != user.Username {
		if existing, _ := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username}); existing != nil {
			return nil, serverutils.NewApiError(fiber.StatusConflict, "username already taken")
		}
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		if existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email}); existing != nil {
			return nil, serverutils.NewApiError(fiber.StatusConflict, "email already registered")
		}
		user.Email = req.Email
		user.IsVerified = false
	}

	// Password change requires proof of the current one
	if req.NewPassword != "" {
		if user.PasswordHash == nil {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, "account uses social login")
		}
		if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return nil, serverutils.NewApiError(fiber.StatusForbidden, "current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		user.PasswordHash = &hashStr
	}

	user.UpdatedAt = time.Now()
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *authService) Logout(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().RevokeRefreshTokensForUser(ctx, userId); err != nil {
		return err
	}

	s.publishEvent(ctx, events.UserLogout, map[string]interface{}{
		"user_id": userId,
	})
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid otp code")
	}

	if user.IsVerified {
		return nil
	}

	tokenEntity, err := uow.UserRepository().FindEmailVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByToken{Token: req.Otp},
	)
	if err != nil || tokenEntity == nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid otp code")
	}
	if time.Now().After(tokenEntity.ExpiresAt) {
		return serverutils.NewApiError(fiber.StatusBadRequest, "otp code expired")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkVerified(ctx, user.Id); err != nil {
		return err
	}
	_ = uow.UserRepository().DeleteEmailVerificationToken(ctx, tokenEntity.Id)

	return uow.Commit()
}

func (s *authService) ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		// Do not reveal whether the address exists
		return nil
	}
	if user.IsVerified {
		return nil
	}

	otpCode, err := generateOTP()
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	_ = uow.UserRepository().DeleteEmailVerificationTokensForUser(ctx, user.Id)

	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	go func() {
		if emailErr := s.emailService.SendOTP(user.Email, otpCode); emailErr != nil {
			s.log.Warn("auth", "failed to resend verification email", map[string]interface{}{
				"email": user.Email,
				"error": emailErr.Error(),
			})
		}
	}()

	return nil
}
