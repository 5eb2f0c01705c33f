package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-docassist/internal/config"
	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/pkg/events"
	pktNats "ai-docassist/pkg/nats"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string, ipAddress, userAgent string) (*AuthResult, error)
}

type oauthService struct {
	uowFactory  unitofwork.RepositoryFactory
	authService IAuthService
	googleConf  *oauth2.Config
	log         logger.ILogger

	cfg            *config.Config
	eventPublisher *pktNats.Publisher
}

func NewOAuthService(
	uowFactory unitofwork.RepositoryFactory,
	authService IAuthService,
	cfg *config.Config,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory:     uowFactory,
		authService:    authService,
		googleConf:     conf,
		cfg:            cfg,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "google" {
		return "", errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string, ipAddress, userAgent string) (*AuthResult, error) {
	if provider != "google" {
		return nil, errors.New("unsupported provider")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	userInfoURL := "https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken
	resp, err := http.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %w", err)
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(content, &googleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
	if err != nil {
		return nil, err
	}

	// A soft-deleted account coming back through Google gets restored
	// instead of duplicated.
	if user == nil {
		user, err = uow.UserRepository().FindOneUnscoped(ctx, specification.ByEmail{Email: googleUser.Email})
		if err != nil {
			return nil, err
		}
		if user != nil {
			if err := uow.UserRepository().Restore(ctx, user.Id); err != nil {
				return nil, err
			}
			user, _ = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
		}
	}

	if user == nil {
		newUser := &entity.User{
			Id:           uuid.New(),
			Username:     usernameFromEmail(googleUser.Email),
			Email:        googleUser.Email,
			PasswordHash: nil,
			IsActive:     true,
			IsVerified:   googleUser.VerifiedEmail,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		if err := uow.UserRepository().Create(ctx, newUser); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		user = newUser

		if s.eventPublisher != nil {
			_ = s.eventPublisher.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
				"user_id":  user.Id,
				"username": user.Username,
				"provider": provider,
			}))
		}
	}

	providerRow := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   provider,
		ProviderUserId: googleUser.ID,
		AvatarURL:      googleUser.Picture,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().SaveUserProvider(ctx, providerRow); err != nil {
		s.log.Warn("oauth", "failed to link provider", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
	}

	// Same token pair shape as a password login
	auth := s.authService.(*authService)
	tokens, err := auth.issueTokens(ctx, uow, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.New(events.UserLogin, map[string]interface{}{
			"user_id":  user.Id,
			"provider": provider,
		}))
	}

	return &AuthResult{User: toUserResponse(user), Tokens: tokens}, nil
}

func usernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	// Suffix keeps collisions with existing usernames unlikely
	return fmt.Sprintf("%s_%s", local, uuid.New().String()[:8])
}
