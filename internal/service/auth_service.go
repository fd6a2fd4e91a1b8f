package service

import (
	"errors"

	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/utils"
)

type AuthService struct {
	userRepo *repository.UserRepository
	sessions *SessionStore
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions *SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if !user.IsActive {
		return nil, errors.New("user account is inactive")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errors.New("invalid username or password")
	}

	sessionID := s.sessions.Open(user.ID)

	accessToken, err := utils.GenerateAccessToken(*user, sessionID, s.cfg.JWTSecret, s.cfg.JWTAccessExpire)
	if err != nil {
		s.sessions.Close(sessionID)
		return nil, errors.New("failed to generate access token")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		SessionID:   sessionID,
		User:        *user,
	}, nil
}

func (s *AuthService) Logout(sessionID string) {
	s.sessions.Close(sessionID)
}

// ValidateToken checks the token signature and that its session is still
// registered.
func (s *AuthService) ValidateToken(tokenString string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateToken(tokenString, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if !s.sessions.Active(claims.SessionID, claims.UserID) {
		return nil, errors.New("session is no longer active")
	}
	return claims, nil
}

func (s *AuthService) GetUserByID(id int) (*models.User, error) {
	return s.userRepo.FindByID(id)
}
