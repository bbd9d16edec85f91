package services

import (
	"github.com/harborpoint/dealflow/internal/auth"
	apperrors "github.com/harborpoint/dealflow/internal/errors"
	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/repository"
	"github.com/harborpoint/dealflow/pkg/config"
)

// authServiceImpl implements AuthService
type authServiceImpl struct {
	repos      *repository.Repositories
	jwtService *auth.JWTService
	cfg        *config.Config
}

// newAuthService creates a new auth service implementation
func newAuthService(repos *repository.Repositories, cfg *config.Config) AuthService {
	return &authServiceImpl{
		repos:      repos,
		jwtService: auth.NewJWTService(cfg.JWTSecret),
		cfg:        cfg,
	}
}

// Login authenticates a user and returns a token pair
func (s *authServiceImpl) Login(email, password string) (*models.LoginResponse, error) {
	user, err := s.repos.User.GetByEmail(email)
	if err != nil {
		// Same error for unknown email and bad password.
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	return s.issueTokens(user)
}

// Register creates a new user account
func (s *authServiceImpl) Register(req *models.CreateUserRequest) (*models.User, error) {
	if existing, err := s.repos.User.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict("a user with that email already exists", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleInvestor
	}
	switch role {
	case models.RoleAdmin, models.RoleInvestor:
	default:
		return nil, apperrors.ValidationError("invalid role", nil)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         string(role),
	}
	if err := s.repos.User.Create(user); err != nil {
		return nil, apperrors.DatabaseError("failed to create user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// ValidateToken validates a JWT token and returns the user
func (s *authServiceImpl) ValidateToken(token string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}

	user, err := s.repos.User.GetByID(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *authServiceImpl) RefreshToken(refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.repos.User.GetByID(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found", err)
	}

	return s.issueTokens(user)
}

func (s *authServiceImpl) issueTokens(user *models.User) (*models.LoginResponse, error) {
	claims := auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token, expiresAt, err := s.jwtService.GenerateToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate token", err)
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(claims)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate refresh token", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         sanitized,
		ExpiresAt:    expiresAt,
	}, nil
}
