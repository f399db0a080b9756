package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/oauth"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"go.uber.org/zap"
)

const (
	providerLocal  = "local"
	providerGoogle = "google"
	minPasswordLen = 6
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// LoginInput represents the login input. Identifier is a username or e-mail.
type LoginInput struct {
	Identifier string
	Password   string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates an approved user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	identifier := strings.TrimSpace(input.Identifier)

	var user *entity.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new account. It has the "user" role and cannot sign in
// until an admin approves it.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))

	var fieldErrors []apperror.FieldError
	if !usernamePattern.MatchString(username) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "username", Message: "Username must be 3-50 letters, digits, dots, dashes or underscores"})
	}
	if len(input.Password) < minPasswordLen {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLen)})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Username already taken")
	}
	if emailAddr != "" {
		existing, err = s.userRepo.GetByEmail(ctx, emailAddr)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Email already registered")
		}
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username: username,
		Password: hashedPassword,
		Provider: providerLocal,
	}
	if emailAddr != "" {
		user.Email = &emailAddr
	}

	if err := s.createWithDefaultRole(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GoogleSignIn signs in the staff member behind a verified Google account,
// creating an unapproved account on first use.
func (s *AuthService) GoogleSignIn(ctx context.Context, info *oauth.GoogleUserInfo) (*LoginOutput, error) {
	if info == nil || info.ID == "" {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByProviderID(ctx, providerGoogle, info.ID)
	if err != nil {
		return nil, err
	}

	if user == nil && info.Email != "" && info.VerifiedEmail {
		user, err = s.userRepo.GetByEmail(ctx, info.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			providerID := info.ID
			user.ProviderID = &providerID
			user.Provider = providerGoogle
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		user, err = s.newGoogleUser(ctx, info)
		if err != nil {
			return nil, err
		}
	}

	return s.issueTokens(ctx, user.ID)
}

func (s *AuthService) newGoogleUser(ctx context.Context, info *oauth.GoogleUserInfo) (*entity.User, error) {
	base := info.Email
	if at := strings.Index(base, "@"); at > 0 {
		base = base[:at]
	}
	if base == "" {
		base = "google"
	}

	username := base
	for i := 0; ; i++ {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		username = fmt.Sprintf("%s%d", base, i+1)
	}

	providerID := info.ID
	user := &entity.User{
		Username:   username,
		Provider:   providerGoogle,
		ProviderID: &providerID,
	}
	if info.Email != "" {
		emailAddr := strings.ToLower(info.Email)
		user.Email = &emailAddr
	}
	if info.Picture != "" {
		photo := info.Picture
		user.Photo = &photo
	}

	if err := s.createWithDefaultRole(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) createWithDefaultRole(ctx context.Context, user *entity.User) error {
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, entity.RoleUser)
	if err != nil || defaultRole == nil {
		s.logger.Warn("default role missing; user created without roles",
			zap.String("username", user.Username), zap.Error(err))
		return nil
	}
	if err := s.userRepo.ReplaceRoles(ctx, user.ID, []uint{defaultRole.ID}); err != nil {
		s.logger.Warn("failed to assign default role", zap.String("username", user.Username), zap.Error(err))
		return nil
	}
	user.Roles = []entity.Role{*defaultRole}
	return nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return s.issueTokens(ctx, userID)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// issueTokens reloads the user with roles and refuses accounts that are not approved.
func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.Approved {
		return nil, apperror.ErrAccountPending
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
