package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// TokenIssuer signs and verifies the JWT pair handed out on login.
type TokenIssuer interface {
	GenerateTokens(user *models.User) (accessToken, refreshToken string, err error)
	// ValidateRefreshToken returns the subject of a well-formed, unexpired refresh token.
	ValidateRefreshToken(token string) (userID string, err error)
	RefreshTTL() time.Duration
}

// RegisterInput carries a registration request. Role is the wire value.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Role            string
	Phone           *string
	Address         *string
	Specialization  *string
	Experience      *string
	ConsultationFee *float64
	Clinic          *string
	Location        *string
}

// SocialLoginInput carries an identity asserted by an external provider.
type SocialLoginInput struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Picture    string
	Role       string
}

// Session is an authenticated user with a fresh token pair.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	store  store.Store
	tokens TokenIssuer
}

func NewAuthService(s store.Store, tokens TokenIssuer) *AuthService {
	return &AuthService{store: s, tokens: tokens}
}

// issue signs a token pair and persists the refresh token.
func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	access, refresh, err := s.tokens.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate tokens: %w", err))
	}
	stored := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: utcNow().Add(s.tokens.RefreshTTL()),
	}
	if err := s.store.Tokens().Create(ctx, stored); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("store refresh token: %w", err))
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Role == "" {
		return nil, apperrors.InvalidArgument("Name, email, and role are required.")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Role must be either 'patient' or 'doctor'.", err)
	}
	if in.Password == "" {
		return nil, apperrors.InvalidArgument("Password is required for email registration.")
	}

	email := models.NormalizeEmail(in.Email)
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("User with this email already exists.")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Name:            in.Name,
		Email:           email,
		Role:            role,
		ConsultationFee: in.ConsultationFee,
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&user.Phone, in.Phone)
	assign(&user.Address, in.Address)
	assign(&user.Specialization, in.Specialization)
	assign(&user.Experience, in.Experience)
	assign(&user.Clinic, in.Clinic)
	assign(&user.Location, in.Location)
	if role == models.RoleDoctor {
		available := true
		user.IsAvailable = &available
		user.AvailableSlots = []string{}
	}

	if err := user.SetPassword(in.Password); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.KindConflict, "User with this email already exists.", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("create user: %w", err))
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", role.Wire()).Msg("user registered")
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.InvalidArgument("Email and password are required.")
	}

	user, err := s.store.Users().GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Unauthenticated("Invalid email or password.")
		}
		return nil, apperrors.Internal(err)
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.Unauthenticated("Invalid email or password.")
	}

	if err := s.store.Users().Touch(ctx, user.ID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("touch user: %w", err))
	}
	return s.issue(ctx, user)
}

// SocialLogin signs in by email, creating the account on first sight.
func (s *AuthService) SocialLogin(ctx context.Context, in SocialLoginInput) (*Session, error) {
	if in.Provider == "" || in.ProviderID == "" || in.Email == "" || in.Name == "" {
		return nil, apperrors.InvalidArgument("Provider, providerId, name, and email are required.")
	}
	email := models.NormalizeEmail(in.Email)

	user, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		update := store.UserUpdate{}
		changed := false
		if user.Provider == "" || user.ProviderID == "" {
			update.Provider, update.ProviderID = &in.Provider, &in.ProviderID
			changed = true
		}
		if in.Picture != "" && in.Picture != user.ProfileImage {
			update.ProfileImage = &in.Picture
			changed = true
		}
		if in.Name != user.Name {
			update.Name = &in.Name
			changed = true
		}
		if changed {
			user, err = s.store.Users().Update(ctx, user.ID, update)
			if err != nil {
				return nil, storeError(err, "User not found.")
			}
		}
	case errors.Is(err, store.ErrNotFound):
		role, perr := models.ParseRole(in.Role)
		if in.Role == "" || perr != nil {
			return nil, apperrors.InvalidArgument("Role must be provided for new social logins.")
		}
		user = &models.User{
			Name:         in.Name,
			Email:        email,
			Role:         role,
			Provider:     in.Provider,
			ProviderID:   in.ProviderID,
			ProfileImage: in.Picture,
		}
		if role == models.RoleDoctor {
			available := true
			user.IsAvailable = &available
			user.AvailableSlots = []string{}
		}
		if err := s.store.Users().Create(ctx, user); err != nil {
			return nil, storeError(err, "User not found.")
		}
		zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Str("provider", in.Provider).Msg("social account created")
	default:
		return nil, apperrors.Internal(err)
	}

	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidArgument("Refresh token is required.")
	}
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid refresh token.", err)
	}

	if _, err := s.store.Tokens().FindActive(ctx, refreshToken, userID, utcNow()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Unauthenticated("Refresh token not found, expired, or revoked.")
		}
		return nil, apperrors.Internal(err)
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Unauthenticated("Refresh token not found, expired, or revoked.")
		}
		return nil, apperrors.Internal(err)
	}

	// A concurrent refresh may have rotated the token since FindActive.
	revoked, err := s.store.Tokens().Revoke(ctx, refreshToken, utcNow())
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("revoke refresh token: %w", err))
	}
	if !revoked {
		return nil, apperrors.Unauthenticated("Refresh token not found, expired, or revoked.")
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token. An unknown or already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.InvalidArgument("Refresh token is required.")
	}
	if _, err := s.store.Tokens().Revoke(ctx, refreshToken, utcNow()); err != nil {
		return apperrors.Internal(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return user, nil
}
