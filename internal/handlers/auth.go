package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name            string              `json:"name" validate:"max=255"`
	Email           string              `json:"email" validate:"max=255"`
	Password        string              `json:"password" validate:"max=72"`
	Role            string              `json:"role"`
	Phone           *string             `json:"phone" validate:"omitempty,max=50"`
	Address         *string             `json:"address" validate:"omitempty,max=500"`
	Specialization  *string             `json:"specialization" validate:"omitempty,max=255"`
	Experience      *string             `json:"experience" validate:"omitempty,max=255"`
	ConsultationFee utils.NullableFloat `json:"consultationFee"`
	Clinic          *string             `json:"clinic" validate:"omitempty,max=255"`
	Location        *string             `json:"location" validate:"omitempty,max=255"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialLoginRequest carries an identity asserted by an external provider.
type SocialLoginRequest struct {
	Provider   string `json:"provider" validate:"max=50"`
	ProviderID string `json:"providerId" validate:"max=255"`
	Email      string `json:"email" validate:"max=255"`
	Name       string `json:"name" validate:"max=255"`
	Picture    string `json:"picture" validate:"max=1024"`
	Role       string `json:"role"`
}

// RefreshTokenRequest carries a refresh token when the cookie is absent.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionResponse is the user view flattened alongside the token pair.
type SessionResponse struct {
	models.UserSanitized
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterResponse is returned with 201 on registration.
type RegisterResponse struct {
	Success      bool                 `json:"success"`
	User         models.UserSanitized `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(
		refreshCookie,
		token,
		maxAge,
		"/api/auth",
		"",
		!h.cfg.IsDev(), // Secure outside development
		true,           // HttpOnly
	)
}

func (h *AuthHandler) startSession(c *gin.Context, session *services.Session) {
	h.setRefreshCookie(c, session.RefreshToken, h.cfg.JWTRefreshExpirationHours*60*60)
}

// Register handles new user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		Phone:           req.Phone,
		Address:         req.Address,
		Specialization:  req.Specialization,
		Experience:      req.Experience,
		ConsultationFee: req.ConsultationFee.Ptr(),
		Clinic:          req.Clinic,
		Location:        req.Location,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.startSession(c, session)
	utils.Created(c, RegisterResponse{
		Success:      true,
		User:         session.User.Sanitize(),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Login handles email and password login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.startSession(c, session)
	utils.Success(c, SessionResponse{
		UserSanitized: session.User.Sanitize(),
		AccessToken:   session.AccessToken,
		RefreshToken:  session.RefreshToken,
	})
}

// SocialLogin signs in with a provider identity, creating the account on first use.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.SocialLogin(c.Request.Context(), services.SocialLoginInput{
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
		Email:      req.Email,
		Name:       req.Name,
		Picture:    req.Picture,
		Role:       req.Role,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.startSession(c, session)
	utils.Success(c, SessionResponse{
		UserSanitized: session.User.Sanitize(),
		AccessToken:   session.AccessToken,
		RefreshToken:  session.RefreshToken,
	})
}

// refreshTokenFromRequest prefers the cookie and falls back to the JSON body.
func refreshTokenFromRequest(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		return token, true
	}
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return "", false
	}
	return req.RefreshToken, true
}

// RefreshToken exchanges a refresh token for a new pair; the old one is revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := refreshTokenFromRequest(c)
	if !ok {
		return
	}

	session, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.startSession(c, session)
	utils.Success(c, RefreshTokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Logout revokes the refresh token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := refreshTokenFromRequest(c)
	if !ok {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, gin.H{"success": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, user.Sanitize())
}
