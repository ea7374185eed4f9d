package handler

import (
	"errors"
	"net/http"

	"acquisitions/internal/logutil"
	"acquisitions/internal/middleware"
	"acquisitions/internal/model"
	"acquisitions/internal/service"
	"acquisitions/internal/utils"
	"acquisitions/internal/validation"

	"github.com/gin-gonic/gin"
)

// Client-facing messages. These never carry internal error detail.
const (
	msgValidationFailed   = "Validation failed"
	msgUserExists         = "Username already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgSignedUp           = "User registered successfully"
	msgSignedIn           = "User signed in successfully"
	msgSignedOut          = "User signed out successfully"
	msgBadBody            = "Request body must be valid JSON"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	tokens  *utils.JWTUtil
	cookies *utils.CookieManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, tokens *utils.JWTUtil, cookies *utils.CookieManager) *AuthHandler {
	return &AuthHandler{service: s, tokens: tokens, cookies: cookies}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req validation.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	in, verrs := validation.SignUp(req)
	if verrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidationFailed, "details": verrs})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": msgUserExists})
			return
		}
		_ = c.Error(err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": msgSignedUp,
		"user":    user.Public(),
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req validation.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	in, verrs := validation.SignIn(req)
	if verrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidationFailed, "details": verrs})
		return
	}

	user, err := h.service.AuthenticateUser(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgInvalidCredentials})
			return
		}
		_ = c.Error(err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msgSignedIn,
		"user":    user.Public(),
	})
}

// SignOut clears the session cookie. It does not look at the current token,
// so it succeeds with or without a session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.cookies.Clear(c.Writer, utils.SessionCookieName)

	log := logutil.GetOrDefault(c.Request.Context())
	log.Info().Msg("user signed out")
	c.JSON(http.StatusOK, gin.H{"message": msgSignedOut})
}

// Me returns the identity carried by the caller's session token
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": claims.Identity})
}

// RegisterAuthRoutes registers auth routes. protect guards routes that need a
// session; limit runs in front of sign-up and sign-in only, sign-out is never
// throttled.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, protect gin.HandlerFunc, limit ...gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/sign-up", withLimit(limit, h.SignUp)...)
		authGroup.POST("/sign-in", withLimit(limit, h.SignIn)...)
		authGroup.POST("/sign-out", h.SignOut)
		authGroup.GET("/me", protect, h.Me)
	}
}

func withLimit(limit []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(limit)+1)
	return append(append(chain, limit...), h)
}

func (h *AuthHandler) startSession(c *gin.Context, user *model.User) bool {
	token, err := h.tokens.Sign(utils.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		_ = c.Error(err)
		return false
	}
	h.cookies.Set(c.Writer, utils.SessionCookieName, token)
	return true
}

func badBody(c *gin.Context, err error) {
	log := logutil.GetOrDefault(c.Request.Context())
	log.Debug().Err(err).Msg("rejecting request body")
	c.JSON(http.StatusBadRequest, gin.H{
		"message": msgValidationFailed,
		"details": validation.FieldErrors{{Field: "body", Message: msgBadBody}},
	})
}
