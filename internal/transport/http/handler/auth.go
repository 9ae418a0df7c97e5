package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"zipfit/internal/app"
	"zipfit/internal/model"
	"zipfit/internal/transport/http/middleware"
	"zipfit/internal/transport/http/response"
)

type AuthService interface {
	Register(ctx context.Context, input app.RegisterInput) (*app.AuthResult, error)
	Login(ctx context.Context, input app.LoginInput) (*app.AuthResult, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type AuthHandler struct {
	authService AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, "register failed")
		return
	}
	respondToken(c, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, "login failed")
		return
	}
	respondToken(c, result)
}

// Me returns the operator behind the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "fetch current user failed")
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
		return
	}
	response.OK(c, userPayload(user))
}

func respondToken(c *gin.Context, result *app.AuthResult) {
	response.OK(c, gin.H{
		"token": result.Token,
		"user":  userPayload(result.User),
	})
}

func userPayload(user *model.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"role":          user.Role,
		"last_login_at": user.LastLoginAt,
	}
}
