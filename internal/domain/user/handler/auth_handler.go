package handler

import (
	"loyalty_points_api/internal/domain/user/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupInput 注册输入
type SignupInput struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login 处理登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Fail(c, err, "Failed to Login")
		return
	}
	response.Success(c, result, "Login success")
}

// Signup 处理注册请求
func (h *AuthHandler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), service.SignupInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Signup")
		return
	}
	response.Created(c, user, "Signup success")
}

// Logout 注销当前令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, exp := middleware.GetToken(c)
	if err := h.service.Logout(c.Request.Context(), tokenID, exp); err != nil {
		response.Fail(c, err, "Failed to Logout")
		return
	}
	response.Success(c, nil, "Logout Successfully")
}
