package handler

import (
	"loyalty_points_api/internal/domain/user/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/response"
	"loyalty_points_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// CreateUserInput 后台创建用户
type CreateUserInput struct {
	SignupInput
	Point *int64 `json:"point" binding:"omitempty,min=0"`
}

// UpdateUserInput 后台更新用户，未传的字段不修改
type UpdateUserInput struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Point    *int64  `json:"point" binding:"omitempty,min=0"`
}

// GetUsers 用户列表
func (h *UserHandler) GetUsers(c *gin.Context) {
	var p utils.Pagination
	var params service.ListParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Invalid(c, err)
		return
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Invalid(c, err)
		return
	}

	users, meta, err := h.service.List(c.Request.Context(), middleware.GetUserID(c), params, &p)
	if err != nil {
		logger.Log.Error("list users failed", zap.Error(err))
		response.Fail(c, err, "Failed to Get Users.")
		return
	}
	response.Paginate(c, users, meta)
}

// CreateUser 创建用户
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), service.SignupInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Point:    input.Point,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Create User.")
		return
	}
	response.Created(c, user, "Create User Successfully.")
}

// GetUser 获取单个用户
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Fail(c, service.ErrUserNotFound, "")
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err, "Failed to Get Detail User.")
		return
	}
	response.Success(c, user, "Get Detail User Successfully.")
}

// UpdateUser 更新用户
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Fail(c, service.ErrUserNotFound, "")
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, service.UpdateInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Point:    input.Point,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Update User.")
		return
	}
	response.Success(c, user, "Update User Successfully.")
}

// DeleteUser 软删除用户
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Fail(c, service.ErrUserNotFound, "")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err, "Failed to Delete User.")
		return
	}
	response.Deleted(c, "Delete User Successfully.")
}

// DeletePermanent 物理删除用户
func (h *UserHandler) DeletePermanent(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Fail(c, service.ErrUserNotFound, "")
		return
	}

	if err := h.service.ForceDelete(c.Request.Context(), id); err != nil {
		response.Fail(c, err, "Failed to Delete User.")
		return
	}
	response.Deleted(c, "Delete User Successfully.")
}
