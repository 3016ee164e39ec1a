package handler

import (
	"loyalty_points_api/internal/domain/user/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 当前用户资料
type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(s service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: s}
}

// UpdateProfileInput 修改密码需要同时提交 password_confirmation
type UpdateProfileInput struct {
	Name                 *string `json:"name" binding:"omitempty,max=255"`
	Email                *string `json:"email" binding:"omitempty,email,max=255"`
	Password             *string `json:"password" binding:"omitempty,min=6"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err, "Failed to Get Profile")
		return
	}
	response.Success(c, user, "Get Profile Successfully")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}
	if input.Password != nil && *input.Password != "" &&
		(input.PasswordConfirmation == nil || *input.PasswordConfirmation != *input.Password) {
		response.InvalidField(c, "password", "The password confirmation does not match.")
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.GetUserID(c), service.ProfileInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Update Current User's Profile.")
		return
	}
	response.Success(c, user, "Update Current User's Profile Successfully.")
}
