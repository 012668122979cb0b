package handler

import (
	"errors"
	"net/http"

	"ckan-go/internal/dto"
	"ckan-go/internal/middleware"
	"ckan-go/internal/service"
	"ckan-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler 账户与API Token
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// authStatus 把服务层错误映射为HTTP状态码
func authStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func authFailure(c *gin.Context, err error) {
	utils.ErrorResponse(c, authStatus(err), err.Error())
}

// Register 注册账户，返回包含邮箱的用户信息
// @Summary 注册账户
// @Tags 账户
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "账户信息"
// @Success 200 {object} utils.Response{data=dto.UserInfo}
// @Failure 409 {object} utils.Response
// @Router /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		authFailure(c, err)
		return
	}

	info := service.ToUserInfo(user)
	info.Email = user.Email
	utils.SuccessWithMessage(c, "User created", info)
}

// Login 签发API Token；token 字段可直接放入 Authorization 请求头
// @Summary 签发API Token
// @Tags 账户
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} utils.Response{data=dto.LoginResponse}
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		authFailure(c, err)
		return
	}
	utils.SuccessWithMessage(c, "API token created", resp)
}

// GetMe 当前Token对应的用户及其身份（sysadmin 或 user）
// @Summary 当前用户
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=dto.MeResponse}
// @Router /api/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "API token required")
		return
	}

	me, err := h.authService.GetMe(userID)
	if err != nil {
		authFailure(c, err)
		return
	}
	utils.SuccessResponse(c, me)
}
