package handler

import (
	"errors"
	"strconv"

	"ckan-go/internal/dto"
	"ckan-go/internal/repository"
	"ckan-go/internal/service"
	"ckan-go/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler 系统管理员处理器
type AdminHandler struct {
	userRepo   *repository.UserRepository
	ratingRepo *repository.RatingRepository
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(userRepo *repository.UserRepository, ratingRepo *repository.RatingRepository) *AdminHandler {
	return &AdminHandler{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
	}
}

// ListUsers 获取所有用户
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	users, total, err := h.userRepo.List(offset, perPage)
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	items := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		items = append(items, service.ToUserInfo(&users[i]))
	}
	utils.PaginatedResponse(c, items, total, page, perPage)
}

// DeleteUser 删除用户及其评分
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	user, err := h.userRepo.GetByIDOrName(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "用户不存在")
		return
	}
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	if err := h.userRepo.Delete(user.ID); err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "用户已删除", gin.H{"success": true})
}

// RatingStats 评分统计
func (h *AdminHandler) RatingStats(c *gin.Context) {
	count, err := h.ratingRepo.Count()
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"count": count})
}
