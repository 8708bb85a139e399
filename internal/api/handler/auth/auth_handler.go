package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/auth"
	"gorm.io/gorm"
)

type AuthHandler struct {
	service *auth.AuthService
}

func NewAuthHandler(service *auth.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register 注册用户
// @Summary 注册用户
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Register"
// @Success 200 {object} model.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	user, err := h.service.Register(&req, req.OrganizationID)
	if err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "用户注册失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login"
// @Success 200 {object} model.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	resp, err := h.service.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.Error(401, err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.Success(resp))
}

// GetCurrentUser 获取当前登录用户
// @Summary 获取当前登录用户
// @Tags auth
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "用户不存在"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "获取用户信息失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// ChangePassword 修改密码
// @Summary 修改当前用户密码
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ChangePasswordRequest true "ChangePassword"
// @Success 200 {object} model.Response
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	if err := h.service.ChangePassword(c.GetString("user_id"), &req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}

// ListUsers 获取组织用户列表
// @Summary 获取组织用户列表
// @Tags users
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.GetString("organization_id"))
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取用户列表失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(users))
}

// UpdateUser 更新用户信息
// @Summary 更新用户信息
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body model.UpdateUserRequest true "UpdateUser"
// @Success 200 {object} model.Response
// @Router /api/v1/users/{id} [put]
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	user, err := h.service.UpdateUser(c.GetString("organization_id"), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "用户不存在"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "更新用户失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}
