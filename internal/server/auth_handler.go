package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/middleware"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// AuthHandler 认证处理器
type AuthHandler struct{}

// NewAuthHandler 创建认证处理器
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	db := database.GetDB()

	// 查询用户
	var user model.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	// 检查用户是否启用
	if !user.Enabled {
		fail(c, http.StatusForbidden, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		fail(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	// 生成 JWT Token
	token, err := middleware.GenerateToken(user.ID, user.Username)
	if err != nil {
		fail(c, http.StatusInternalServerError, "生成令牌失败: "+err.Error())
		return
	}

	success(c, LoginResponse{
		AccessToken: token,
		Username:    user.Username,
		Nickname:    user.Nickname,
	})
}

// Logout 用户登出。JWT 是无状态的，客户端丢弃 token 即可
func (h *AuthHandler) Logout(c *gin.Context) {
	success(c, nil)
}

// currentUsername 获取当前登录用户，未启用认证时用请求参数兜底
func currentUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok && name != "" {
			return name
		}
	}
	if name := c.Query("username"); name != "" {
		return name
	}
	return "guest"
}
