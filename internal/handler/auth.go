package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Shekhu04/Whispr/internal/config"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 负责注册/登录/退出相关接口
type AuthHandler struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	BcryptCost int
}

// NewAuthHandler 构造函数
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, bcryptCost int) *AuthHandler {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWT:        jwtCfg,
		BcryptCost: bcryptCost,
	}
}

func (h *AuthHandler) tokenTTL() time.Duration {
	return time.Duration(h.JWT.ExpireHours) * time.Hour
}

// setAuthCookie 把 JWT 放进 HTTP-only、SameSite=Strict 的 cookie
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.JWT.CookieName, token, int(h.tokenTTL().Seconds()), "/", "", h.JWT.Secure, true)
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"email":      user.Email,
		"profilePic": user.ProfilePic,
		"createdAt":  user.CreatedAt,
	}
}

// ---------- 注册 ----------

type signupReq struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"` // 至少 6 位
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FullName == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "昵称不能为空")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "邮箱格式不正确")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "密码至少需要6位")
		return
	}

	// 邮箱唯一
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("email = ?", req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "邮箱已被注册")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "密码加密失败")
		return
	}

	user := models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建用户失败")
		return
	}

	token, err := util.GenerateToken(h.JWT.Secret, user.ID, h.tokenTTL())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "生成 token 失败")
		return
	}
	h.setAuthCookie(c, token)

	util.Created(c, util.Response{
		"user": userPayload(&user),
	})
}

// ---------- 登录 ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不暴露是邮箱不存在还是密码错误
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "邮箱或密码错误")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "邮箱或密码错误")
		return
	}

	// 登录成功：记录登录 IP 和时间
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	_ = h.DB.Save(&user).Error

	token, err := util.GenerateToken(h.JWT.Secret, user.ID, h.tokenTTL())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "生成 token 失败")
		return
	}
	h.setAuthCookie(c, token)

	util.Success(c, util.Response{
		"user": userPayload(&user),
	})
}

// ---------- 退出 ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.JWT.CookieName, "", -1, "/", "", h.JWT.Secure, true)
	util.Success(c, util.Response{
		"message": "已退出登录",
	})
}
