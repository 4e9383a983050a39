package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/middleware"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/settings"
	"github.com/atelierhub/atelier/utils"
)

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	db       *gorm.DB
	settings *settings.Service
}

func NewAuthController(db *gorm.DB, settings *settings.Service) *AuthController {
	return &AuthController{db: db, settings: settings}
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9가-힣\-]+$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)
)

func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}

func sanitizeUserResponseWithAdmin(user models.User) gin.H {
	payload := sanitizeUserResponse(user)
	payload["is_admin"] = middleware.IsAdminUsername(user.Username)
	return payload
}

// Register creates a local account after captcha and email code checks.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username      string `json:"username" binding:"required,min=2,max=64"`
		Email         string `json:"email" binding:"required,email"`
		Password      string `json:"password" binding:"required,min=6"`
		Confirm       string `json:"confirm" binding:"required"`
		Code          string `json:"code" binding:"required"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if enabled, err := a.settings.Bool(models.SettingSignupEnabled); err == nil && !enabled {
		utils.Error(ctx, http.StatusForbidden, 40310, "registration is currently disabled")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if l := len([]rune(req.Username)); l < 2 || l > 15 || !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 2-15 letters, digits or '-'")
		return
	}
	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 18 || !passwordPattern.MatchString(req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "password must be 6-18 characters of letters, digits or -_.")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	if config.Get().RegisterCaptchaEnabled {
		if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
			utils.Error(ctx, http.StatusBadRequest, 40005, "captcha answer is wrong or expired")
			return
		}
	}

	email := strings.TrimSpace(req.Email)
	if !utils.VerifyAndConsumeCode(email, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "email code is wrong or expired")
		return
	}

	ip := ctx.ClientIP()
	if !utils.RegistrationDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "daily registration limit reached")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		RegisterIP:   ip,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}
	utils.RegistrationDailyIncrement(ip)

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponseWithAdmin(user),
	})
}

// Login exchanges credentials for a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckPassword(user.PasswordHash, req.Password)) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponseWithAdmin(user),
	})
}

// Logout blacklists the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Error(ctx, http.StatusBadRequest, 40010, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	expires := time.Now().Add(72 * time.Hour)
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expires)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, sanitizeUserResponseWithAdmin(user))
}

// Captcha issues a new image captcha challenge.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"captcha_id": id, "captcha_image": b64})
}

// SendEmailCode mails a registration verification code, behind a per-address
// cooldown and optional captcha.
func (a *AuthController) SendEmailCode(ctx *gin.Context) {
	type request struct {
		Email         string `json:"email" binding:"required,email"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if config.Get().RegisterCaptchaEnabled {
		if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
			utils.Error(ctx, http.StatusBadRequest, 40005, "captcha answer is wrong or expired")
			return
		}
	}

	email := strings.TrimSpace(req.Email)
	if !utils.EmailCooldownTrySet(email, time.Minute) {
		utils.Error(ctx, http.StatusTooManyRequests, 42911, "please wait before requesting another code")
		return
	}

	code := utils.GenerateVerificationCode(6)
	utils.SaveCode(email, code, 10*time.Minute)
	if err := utils.SendVerificationCodeMail(email, code); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to send verification mail")
		return
	}
	utils.Success(ctx, gin.H{"message": "code sent"})
}
