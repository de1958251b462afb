package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modusklar/modusklar/config"
	"github.com/modusklar/modusklar/middleware"
	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/utils"
)

// AuthController handles participant registration, login and session resume.
// Login is an email lookup only; real credential checking is out of scope
// for the pilot.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getAdminEmail(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(middleware.ContextAdminEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTLHours) * time.Hour
}

// Register creates a participant with the challenge starting today and
// returns a session token alongside the stored record.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Name                 string `json:"name" binding:"required,min=2,max=128"`
		Email                string `json:"email" binding:"required,email"`
		InsuranceNumber      string `json:"insurance_number" binding:"required,max=64"`
		NotificationsEnabled bool   `json:"notifications_enabled"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name must not be empty")
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	user := models.User{
		Name:                 name,
		Email:                req.Email,
		InsuranceNumber:      strings.TrimSpace(req.InsuranceNumber),
		NotificationsEnabled: req.NotificationsEnabled,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Sugar.Errorf("registration failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "registration failed")
		return
	}

	token, err := utils.GenerateUserToken(user.ID, user.Name, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Login looks the participant up by exact email match. Any failure maps to
// the same generic message, so callers cannot tell a missing account from a
// store error.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email string `json:"email" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	// BINARY keeps the lookup case-sensitive on MySQL's default collation.
	if err := a.db.Where("BINARY email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.Sugar.Warnf("login lookup failed: %v", err)
		}
		utils.Error(ctx, http.StatusNotFound, 40401, "account not found")
		return
	}

	token, err := utils.GenerateUserToken(user.ID, user.Name, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Me resumes a session from the bearer token.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "account not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load account")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}
