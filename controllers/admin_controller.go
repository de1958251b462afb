package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/progress"
	"github.com/modusklar/modusklar/utils"
)

// AdminController serves the review console: reviewer login, the user
// overview with per-user stats, the submission queue and review decisions.
type AdminController struct {
	db *gorm.DB
}

var (
	errSubmissionNotFound = errors.New("submission not found")
	errAlreadyDecided     = errors.New("submission already decided")
)

const adminStatsCachePrefix = "cache:admin:stats:"

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// Login checks the allow-list by lowercased email. Denial is a single
// generic message regardless of cause.
func (a *AdminController) Login(ctx *gin.Context) {
	type request struct {
		Email string `json:"email" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var admin models.Admin
	if err := a.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.Sugar.Warnf("admin lookup failed: %v", err)
		}
		utils.Error(ctx, http.StatusForbidden, 40302, "access denied")
		return
	}

	token, err := utils.GenerateAdminToken(admin.Email, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"email": admin.Email, "token": token})
}

type userStats struct {
	CompletedDays int     `json:"completed_days"`
	SuccessRate   float64 `json:"success_rate"`
}

func (a *AdminController) statsFor(userID uint) (userStats, error) {
	key := adminStatsCachePrefix + strconv.FormatUint(uint64(userID), 10)
	var stats userStats
	if utils.CacheGetJSON(key, &stats) {
		return stats, nil
	}

	rows, err := progress.LoadRows(a.db, userID)
	if err != nil {
		return stats, err
	}
	completed := progress.CompletedDays(rows)
	stats = userStats{
		CompletedDays: completed,
		SuccessRate:   progress.SuccessRate(completed, progress.ProgramDays),
	}
	utils.CacheSetJSON(key, stats, 5*time.Minute)
	return stats, nil
}

// ListUsers returns all participants newest first, each with streak stats.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	var users []models.User
	if err := a.db.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to retrieve users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		stats, err := a.statsFor(user.ID)
		if err != nil {
			utils.Sugar.Warnf("stats failed for user %d: %v", user.ID, err)
		}
		items = append(items, gin.H{
			"user":           user,
			"completed_days": stats.CompletedDays,
			"success_rate":   stats.SuccessRate,
		})
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// ListVideos returns submissions joined with the submitting user, newest
// first. An optional status filter serves the pending-only queue; the
// pending count is always included for the console header.
func (a *AdminController) ListVideos(ctx *gin.Context) {
	status := strings.TrimSpace(ctx.Query("status"))
	switch status {
	case "", models.SlotStatusPending, models.SlotStatusVerified, models.SlotStatusRejected:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid status filter")
		return
	}

	query := a.db.Model(&models.VideoSubmission{}).Preload("User").Order("recorded_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var videos []models.VideoSubmission
	if err := query.Find(&videos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to retrieve videos")
		return
	}

	var pendingCount int64
	if err := a.db.Model(&models.VideoSubmission{}).Where("status = ?", models.SlotStatusPending).Count(&pendingCount).Error; err != nil {
		pendingCount = 0
	}

	utils.Success(ctx, gin.H{"items": videos, "pending_count": pendingCount})
}

type decisionRequest struct {
	Outcome string `json:"outcome" binding:"required"`
	Reason  string `json:"reason"`
}

// validateDecision checks the outcome and the rejection-reason rule: the
// reason is mandatory for rejections and ignored for approvals.
func validateDecision(req decisionRequest) (outcome, reason string, err error) {
	outcome = strings.TrimSpace(req.Outcome)
	if outcome != models.SlotStatusVerified && outcome != models.SlotStatusRejected {
		return "", "", errors.New("outcome must be verified or rejected")
	}
	reason = utils.Sanitize(strings.TrimSpace(req.Reason))
	if outcome == models.SlotStatusRejected && reason == "" {
		return "", "", errors.New("rejection requires a reason")
	}
	if outcome == models.SlotStatusVerified {
		reason = ""
	}
	return outcome, reason, nil
}

// Decide applies a review decision to one submission and propagates it to
// the matching progress slot. Both writes run in a single transaction with
// the submission row locked; only pending submissions are decidable, so a
// stale console cannot overwrite an earlier decision.
func (a *AdminController) Decide(ctx *gin.Context) {
	adminEmail, ok := getAdminEmail(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40042, "missing submission id")
		return
	}

	var req decisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}
	outcome, reason, err := validateDecision(req)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, err.Error())
		return
	}

	var submission models.VideoSubmission
	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errSubmissionNotFound
			}
			return err
		}
		if submission.Status != models.SlotStatusPending {
			return errAlreadyDecided
		}

		now := time.Now()
		if err := tx.Model(&submission).Updates(map[string]interface{}{
			"status":           outcome,
			"verified_at":      now,
			"verified_by":      adminEmail,
			"rejection_reason": reason,
		}).Error; err != nil {
			return err
		}

		return progress.UpsertSlot(tx, submission.UserID, submission.DayNumber, submission.VideoType, outcome, dateOnly(now))
	})
	if err != nil {
		switch {
		case errors.Is(err, errSubmissionNotFound):
			utils.Error(ctx, http.StatusNotFound, 40403, "submission not found")
		case errors.Is(err, errAlreadyDecided):
			utils.Error(ctx, http.StatusConflict, 40913, "submission already decided")
		default:
			utils.Sugar.Errorf("review decision failed for submission %s: %v", id, err)
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to apply decision")
		}
		return
	}

	// Stats change with every decision; drop the cached projections.
	utils.InvalidateByPrefix(adminStatsCachePrefix)

	utils.Success(ctx, gin.H{
		"id":      submission.ID,
		"status":  outcome,
		"user_id": submission.UserID,
		"day":     submission.DayNumber,
		"slot":    submission.VideoType,
	})
}
