package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/progress"
	"github.com/modusklar/modusklar/utils"
)

// DashboardController serves the participant's derived progress state.
type DashboardController struct {
	db *gorm.DB
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{db: db}
}

// Dashboard returns everything the client needs to render the home screen:
// streak summary, 28-day grid, live today status, window flags and per-slot
// submit gates. All of it is recomputed from stored rows on every call.
func (d *DashboardController) Dashboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	rows, err := progress.LoadRows(d.db, userID)
	if err != nil {
		utils.Sugar.Errorf("failed to load progress for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load progress")
		return
	}

	now := time.Now()
	summary := progress.Summarize(rows)
	windows := progress.Windows(now)

	// Past day 28 the program is over; no open window reopens submission.
	inProgram := summary.CurrentDay <= progress.ProgramDays

	utils.Success(ctx, gin.H{
		"program_days":     progress.ProgramDays,
		"program_complete": !inProgram,
		"summary":          summary,
		"windows":          windows,
		"can_submit": gin.H{
			models.VideoTypeMorning: inProgram && progress.CanSubmit(models.VideoTypeMorning, summary.Today, now),
			models.VideoTypeEvening: inProgram && progress.CanSubmit(models.VideoTypeEvening, summary.Today, now),
		},
	})
}
